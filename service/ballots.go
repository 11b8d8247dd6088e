// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danielhkuo/quorum/auth"
	"github.com/danielhkuo/quorum/events"
	"github.com/danielhkuo/quorum/models"
	"github.com/danielhkuo/quorum/store"
)

// While suspended, the limit date is parked this far ahead so the ballot cannot expire.
const suspendHorizonYears = 100

const textOptionTitle = "Response"

// CreateBallot creates a ballot owned by the calling admin
func (s *Service) CreateBallot(ctx context.Context, p Principal, req models.CreateBallotRequest) (*models.BallotView, error) {
	if !p.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can create ballots", ErrForbidden)
	}

	now := s.clock()
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidPayload)
	}
	if !models.IsValidType(req.Type) {
		return nil, fmt.Errorf("%w: unknown ballot type %q", ErrInvalidPayload, req.Type)
	}
	if !req.LimitDate.After(now) {
		return nil, fmt.Errorf("%w: limit date must be in the future", ErrInvalidPayload)
	}

	exists, err := s.directory.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: unknown category", ErrInvalidPayload)
	}

	titles, err := optionTitles(req.Type, req.Options)
	if err != nil {
		return nil, err
	}

	b := &models.Ballot{
		ID:          auth.NewID(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		AdminID:     p.UserID,
		LimitDate:   req.LimitDate.UTC().Truncate(time.Microsecond),
		Version:     1,
		CreatedAt:   now,
	}

	options := make([]models.VotingOption, len(titles))
	for i, t := range titles {
		options[i] = models.VotingOption{
			ID:       auth.NewID(),
			BallotID: b.ID,
			Title:    t,
			IsText:   req.Type == models.TypeTextInput,
			Position: i,
		}
	}

	if err := s.ballots.Create(ctx, b, options); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown category", ErrInvalidPayload)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.BallotCreated,
		BallotID:   b.ID,
		UserID:     p.UserID,
		OccurredAt: now,
		Data:       map[string]interface{}{"type": b.Type, "category_id": b.CategoryID, "limit_date": b.LimitDate},
	})

	return &models.BallotView{Ballot: *b, Status: b.StatusAt(now), Options: options}, nil
}

// optionTitles validates and normalizes the option titles for a ballot type
func optionTitles(ballotType string, raw []string) ([]string, error) {
	var titles []string
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			titles = append(titles, t)
		}
	}

	switch ballotType {
	case models.TypeTextInput:
		return []string{textOptionTitle}, nil
	case models.TypeYesNo:
		if len(titles) == 0 {
			return []string{"Yes", "No"}, nil
		}
		if len(titles) != 2 {
			return nil, fmt.Errorf("%w: yes/no ballots have exactly two options", ErrInvalidPayload)
		}
	case models.TypeLinearChoice:
		values := make(map[int]bool, len(titles))
		for _, t := range titles {
			value, _, err := models.ParseLinearTitle(t)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			if values[value] {
				return nil, fmt.Errorf("%w: duplicate scale value %d", ErrInvalidPayload, value)
			}
			values[value] = true
		}
	}

	if len(titles) < 2 {
		return nil, fmt.Errorf("%w: at least two options are required", ErrInvalidPayload)
	}

	seen := make(map[string]bool, len(titles))
	for _, t := range titles {
		if seen[t] {
			return nil, fmt.Errorf("%w: duplicate option %q", ErrInvalidPayload, t)
		}
		seen[t] = true
	}
	return titles, nil
}

// SuspendBallot pauses an active ballot, keeping its remaining time
func (s *Service) SuspendBallot(ctx context.Context, p Principal, ballotID string) (*models.Ballot, error) {
	return s.transition(ctx, p, ballotID, events.BallotSuspended, func(b *models.Ballot, now time.Time) error {
		if status := b.StatusAt(now); status != models.StatusActive {
			return fmt.Errorf("%w: cannot suspend a ballot that is %s", ErrInvalidState, status)
		}
		left := int64(b.LimitDate.Sub(now) / time.Second)
		b.IsSuspended = true
		b.TimeLeft = &left
		b.LimitDate = now.AddDate(suspendHorizonYears, 0, 0)
		return nil
	})
}

// UnsuspendBallot resumes a suspended ballot with the time it had left
func (s *Service) UnsuspendBallot(ctx context.Context, p Principal, ballotID string) (*models.Ballot, error) {
	return s.transition(ctx, p, ballotID, events.BallotUnsuspended, func(b *models.Ballot, now time.Time) error {
		if status := b.StatusAt(now); status != models.StatusSuspended {
			return fmt.Errorf("%w: cannot unsuspend a ballot that is %s", ErrInvalidState, status)
		}
		if b.TimeLeft == nil {
			return fmt.Errorf("%w: suspended ballot has no remaining time recorded", ErrInvalidState)
		}
		b.LimitDate = now.Add(time.Duration(*b.TimeLeft) * time.Second)
		b.IsSuspended = false
		b.TimeLeft = nil
		return nil
	})
}

// EndBallotEarly ends an active or suspended ballot now. Ending is terminal.
func (s *Service) EndBallotEarly(ctx context.Context, p Principal, ballotID string) (*models.Ballot, error) {
	return s.transition(ctx, p, ballotID, events.BallotEnded, func(b *models.Ballot, now time.Time) error {
		if b.StatusAt(now) == models.StatusEnded {
			return fmt.Errorf("%w: ballot has already ended", ErrInvalidState)
		}
		b.LimitDate = now
		b.IsSuspended = false
		b.TimeLeft = nil
		return nil
	})
}

// transition applies a lifecycle change as a versioned read-modify-write
func (s *Service) transition(ctx context.Context, p Principal, ballotID, eventType string, apply func(*models.Ballot, time.Time) error) (*models.Ballot, error) {
	b, err := s.ballots.Get(ctx, ballotID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if b.AdminID != p.UserID {
		if !p.CanSee(b.CategoryID) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: only the ballot owner can change its state", ErrForbidden)
	}

	now := s.clock()
	if err := apply(b, now); err != nil {
		return nil, err
	}

	if err := s.ballots.UpdateLifecycle(ctx, b); err != nil {
		if errors.Is(err, store.ErrStale) {
			return nil, fmt.Errorf("%w: ballot was changed concurrently", ErrInvalidState)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       eventType,
		BallotID:   b.ID,
		UserID:     p.UserID,
		OccurredAt: now,
		Data:       map[string]interface{}{"limit_date": b.LimitDate, "time_left": b.TimeLeft},
	})
	return b, nil
}

// GetBallot returns a visible ballot with its options and the caller's vote status
func (s *Service) GetBallot(ctx context.Context, p Principal, ballotID string) (*models.BallotView, error) {
	b, err := s.visibleBallot(ctx, p, ballotID)
	if err != nil {
		return nil, err
	}

	options, err := s.ballots.Options(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	voted, err := s.votes.HasVoted(ctx, b.ID, p.UserID)
	if err != nil {
		return nil, err
	}

	return &models.BallotView{
		Ballot:   *b,
		Status:   b.StatusAt(s.clock()),
		Options:  options,
		HasVoted: voted,
	}, nil
}

// visibleBallot loads a ballot, reporting inaccessible ones as not found
func (s *Service) visibleBallot(ctx context.Context, p Principal, ballotID string) (*models.Ballot, error) {
	b, err := s.ballots.Get(ctx, ballotID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.CanSee(b.CategoryID) {
		return nil, ErrNotFound
	}
	return b, nil
}

// ListBallots returns the visible ballots matching filter (active, past or
// suspended), soonest limit date first.
func (s *Service) ListBallots(ctx context.Context, p Principal, filter string) ([]models.BallotView, error) {
	status, ok := models.FilterStatus(filter)
	if !ok {
		return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidPayload, filter)
	}

	ballots, err := s.ballots.List(ctx, p.CategoryIDs(), p.IsAdmin)
	if err != nil {
		return nil, err
	}
	voted, err := s.votes.VotedBallotIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	views := []models.BallotView{}
	for _, b := range ballots {
		if !p.CanSee(b.CategoryID) || b.StatusAt(now) != status {
			continue
		}
		views = append(views, models.BallotView{Ballot: b, Status: status, HasVoted: voted[b.ID]})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].LimitDate.Equal(views[j].LimitDate) {
			return views[i].LimitDate.Before(views[j].LimitDate)
		}
		return views[i].ID < views[j].ID
	})
	return views, nil
}

// ListBallotsPartitioned splits ListBallots into ballots the caller has and has not voted on
func (s *Service) ListBallotsPartitioned(ctx context.Context, p Principal, filter string) (*models.PartitionedBallots, error) {
	views, err := s.ListBallots(ctx, p, filter)
	if err != nil {
		return nil, err
	}

	out := &models.PartitionedBallots{Voted: []models.BallotView{}, Unvoted: []models.BallotView{}}
	for _, v := range views {
		if v.HasVoted {
			out.Voted = append(out.Voted, v)
		} else {
			out.Unvoted = append(out.Unvoted, v)
		}
	}
	return out, nil
}

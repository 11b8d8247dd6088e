// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/quorum/auth"
	"github.com/danielhkuo/quorum/events"
	"github.com/danielhkuo/quorum/models"
	"github.com/danielhkuo/quorum/store"
)

// SubmitVote validates and records the caller's vote.
//
// Checks run in order and stop at the first failure: the ballot must be
// visible and open (else ErrNotFound), the payload must name options, a
// ranking must cover every option exactly once, single-vote types must not
// have been voted on (ErrAlreadyVoted), and every option must belong to the
// ballot (ErrInvalidOption). Multi-vote types replace the previous selection.
func (s *Service) SubmitVote(ctx context.Context, p Principal, ballotID string, payload models.VotePayload) (*models.VoteResult, error) {
	b, err := s.ballots.Get(ctx, ballotID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if !p.CanSee(b.CategoryID) || !b.AcceptsVotesAt(now) {
		return nil, ErrNotFound
	}

	options, err := s.ballots.Options(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	ids, text, err := requestedOptions(b.Type, payload, options)
	if err != nil {
		return nil, err
	}

	multi := models.IsMultiVote(b.Type)
	if !multi {
		voted, err := s.votes.HasVoted(ctx, b.ID, p.UserID)
		if err != nil {
			return nil, err
		}
		if voted {
			return nil, ErrAlreadyVoted
		}
	}

	if err := resolveOptions(b.Type, ids, options); err != nil {
		return nil, err
	}

	votes := make([]models.Vote, len(ids))
	for i, optionID := range ids {
		v := models.Vote{
			ID:        auth.NewID(),
			UserID:    p.UserID,
			BallotID:  b.ID,
			OptionID:  optionID,
			CreatedAt: now,
		}
		switch b.Type {
		case models.TypeRankedChoice:
			v.RankPosition = i + 1
			v.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		case models.TypeTextInput:
			v.TextResponse = &text
		}
		votes[i] = v
	}

	if err := s.votes.Record(ctx, p.UserID, b.ID, multi, votes, now); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyVoted
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.VoteSubmitted,
		BallotID:   b.ID,
		UserID:     p.UserID,
		OccurredAt: now,
		Data:       map[string]interface{}{"type": b.Type, "option_ids": ids},
	})

	return &models.VoteResult{BallotType: b.Type, Votes: votes}, nil
}

// requestedOptions extracts the option IDs (and text) a payload asks for and
// checks their shape against the ballot type.
func requestedOptions(ballotType string, payload models.VotePayload, options []models.VotingOption) ([]string, string, error) {
	if ballotType == models.TypeTextInput {
		text := strings.TrimSpace(payload.TextResponse)
		if text == "" {
			return nil, "", fmt.Errorf("%w: text response is required", ErrInvalidPayload)
		}

		var textOption *models.VotingOption
		for i := range options {
			if options[i].IsText {
				textOption = &options[i]
				break
			}
		}
		if textOption == nil {
			return nil, "", fmt.Errorf("%w: ballot has no text option", ErrInvalidState)
		}
		if payload.OptionID != "" {
			return []string{payload.OptionID}, text, nil
		}
		return []string{textOption.ID}, text, nil
	}

	ids := payload.OptionIDs
	if payload.OptionID != "" {
		ids = append([]string{payload.OptionID}, ids...)
	}
	if len(ids) == 0 {
		return nil, "", fmt.Errorf("%w: at least one option is required", ErrInvalidPayload)
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, "", fmt.Errorf("%w: empty option id", ErrInvalidPayload)
		}
	}

	switch ballotType {
	case models.TypeMultipleChoice:
	case models.TypeRankedChoice:
		distinct := make(map[string]bool, len(ids))
		for _, id := range ids {
			distinct[id] = true
		}
		if len(ids) != len(options) || len(distinct) != len(options) {
			return nil, "", fmt.Errorf("%w: ranking must list each of the %d options exactly once", ErrInvalidPayload, len(options))
		}
	default:
		if len(ids) != 1 {
			return nil, "", fmt.Errorf("%w: exactly one option is required", ErrInvalidPayload)
		}
	}
	return ids, "", nil
}

// resolveOptions checks that every requested ID is a distinct option of the
// ballot. Text ballots only accept their free-text option.
func resolveOptions(ballotType string, ids []string, options []models.VotingOption) error {
	known := make(map[string]bool, len(options))
	for _, opt := range options {
		if ballotType == models.TypeTextInput && !opt.IsText {
			continue
		}
		known[opt.ID] = true
	}

	resolved := make(map[string]bool, len(ids))
	for _, id := range ids {
		if known[id] {
			resolved[id] = true
		}
	}
	if len(resolved) != len(ids) {
		return ErrInvalidOption
	}
	return nil
}

// GetUserVote returns the caller's rows on a visible ballot
func (s *Service) GetUserVote(ctx context.Context, p Principal, ballotID string) (*models.VoteResult, error) {
	b, err := s.visibleBallot(ctx, p, ballotID)
	if err != nil {
		return nil, err
	}

	votes, err := s.votes.ForUser(ctx, b.ID, p.UserID)
	if err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		return nil, fmt.Errorf("%w: no vote on this ballot", ErrNotFound)
	}
	return &models.VoteResult{BallotType: b.Type, Votes: votes}, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/danielhkuo/quorum/events"
	"github.com/danielhkuo/quorum/models"
)

const publishTimeout = 2 * time.Second

type BallotRepository interface {
	Create(ctx context.Context, b *models.Ballot, options []models.VotingOption) error
	Get(ctx context.Context, id string) (*models.Ballot, error)
	Options(ctx context.Context, ballotID string) ([]models.VotingOption, error)
	List(ctx context.Context, categoryIDs []string, all bool) ([]models.Ballot, error)
	UpdateLifecycle(ctx context.Context, b *models.Ballot) error
}

type VoteRepository interface {
	Record(ctx context.Context, userID, ballotID string, replace bool, votes []models.Vote, at time.Time) error
	HasVoted(ctx context.Context, ballotID, userID string) (bool, error)
	ForUser(ctx context.Context, ballotID, userID string) ([]models.Vote, error)
	ForBallot(ctx context.Context, ballotID string) ([]models.Vote, error)
	VotedBallotIDs(ctx context.Context, userID string) (map[string]bool, error)
}

// EligibilityResolver maps users to the categories they may act on
type EligibilityResolver interface {
	EligibleCategoryIDs(ctx context.Context, userID string) ([]string, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	EligibleUserCount(ctx context.Context, categoryID string) (int, error)
}

// Directory is the eligibility resolver plus the role and category plumbing
type Directory interface {
	EligibilityResolver
	CreateRole(ctx context.Context, r *models.Role) error
	ListRoles(ctx context.Context) ([]models.Role, error)
	AssignRole(ctx context.Context, userID, roleID string) error
	CreateCategory(ctx context.Context, c *models.Category) error
	ListCategories(ctx context.Context, ids []string, all bool) ([]models.Category, error)
	CategoryExists(ctx context.Context, id string) (bool, error)
}

// Service implements ballot, vote and analytics operations on behalf of a Principal
type Service struct {
	ballots   BallotRepository
	votes     VoteRepository
	directory Directory
	events    events.Publisher
	now       func() time.Time
}

// New builds a Service. A nil publisher drops events.
func New(ballots BallotRepository, votes VoteRepository, directory Directory, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		ballots:   ballots,
		votes:     votes,
		directory: directory,
		events:    publisher,
		now:       time.Now,
	}
}

// SetClock replaces the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Principal is an authenticated caller with its resolved eligibility
type Principal struct {
	UserID     string
	IsAdmin    bool
	categories map[string]bool
}

// NewPrincipal builds a principal from already-resolved eligibility
func NewPrincipal(userID string, isAdmin bool, categoryIDs ...string) Principal {
	p := Principal{UserID: userID, IsAdmin: isAdmin, categories: make(map[string]bool, len(categoryIDs))}
	for _, id := range categoryIDs {
		p.categories[id] = true
	}
	return p
}

// CanSee reports whether ballots of the category are visible to the principal
func (p Principal) CanSee(categoryID string) bool {
	return p.IsAdmin || p.categories[categoryID]
}

// CategoryIDs returns the eligible categories in sorted order
func (p Principal) CategoryIDs() []string {
	ids := make([]string, 0, len(p.categories))
	for id := range p.categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve loads the eligibility of an authenticated user
func (s *Service) Resolve(ctx context.Context, userID string) (Principal, error) {
	if userID == "" {
		return Principal{}, ErrUnauthenticated
	}

	isAdmin, err := s.directory.IsAdmin(ctx, userID)
	if err != nil {
		return Principal{}, err
	}
	categoryIDs, err := s.directory.EligibleCategoryIDs(ctx, userID)
	if err != nil {
		return Principal{}, err
	}
	return NewPrincipal(userID, isAdmin, categoryIDs...), nil
}

// publish sends an event after the write has committed. Failures are logged only.
func (s *Service) publish(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event",
			"type", e.Type,
			"ballot_id", e.BallotID,
			"error", err,
		)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"

	"github.com/danielhkuo/quorum/models"
	"github.com/danielhkuo/quorum/tally"
)

// GetAnalytics computes the analytics view of a visible ballot from its current votes
func (s *Service) GetAnalytics(ctx context.Context, p Principal, ballotID string) (*models.Analytics, error) {
	b, err := s.visibleBallot(ctx, p, ballotID)
	if err != nil {
		return nil, err
	}

	options, err := s.ballots.Options(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.ForBallot(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	eligible, err := s.directory.EligibleUserCount(ctx, b.CategoryID)
	if err != nil {
		return nil, err
	}

	a := tally.Analyze(tally.Input{
		Ballot:        *b,
		Options:       options,
		Votes:         votes,
		EligibleUsers: eligible,
		Now:           s.clock(),
	})
	return &a, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quorum/models"
)

const voteColumns = `id, user_id, ballot_id, option_id, text_response, rank_position, created_at`

// VoteStore persists vote rows and the per-user receipts that serialize submissions
type VoteStore struct {
	db *sqlx.DB
}

func NewVoteStore(db *sqlx.DB) *VoteStore {
	return &VoteStore{db: db}
}

// Record writes a user's votes for a ballot in one transaction.
//
// Without replace, the user must not have voted yet; a second submission
// (including a concurrent one) fails with ErrDuplicate. With replace, the
// receipt row is upserted first, which locks it for the rest of the
// transaction, and the user's previous votes are deleted before the new
// rows are inserted.
func (s *VoteStore) Record(ctx context.Context, userID, ballotID string, replace bool, votes []models.Vote, at time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if replace {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO vote_receipt (user_id, ballot_id, submitted_at)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, ballot_id) DO UPDATE SET submitted_at = excluded.submitted_at
		`), userID, ballotID, at)
		if err != nil {
			return fmt.Errorf("failed to upsert vote receipt: %w", err)
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			DELETE FROM vote WHERE user_id = ? AND ballot_id = ?
		`), userID, ballotID)
		if err != nil {
			return fmt.Errorf("failed to delete previous votes: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO vote_receipt (user_id, ballot_id, submitted_at)
			VALUES (?, ?, ?)
		`), userID, ballotID, at)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert vote receipt: %w", err)
		}
	}

	for _, v := range votes {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO vote (id, user_id, ballot_id, option_id, text_response, rank_position, created_at)
			VALUES (:id, :user_id, :ballot_id, :option_id, :text_response, :rank_position, :created_at)
		`, v)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit votes: %w", err)
	}
	return nil
}

// HasVoted reports whether the user holds at least one vote row on the ballot
func (s *VoteStore) HasVoted(ctx context.Context, ballotID, userID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.db.Rebind(`
		SELECT COUNT(*) FROM vote WHERE ballot_id = ? AND user_id = ?
	`), ballotID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to count votes: %w", err)
	}
	return count > 0, nil
}

// ForUser returns the user's rows on a ballot, ranked rows in rank order
func (s *VoteStore) ForUser(ctx context.Context, ballotID, userID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.db.SelectContext(ctx, &votes, s.db.Rebind(`
		SELECT `+voteColumns+`
		FROM vote
		WHERE ballot_id = ? AND user_id = ?
		ORDER BY rank_position, created_at, id
	`), ballotID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user votes: %w", err)
	}
	return votes, nil
}

// ForBallot returns every vote row of a ballot in insertion order
func (s *VoteStore) ForBallot(ctx context.Context, ballotID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.db.SelectContext(ctx, &votes, s.db.Rebind(`
		SELECT `+voteColumns+`
		FROM vote
		WHERE ballot_id = ?
		ORDER BY created_at, id
	`), ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballot votes: %w", err)
	}
	return votes, nil
}

// VotedBallotIDs returns the set of ballots the user has at least one vote row on
func (s *VoteStore) VotedBallotIDs(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, s.db.Rebind(`
		SELECT DISTINCT ballot_id FROM vote WHERE user_id = ?
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voted ballots: %w", err)
	}

	voted := make(map[string]bool, len(ids))
	for _, id := range ids {
		voted[id] = true
	}
	return voted, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quorum/models"
)

const ballotColumns = `id, title, description, type, category_id, admin_id,
	limit_date, is_suspended, time_left, version, created_at`

// BallotStore persists ballots and their options
type BallotStore struct {
	db *sqlx.DB
}

func NewBallotStore(db *sqlx.DB) *BallotStore {
	return &BallotStore{db: db}
}

// Create inserts a ballot and its options in one transaction
func (s *BallotStore) Create(ctx context.Context, b *models.Ballot, options []models.VotingOption) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO ballot (id, title, description, type, category_id, admin_id,
			limit_date, is_suspended, time_left, version, created_at)
		VALUES (:id, :title, :description, :type, :category_id, :admin_id,
			:limit_date, :is_suspended, :time_left, :version, :created_at)
	`, b)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("category %s: %w", b.CategoryID, ErrNotFound)
		}
		return fmt.Errorf("failed to insert ballot: %w", err)
	}

	for _, opt := range options {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO voting_option (id, ballot_id, title, is_text, position)
			VALUES (:id, :ballot_id, :title, :is_text, :position)
		`, opt)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ballot: %w", err)
	}
	return nil
}

// Get returns a ballot by ID
func (s *BallotStore) Get(ctx context.Context, id string) (*models.Ballot, error) {
	var b models.Ballot
	err := s.db.GetContext(ctx, &b, s.db.Rebind(`SELECT `+ballotColumns+` FROM ballot WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ballot: %w", err)
	}
	return &b, nil
}

// Options returns a ballot's options in creation order
func (s *BallotStore) Options(ctx context.Context, ballotID string) ([]models.VotingOption, error) {
	var options []models.VotingOption
	err := s.db.SelectContext(ctx, &options, s.db.Rebind(`
		SELECT id, ballot_id, title, is_text, position
		FROM voting_option
		WHERE ballot_id = ?
		ORDER BY position, id
	`), ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	return options, nil
}

// List returns ballots in the given categories ordered by ascending limit date.
// When all is true the category filter is ignored.
func (s *BallotStore) List(ctx context.Context, categoryIDs []string, all bool) ([]models.Ballot, error) {
	query := `SELECT ` + ballotColumns + ` FROM ballot`
	var args []interface{}

	if !all {
		if len(categoryIDs) == 0 {
			return nil, nil
		}
		var err error
		query, args, err = sqlx.In(query+` WHERE category_id IN (?)`, categoryIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to build ballot query: %w", err)
		}
	}
	query += ` ORDER BY limit_date ASC, id ASC`

	var ballots []models.Ballot
	if err := s.db.SelectContext(ctx, &ballots, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list ballots: %w", err)
	}
	return ballots, nil
}

// UpdateLifecycle writes the lifecycle fields of b if its version is still current,
// then advances b.Version. A concurrent writer makes it fail with ErrStale.
func (s *BallotStore) UpdateLifecycle(ctx context.Context, b *models.Ballot) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE ballot
		SET limit_date = ?, is_suspended = ?, time_left = ?, version = version + 1
		WHERE id = ? AND version = ?
	`), b.LimitDate, b.IsSuspended, b.TimeLeft, b.ID, b.Version)
	if err != nil {
		return fmt.Errorf("failed to update ballot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrStale
	}

	b.Version++
	return nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the database of the given type ("postgres" or "sqlite") and verifies the connection.
// SQLite connections get foreign keys and a busy timeout unless the DSN sets pragmas itself.
func Open(ctx context.Context, dbType, url string) (*sqlx.DB, error) {
	driver, dsn, err := driverFor(dbType, url)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

func driverFor(dbType, url string) (driver, dsn string, err error) {
	switch dbType {
	case "postgres":
		return "postgres", url, nil
	case "sqlite":
		if !strings.Contains(url, "_pragma=") {
			sep := "?"
			if strings.Contains(url, "?") {
				sep = "&"
			}
			url += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
		return "sqlite", url, nil
	}
	return "", "", fmt.Errorf("unsupported database type %q", dbType)
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are always written by the application in UTC, so the DDL stays
// portable between PostgreSQL and SQLite.
const schema = `
-- Eligibility directory
CREATE TABLE IF NOT EXISTS role (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS user_role (
    user_id TEXT NOT NULL,
    role_id TEXT NOT NULL REFERENCES role(id) ON DELETE CASCADE,
    PRIMARY KEY (user_id, role_id)
);

CREATE INDEX IF NOT EXISTS idx_user_role_role_id ON user_role(role_id);

CREATE TABLE IF NOT EXISTS category (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS category_role (
    category_id TEXT NOT NULL REFERENCES category(id) ON DELETE CASCADE,
    role_id TEXT NOT NULL REFERENCES role(id) ON DELETE CASCADE,
    PRIMARY KEY (category_id, role_id)
);

CREATE INDEX IF NOT EXISTS idx_category_role_role_id ON category_role(role_id);

-- Ballots
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL CHECK (type IN ('SINGLE_CHOICE', 'MULTIPLE_CHOICE', 'RANKED_CHOICE', 'LINEAR_CHOICE', 'TEXT_INPUT', 'YES_NO')),
    category_id TEXT NOT NULL REFERENCES category(id),
    admin_id TEXT NOT NULL,
    limit_date TIMESTAMP NOT NULL,
    is_suspended BOOLEAN NOT NULL DEFAULT FALSE,
    time_left BIGINT,
    version BIGINT NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ballot_category_id ON ballot(category_id);
CREATE INDEX IF NOT EXISTS idx_ballot_limit_date ON ballot(limit_date);

-- Options
CREATE TABLE IF NOT EXISTS voting_option (
    id TEXT PRIMARY KEY,
    ballot_id TEXT NOT NULL REFERENCES ballot(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    is_text BOOLEAN NOT NULL DEFAULT FALSE,
    position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voting_option_ballot_id ON voting_option(ballot_id);

-- One receipt per user per ballot; serializes concurrent submissions
CREATE TABLE IF NOT EXISTS vote_receipt (
    user_id TEXT NOT NULL,
    ballot_id TEXT NOT NULL REFERENCES ballot(id) ON DELETE CASCADE,
    submitted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, ballot_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_receipt_ballot_id ON vote_receipt(ballot_id);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    ballot_id TEXT NOT NULL REFERENCES ballot(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES voting_option(id) ON DELETE CASCADE,
    text_response TEXT,
    rank_position INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (user_id, ballot_id, option_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_ballot_id ON vote(ballot_id);
CREATE INDEX IF NOT EXISTS idx_vote_user_ballot ON vote(user_id, ballot_id);
`

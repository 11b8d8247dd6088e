// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connections

Open selects the driver from the configured type and pings the server:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

"postgres" uses lib/pq; "sqlite" uses the pure-Go modernc.org/sqlite driver
with foreign keys enabled. Queries are written with ? placeholders and
rebound by sqlx for the active driver.

# Schema Creation

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - role: named role, is_admin capability flag
  - user_role: user membership in roles
  - category: ballot grouping
  - category_role: roles eligible for a category
  - ballot: ballot metadata and lifecycle fields
  - voting_option: options per ballot
  - vote_receipt: one row per (user, ballot) that has voted
  - vote: individual selections

# Relationships

	role *──* user      (via user_role)
	category *──* role  (via category_role)
	category 1──* ballot
	ballot 1──* voting_option
	ballot 1──* vote_receipt
	ballot 1──* vote
	voting_option 1──* vote

There is no status column on ballot. Status is derived from is_suspended and
limit_date at read time.
*/
package db

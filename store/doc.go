// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store holds the sqlx repositories for ballots, votes and the
role/category directory. Queries are written with ? placeholders and rebound
for the connected driver, so the same code runs on SQLite and PostgreSQL.

Constraint violations are translated:

  - ErrDuplicate: unique or primary key conflict
  - ErrNotFound: missing row, or a foreign key pointing at one
  - ErrStale: a versioned ballot update lost a race

# Vote Receipts

Every submission writes a vote_receipt row keyed by (user_id, ballot_id) in
the same transaction as its vote rows. Single-vote ballots insert it, so a
second submission fails on the key. Multi-vote ballots upsert it, then
replace the user's rows.
*/
package store

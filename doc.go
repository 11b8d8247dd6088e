// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quorum API server.

Quorum runs role-gated ballots: admins publish ballots into categories,
and users whose roles are eligible for a category can see and vote on them.
Ballots can be suspended, resumed and ended early, and every ballot has a
live analytics view.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=quorum.db JWT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ...

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): HMAC key for bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - BOOTSTRAP_ADMIN (-bootstrap-admin): user ID granted the DefaultAdmin role at startup
  - REDIS_URL: enables per-user vote rate limiting
  - VOTE_RATE_LIMIT, VOTE_RATE_WINDOW: votes allowed per window (default: 10 per 1m)
  - KAFKA_BROKERS, KAFKA_TOPIC: publish ballot events (default topic: ballot-events)
  - ALLOWED_ORIGINS: comma-separated CORS origins (default: *)

# Architecture

  - handlers: gin request handlers (ballots, voting, directory)
  - router: Route definitions and middleware chain
  - middleware: Logging, auth, rate limiting, JSON and error helpers
  - service: Ballot lifecycle, vote acceptance and access rules
  - tally: Analytics computation
  - store: sqlx repositories
  - events: Ballot event publishing
  - limiter: Redis rate limiter
  - models: Domain and request/response types
  - auth: Tokens and IDs
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type (sqlite or postgres)
	-jwt-secret       JWT signing secret
	-bootstrap-admin  User ID granted the DefaultAdmin role at startup

# Environment Variables

Flags fall back to environment variables, read through viper. A .env file in
the working directory is loaded first if present; real environment variables
win over it.

	PORT              → -p (default 3318)
	DATABASE_URL      → -d (required)
	DATABASE_TYPE     → -t (default sqlite)
	JWT_SECRET        → -jwt-secret (required)
	BOOTSTRAP_ADMIN   → -bootstrap-admin
	REDIS_URL         vote rate limiting, disabled when empty
	VOTE_RATE_LIMIT   submissions per window (default 10)
	VOTE_RATE_WINDOW  window duration (default 1m)
	KAFKA_BROKERS     comma separated, event publishing disabled when empty
	KAFKA_TOPIC       default ballot-events
	ALLOWED_ORIGINS   comma separated CORS origins (default *)

CLI flags take precedence over environment variables.
*/
package cliparse

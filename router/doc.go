// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quorum API.

# Route Registration

NewRouter creates a configured gin engine with all endpoints:

	r := router.NewRouter(svc, cfg, voteLimiter)

Every request passes through recovery, request logging and CORS. Routes
under /api/v1 also require a bearer token and resolve the caller's roles.

# Endpoints

Public:

	GET /health
	GET /

Ballots:

	POST /api/v1/ballots                 - Create ballot (admin)
	GET  /api/v1/ballots                 - List (?status=active|past|suspended&partition=true)
	GET  /api/v1/ballots/:id             - Ballot with options
	POST /api/v1/ballots/:id/suspend     - Suspend (owner)
	POST /api/v1/ballots/:id/unsuspend   - Resume (owner)
	POST /api/v1/ballots/:id/end         - End early (owner)
	GET  /api/v1/ballots/:id/analytics   - Analytics

Voting:

	POST /api/v1/ballots/:id/votes       - Submit vote (rate limited)
	GET  /api/v1/ballots/:id/votes/me    - Caller's vote

Directory (admin):

	POST /api/v1/roles
	GET  /api/v1/roles
	POST /api/v1/roles/:id/members
	POST /api/v1/categories
	GET  /api/v1/categories              - Any user; lists eligible categories
*/
package router

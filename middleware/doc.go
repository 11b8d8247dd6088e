// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides gin middleware and response helpers.

# Request Logging

	r.Use(middleware.WithLogging())

Logs request start (method, path, remote) and completion (status, duration_ms).

# Authentication

RequireAuth validates the bearer token and stores the user ID; LoadPrincipal
then resolves the user's roles into a service.Principal:

	api := r.Group("/api/v1",
		middleware.RequireAuth(cfg.JWTSecret),
		middleware.LoadPrincipal(svc),
	)

Handlers read it back with PrincipalFrom.

# Rate Limiting

	ballots.POST("/:id/votes", middleware.RateLimit(l, "vote"), h.SubmitVote)

Keys are scope:userID. Over-limit requests get 429. A nil limiter or a
limiter error lets the request through.

# JSON Helpers

	middleware.JSONResponse(c, http.StatusOK, data)
	middleware.ErrorResponse(c, http.StatusBadRequest, "message")
	middleware.WriteError(c, err)

WriteError maps service errors to statuses:

  - ErrNotFound: 404
  - ErrForbidden: 403
  - ErrUnauthenticated: 401
  - ErrInvalidState, ErrAlreadyVoted, ErrConflict: 409
  - ErrInvalidPayload (and ErrInvalidOption): 400
  - anything else: 500, logged, with a generic message
*/
package middleware

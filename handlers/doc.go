// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains gin request handlers for the Quorum API.

# Handler Types

Each handler wraps the service layer:

  - BallotHandler: create, list, get, lifecycle transitions, analytics
  - VotingHandler: vote submission and the caller's own vote
  - DirectoryHandler: roles, role membership, categories

	ballotHandler := handlers.NewBallotHandler(svc)

Handlers expect the principal to have been loaded by middleware.LoadPrincipal.
They decode the request, call the service and map errors with
middleware.WriteError; access and validation rules live in the service.

# Vote Responses

POST /ballots/:id/votes returns 201 with a single vote object for single
choice, yes/no, linear and text ballots, and an array of votes for multiple
and ranked choice ballots. GET /ballots/:id/votes/me uses the same shape.
*/
package handlers

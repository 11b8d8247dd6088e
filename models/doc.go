// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateBallotRequest: title, description, category_id, limit_date, type, options
  - VotePayload: option_id, option_ids, text_response
  - CreateRoleRequest: name, is_admin
  - AssignRoleRequest: user_id
  - CreateCategoryRequest: name, role_ids

# Domain Types

  - Ballot: ballot metadata and lifecycle fields
  - VotingOption: one selectable choice
  - Vote: one persisted selection by one user
  - Role, Category: eligibility directory

# Response Types

  - BallotView: ballot with options, derived status and has_voted
  - PartitionedBallots: voted / unvoted lists
  - VoteResult: the caller's rows; Body renders a single record or an array
  - Analytics: distribution, ranking, text responses, activity, participation
  - ErrorResponse: error, message

# Status

Status is never stored. Ballot.StatusAt derives it from is_suspended and limit_date:

	suspended  if is_suspended
	ended      if limit_date <= now
	active     otherwise

# Linear Titles

LINEAR_CHOICE option titles encode "<integer>[,<label>]", e.g. "5,Excellent".
ParseLinearTitle splits them.
*/
package models

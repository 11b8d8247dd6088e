// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package service implements ballot operations on behalf of an authenticated
Principal.

# Visibility

A principal sees a ballot when it is an admin or one of its roles is
eligible for the ballot's category. Ballots a principal cannot see are
reported as ErrNotFound, the same as ballots that do not exist.

# Lifecycle

Status is derived from the stored fields and the clock:

	suspended  is_suspended
	ended      limit_date <= now
	active     otherwise

Only the owning admin may transition a ballot:

  - SuspendBallot (active only) stores the whole seconds left and parks the limit date 100 years out
  - UnsuspendBallot (suspended only) restores limit_date = now + time left
  - EndBallotEarly (active or suspended) sets limit_date = now; ended is terminal

Transitions are versioned writes; a concurrent change makes the loser fail
with ErrInvalidState.

# Votes

SubmitVote accepts a vote only while the ballot is active. Single choice,
yes/no, linear and text ballots take one vote per user (ErrAlreadyVoted
afterwards). Multiple and ranked choice ballots replace the user's previous
vote. A ranking must list every option exactly once.

# Events

Successful writes publish events.Event values after commit. Publishing is
best effort; failures are logged.
*/
package service

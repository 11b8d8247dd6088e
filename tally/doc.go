// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes ballot analytics from raw vote rows.

Everything here is pure: no database access, no clock, no locks. Callers
load the ballot, its options and its votes, then call Analyze:

	a := tally.Analyze(tally.Input{
		Ballot:        ballot,
		Options:       options,
		Votes:         votes,
		EligibleUsers: eligible,
		Now:           time.Now(),
	})

# Views By Type

  - SINGLE_CHOICE, MULTIPLE_CHOICE, YES_NO: choice distribution
  - LINEAR_CHOICE: choice distribution with parsed values and the average value
  - RANKED_CHOICE: rank distribution, Borda scores, winner
  - TEXT_INPUT: non-empty text responses

Every type also gets participation and hourly/daily activity.

# Borda Count

Each user's rows are put back into preference order (rank position, then
timestamp). An option ranked r-th of n earns n - r + 1 points:

	score = Σ count(rank r) * (n - r + 1)

The normalized score is score / (voters * n) * 100. The highest score wins;
ties go to the earlier option.

# Zero Votes

A ballot without votes still lists every option with zero counts and all 24
hourly slots, and has a participation rate of 0.
*/
package tally

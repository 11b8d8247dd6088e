// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidLinearTitle = errors.New("linear option title must be \"<integer>[,<label>]\"")

// StatusAt derives the ballot status at the given instant.
// A ballot whose limit date has been reached accepts no votes and counts as ended.
func (b Ballot) StatusAt(now time.Time) string {
	if b.IsSuspended {
		return StatusSuspended
	}
	if !b.LimitDate.After(now) {
		return StatusEnded
	}
	return StatusActive
}

// AcceptsVotesAt reports whether votes may be cast at the given instant
func (b Ballot) AcceptsVotesAt(now time.Time) bool {
	return !b.IsSuspended && b.LimitDate.After(now)
}

// IsValidType reports whether t names one of the six ballot types
func IsValidType(t string) bool {
	switch t {
	case TypeSingleChoice, TypeMultipleChoice, TypeRankedChoice,
		TypeLinearChoice, TypeTextInput, TypeYesNo:
		return true
	}
	return false
}

// IsMultiVote reports whether a user may hold several vote rows on a ballot of type t
func IsMultiVote(t string) bool {
	return t == TypeMultipleChoice || t == TypeRankedChoice
}

// FilterStatus maps a list filter to the ballot status it selects
func FilterStatus(filter string) (string, bool) {
	switch filter {
	case FilterActive:
		return StatusActive, true
	case FilterPast:
		return StatusEnded, true
	case FilterSuspended:
		return StatusSuspended, true
	}
	return "", false
}

// ParseLinearTitle splits a LINEAR_CHOICE option title into its value and optional label
func ParseLinearTitle(title string) (int, string, error) {
	raw, label, _ := strings.Cut(title, ",")
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidLinearTitle, title)
	}
	return value, strings.TrimSpace(label), nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"errors"
	"fmt"
)

// Operation failures. Wrapped errors add detail; match with errors.Is.
var (
	// ErrNotFound covers both absent and inaccessible records.
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrAlreadyVoted    = errors.New("already voted")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("already exists")

	ErrInvalidOption = fmt.Errorf("%w: option does not belong to ballot", ErrInvalidPayload)
)

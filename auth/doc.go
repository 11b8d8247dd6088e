// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides bearer token and ID generation utilities.

# Bearer Tokens

Callers authenticate with an HS256 JWT whose subject is the user ID:

	token, err := auth.IssueToken(secret, userID, 24*time.Hour)
	userID, err := auth.ParseToken(secret, token)

Login and credential checks live outside this service; tokens are issued by
an upstream identity provider sharing the secret. IssueToken exists for that
provider, for tooling, and for tests.

# ID Generation

Record IDs are UUIDv7 strings, so they sort by creation time:

	id := auth.NewID()
*/
package auth

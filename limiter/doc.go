// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package limiter provides per-key request rate limiting backed by Redis.

RedisLimiter keeps one sorted set per key holding the timestamps of recent
attempts. Each call trims entries older than the window, counts the rest and
records the new attempt in a single MULTI/EXEC pipeline.

	client, err := limiter.Connect(ctx, cfg.RedisURL)
	l := limiter.NewRedisLimiter(client, cfg.VoteRateLimit, cfg.VoteRateWindow)
	allowed, err := l.Allow(ctx, "vote:"+userID)

Rejected attempts are recorded too, so a client that keeps retrying stays
limited until it backs off for a full window.
*/
package limiter

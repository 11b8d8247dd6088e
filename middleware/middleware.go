// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/quorum/auth"
	"github.com/danielhkuo/quorum/limiter"
	"github.com/danielhkuo/quorum/models"
	"github.com/danielhkuo/quorum/service"
)

// Context keys set by the auth middleware
const (
	userIDKey    = "user_id"
	principalKey = "principal"
)

// WithLogging logs the start and completion of every request
func WithLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		slog.Info("request started",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote", c.ClientIP(),
		)

		c.Next()

		slog.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// JSONResponse writes a JSON response
func JSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// ErrorResponse writes a JSON error response and stops the handler chain
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// StatusFor maps a service error to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrAlreadyVoted),
		errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError reports a service error. Unexpected errors are logged and hidden from the client.
func WriteError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		ErrorResponse(c, status, "Internal server error")
		return
	}
	ErrorResponse(c, status, err.Error())
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			ErrorResponse(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		userID, err := auth.ParseToken(secret, token)
		if err != nil {
			ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// PrincipalResolver loads the eligibility of an authenticated user
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID string) (service.Principal, error)
}

// LoadPrincipal resolves the authenticated user's roles once per request.
// Must run after RequireAuth.
func LoadPrincipal(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolver.Resolve(c.Request.Context(), c.GetString(userIDKey))
		if err != nil {
			WriteError(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by LoadPrincipal
func PrincipalFrom(c *gin.Context) (service.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return service.Principal{}, false
	}
	p, ok := v.(service.Principal)
	return p, ok
}

// RateLimit caps requests per user. A nil limiter disables limiting;
// limiter failures let the request through.
func RateLimit(l limiter.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		key := scope + ":" + c.GetString(userIDKey)
		allowed, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Warn("rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			ErrorResponse(c, http.StatusTooManyRequests, "Too many requests, try again later")
			return
		}
		c.Next()
	}
}

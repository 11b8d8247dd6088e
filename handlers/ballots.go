// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/quorum/middleware"
	"github.com/danielhkuo/quorum/models"
	"github.com/danielhkuo/quorum/service"
)

type BallotHandler struct {
	svc *service.Service
}

func NewBallotHandler(svc *service.Service) *BallotHandler {
	return &BallotHandler{svc: svc}
}

// principal returns the caller resolved by the auth middleware, writing a 401 when absent
func principal(c *gin.Context) (service.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		middleware.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
	}
	return p, ok
}

// CreateBallot handles POST /ballots
func (h *BallotHandler) CreateBallot(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateBallotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	view, err := h.svc.CreateBallot(c.Request.Context(), p, req)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	slog.Info("ballot created", "ballot_id", view.ID, "type", view.Type, "admin_id", p.UserID)
	middleware.JSONResponse(c, http.StatusCreated, view)
}

// ListBallots handles GET /ballots?status=active|past|suspended&partition=true
func (h *BallotHandler) ListBallots(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	filter := c.DefaultQuery("status", models.FilterActive)
	partition, err := strconv.ParseBool(c.DefaultQuery("partition", "false"))
	if err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "partition must be true or false")
		return
	}

	if partition {
		parts, err := h.svc.ListBallotsPartitioned(c.Request.Context(), p, filter)
		if err != nil {
			middleware.WriteError(c, err)
			return
		}
		middleware.JSONResponse(c, http.StatusOK, parts)
		return
	}

	ballots, err := h.svc.ListBallots(c.Request.Context(), p, filter)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, ballots)
}

// GetBallot handles GET /ballots/:id
func (h *BallotHandler) GetBallot(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	view, err := h.svc.GetBallot(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, view)
}

// SuspendBallot handles POST /ballots/:id/suspend
func (h *BallotHandler) SuspendBallot(c *gin.Context) {
	h.transition(c, "suspended", h.svc.SuspendBallot)
}

// UnsuspendBallot handles POST /ballots/:id/unsuspend
func (h *BallotHandler) UnsuspendBallot(c *gin.Context) {
	h.transition(c, "unsuspended", h.svc.UnsuspendBallot)
}

// EndBallot handles POST /ballots/:id/end
func (h *BallotHandler) EndBallot(c *gin.Context) {
	h.transition(c, "ended", h.svc.EndBallotEarly)
}

// lifecycleFunc is one of the service's ballot state transitions
type lifecycleFunc func(ctx context.Context, p service.Principal, ballotID string) (*models.Ballot, error)

func (h *BallotHandler) transition(c *gin.Context, action string, apply lifecycleFunc) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ballot, err := apply(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	slog.Info("ballot "+action, "ballot_id", ballot.ID, "admin_id", p.UserID)
	middleware.JSONResponse(c, http.StatusOK, ballot)
}

// GetAnalytics handles GET /ballots/:id/analytics
func (h *BallotHandler) GetAnalytics(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	analytics, err := h.svc.GetAnalytics(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, analytics)
}

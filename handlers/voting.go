// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/quorum/middleware"
	"github.com/danielhkuo/quorum/models"
	"github.com/danielhkuo/quorum/service"
)

type VotingHandler struct {
	svc *service.Service
}

func NewVotingHandler(svc *service.Service) *VotingHandler {
	return &VotingHandler{svc: svc}
}

// SubmitVote handles POST /ballots/:id/votes
//
// The response is a single vote object, or an array for multiple and ranked
// choice ballots.
func (h *VotingHandler) SubmitVote(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var payload models.VotePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.svc.SubmitVote(c.Request.Context(), p, c.Param("id"), payload)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	slog.Info("vote submitted",
		"ballot_id", c.Param("id"),
		"user_id", p.UserID,
		"rows", len(result.Votes),
	)
	middleware.JSONResponse(c, http.StatusCreated, result.Body())
}

// GetMyVote handles GET /ballots/:id/votes/me
func (h *VotingHandler) GetMyVote(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	result, err := h.svc.GetUserVote(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, result.Body())
}

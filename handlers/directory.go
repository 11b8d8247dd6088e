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

// DirectoryHandler manages roles, role membership and categories
type DirectoryHandler struct {
	svc *service.Service
}

func NewDirectoryHandler(svc *service.Service) *DirectoryHandler {
	return &DirectoryHandler{svc: svc}
}

// CreateRole handles POST /roles
func (h *DirectoryHandler) CreateRole(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	role, err := h.svc.CreateRole(c.Request.Context(), p, req)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	slog.Info("role created", "role_id", role.ID, "name", role.Name, "is_admin", role.IsAdmin)
	middleware.JSONResponse(c, http.StatusCreated, role)
}

// ListRoles handles GET /roles
func (h *DirectoryHandler) ListRoles(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	roles, err := h.svc.ListRoles(c.Request.Context(), p)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, roles)
}

// AssignRole handles POST /roles/:id/members
func (h *DirectoryHandler) AssignRole(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	roleID := c.Param("id")
	if err := h.svc.AssignRole(c.Request.Context(), p, roleID, req); err != nil {
		middleware.WriteError(c, err)
		return
	}

	slog.Info("role assigned", "role_id", roleID, "user_id", req.UserID)
	c.Status(http.StatusNoContent)
}

// CreateCategory handles POST /categories
func (h *DirectoryHandler) CreateCategory(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	category, err := h.svc.CreateCategory(c.Request.Context(), p, req)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	slog.Info("category created", "category_id", category.ID, "name", category.Name)
	middleware.JSONResponse(c, http.StatusCreated, category)
}

// ListCategories handles GET /categories
func (h *DirectoryHandler) ListCategories(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	categories, err := h.svc.ListCategories(c.Request.Context(), p)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	middleware.JSONResponse(c, http.StatusOK, categories)
}

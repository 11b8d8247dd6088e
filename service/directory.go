// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/quorum/auth"
	"github.com/danielhkuo/quorum/models"
	"github.com/danielhkuo/quorum/store"
)

func requireAdmin(p Principal) error {
	if !p.IsAdmin {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}

func (s *Service) CreateRole(ctx context.Context, p Principal, req models.CreateRoleRequest) (*models.Role, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrInvalidPayload)
	}

	role := &models.Role{ID: auth.NewID(), Name: name, IsAdmin: req.IsAdmin}
	if err := s.directory.CreateRole(ctx, role); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: role %q", ErrConflict, name)
		}
		return nil, err
	}
	return role, nil
}

func (s *Service) ListRoles(ctx context.Context, p Principal) ([]models.Role, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	roles, err := s.directory.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []models.Role{}
	}
	return roles, nil
}

// AssignRole adds a user to a role. Eligibility changes apply from the user's next request.
func (s *Service) AssignRole(ctx context.Context, p Principal, roleID string, req models.AssignRoleRequest) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidPayload)
	}

	if err := s.directory.AssignRole(ctx, userID, roleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, p Principal, req models.CreateCategoryRequest) (*models.Category, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidPayload)
	}

	roleIDs := req.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}
	category := &models.Category{ID: auth.NewID(), Name: name, RoleIDs: roleIDs}
	if err := s.directory.CreateCategory(ctx, category); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, fmt.Errorf("%w: category %q", ErrConflict, name)
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("%w: unknown role", ErrInvalidPayload)
		}
		return nil, err
	}
	return category, nil
}

// ListCategories returns the categories the caller is eligible for, or all of them for admins
func (s *Service) ListCategories(ctx context.Context, p Principal) ([]models.Category, error) {
	return s.directory.ListCategories(ctx, p.CategoryIDs(), p.IsAdmin)
}

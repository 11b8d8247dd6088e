// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quorum/auth"
	"github.com/danielhkuo/quorum/models"
)

// DefaultAdminRole is the admin-capable role created by EnsureAdmin
const DefaultAdminRole = "DefaultAdmin"

// DirectoryStore holds roles, categories and memberships, and answers
// eligibility questions over them.
type DirectoryStore struct {
	db *sqlx.DB
}

func NewDirectoryStore(db *sqlx.DB) *DirectoryStore {
	return &DirectoryStore{db: db}
}

// CreateRole inserts a role. Role names are unique.
func (s *DirectoryStore) CreateRole(ctx context.Context, r *models.Role) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO role (id, name, is_admin) VALUES (:id, :name, :is_admin)
	`, r)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert role: %w", err)
	}
	return nil
}

func (s *DirectoryStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.SelectContext(ctx, &roles, `SELECT id, name, is_admin FROM role ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// AssignRole adds the user to a role. Assigning twice is a no-op.
func (s *DirectoryStore) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO user_role (user_id, role_id) VALUES (?, ?)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`), userID, roleID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("role %s: %w", roleID, ErrNotFound)
		}
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// CreateCategory inserts a category and links it to its eligible roles
func (s *DirectoryStore) CreateCategory(ctx context.Context, c *models.Category) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `INSERT INTO category (id, name) VALUES (:id, :name)`, c)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}

	for _, roleID := range c.RoleIDs {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO category_role (category_id, role_id) VALUES (?, ?)
			ON CONFLICT (category_id, role_id) DO NOTHING
		`), c.ID, roleID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("role %s: %w", roleID, ErrNotFound)
			}
			return fmt.Errorf("failed to link category role: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category: %w", err)
	}
	return nil
}

// ListCategories returns categories with their role IDs. When all is false
// only the given category IDs are returned.
func (s *DirectoryStore) ListCategories(ctx context.Context, ids []string, all bool) ([]models.Category, error) {
	query := `SELECT id, name FROM category`
	var args []interface{}
	if !all {
		if len(ids) == 0 {
			return []models.Category{}, nil
		}
		var err error
		query, args, err = sqlx.In(query+` WHERE id IN (?)`, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to build category query: %w", err)
		}
	}
	query += ` ORDER BY name`

	var categories []models.Category
	if err := s.db.SelectContext(ctx, &categories, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var links []struct {
		CategoryID string `db:"category_id"`
		RoleID     string `db:"role_id"`
	}
	if err := s.db.SelectContext(ctx, &links, `SELECT category_id, role_id FROM category_role ORDER BY role_id`); err != nil {
		return nil, fmt.Errorf("failed to list category roles: %w", err)
	}

	byCategory := make(map[string][]string)
	for _, l := range links {
		byCategory[l.CategoryID] = append(byCategory[l.CategoryID], l.RoleID)
	}
	for i := range categories {
		categories[i].RoleIDs = byCategory[categories[i].ID]
		if categories[i].RoleIDs == nil {
			categories[i].RoleIDs = []string{}
		}
	}
	return categories, nil
}

// CategoryExists reports whether a category with the given ID exists
func (s *DirectoryStore) CategoryExists(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.db.Rebind(`SELECT COUNT(*) FROM category WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("failed to query category: %w", err)
	}
	return count > 0, nil
}

// IsAdmin reports whether any of the user's roles carries the admin capability
func (s *DirectoryStore) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.db.Rebind(`
		SELECT COUNT(*)
		FROM user_role ur
		JOIN role r ON r.id = ur.role_id
		WHERE ur.user_id = ? AND r.is_admin = TRUE
	`), userID)
	if err != nil {
		return false, fmt.Errorf("failed to query admin roles: %w", err)
	}
	return count > 0, nil
}

// EligibleCategoryIDs returns the categories whose role set intersects the user's roles
func (s *DirectoryStore) EligibleCategoryIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, s.db.Rebind(`
		SELECT DISTINCT cr.category_id
		FROM category_role cr
		JOIN user_role ur ON ur.role_id = cr.role_id
		WHERE ur.user_id = ?
		ORDER BY cr.category_id
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible categories: %w", err)
	}
	return ids, nil
}

// EligibleUserCount counts distinct users holding any role mapped to the category
func (s *DirectoryStore) EligibleUserCount(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.db.Rebind(`
		SELECT COUNT(DISTINCT ur.user_id)
		FROM user_role ur
		JOIN category_role cr ON cr.role_id = ur.role_id
		WHERE cr.category_id = ?
	`), categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count eligible users: %w", err)
	}
	return count, nil
}

// EnsureAdmin creates the DefaultAdmin role if needed and assigns it to the user
func (s *DirectoryStore) EnsureAdmin(ctx context.Context, userID string) error {
	var roleID string
	err := s.db.GetContext(ctx, &roleID, s.db.Rebind(`SELECT id FROM role WHERE name = ?`), DefaultAdminRole)
	if errors.Is(err, sql.ErrNoRows) {
		role := &models.Role{ID: auth.NewID(), Name: DefaultAdminRole, IsAdmin: true}
		if err := s.CreateRole(ctx, role); err != nil && !errors.Is(err, ErrDuplicate) {
			return err
		}
		err = s.db.GetContext(ctx, &roleID, s.db.Rebind(`SELECT id FROM role WHERE name = ?`), DefaultAdminRole)
	}
	if err != nil {
		return fmt.Errorf("failed to load admin role: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`UPDATE role SET is_admin = TRUE WHERE id = ?`), roleID)
	if err != nil {
		return fmt.Errorf("failed to mark admin role: %w", err)
	}

	return s.AssignRole(ctx, userID, roleID)
}

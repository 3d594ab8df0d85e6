package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

const categoryColumns = `id, user_id, parent_id, name, type, is_system, is_active, created_at, updated_at`

// CreateCategory persists a new category
func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (id, user_id, parent_id, name, type, is_system, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q().QueryRowContext(ctx, query,
		c.ID, c.UserID, c.ParentID, c.Name, c.Type, c.IsSystem, c.IsActive).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// CategoryByID retrieves a category by id
func (r *Repository) CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	c := &models.Category{}
	err := r.q().QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.ParentID, &c.Name, &c.Type, &c.IsSystem, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category not found with id: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return c, nil
}

// CategoriesForUser lists active system categories plus the user's own
func (r *Repository) CategoriesForUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE is_active = TRUE AND (is_system = TRUE OR user_id = $1)
		ORDER BY is_system DESC, name`
	rows, err := r.q().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c := models.Category{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.ParentID, &c.Name, &c.Type, &c.IsSystem,
			&c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory persists category changes
func (r *Repository) UpdateCategory(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, parent_id = $3, is_active = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q().ExecContext(ctx, query, c.ID, c.Name, c.ParentID, c.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireRow(res, "category %s", c.ID)
}

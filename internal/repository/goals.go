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

const goalColumns = `id, user_id, account_id, currency, name, description,
	target_amount, current_amount, target_date, is_completed, created_at, updated_at`

// CreateGoal persists a new savings goal
func (r *Repository) CreateGoal(ctx context.Context, g *models.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, account_id, currency, name, description,
			target_amount, current_amount, target_date, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q().QueryRowContext(ctx, query,
		g.ID, g.UserID, g.AccountID, g.Currency, g.Name, g.Description,
		g.TargetAmount, g.CurrentAmount, g.TargetDate, g.IsCompleted).
		Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// GoalByID retrieves one of the user's goals
func (r *Repository) GoalByID(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`
	g := &models.Goal{}
	var description sql.NullString
	err := r.q().QueryRowContext(ctx, query, id, userID).Scan(
		&g.ID, &g.UserID, &g.AccountID, &g.Currency, &g.Name, &description,
		&g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.IsCompleted,
		&g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("goal not found with id: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}
	g.Description = description.String
	return g, nil
}

// GoalsByUser lists the user's goals
func (r *Repository) GoalsByUser(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.q().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g := models.Goal{}
		var description sql.NullString
		if err := rows.Scan(&g.ID, &g.UserID, &g.AccountID, &g.Currency, &g.Name, &description,
			&g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.IsCompleted,
			&g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		g.Description = description.String
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoal persists goal changes
func (r *Repository) UpdateGoal(ctx context.Context, g *models.Goal) error {
	query := `
		UPDATE goals
		SET account_id = $2, name = $3, description = $4, target_amount = $5,
		    current_amount = $6, target_date = $7, is_completed = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q().ExecContext(ctx, query,
		g.ID, g.AccountID, g.Name, g.Description, g.TargetAmount,
		g.CurrentAmount, g.TargetDate, g.IsCompleted)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return requireRow(res, "goal %s", g.ID)
}

// DeleteGoal removes a goal permanently
func (r *Repository) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	res, err := r.q().ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return requireRow(res, "goal %s", id)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, full_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q().QueryRowContext(ctx, query, u.ID, u.Email, u.Username, u.PasswordHash, u.FullName, u.IsActive).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserByID retrieves a user by ID
func (r *Repository) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.scanUser(r.q().QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, full_name, is_active, last_login_at, created_at, updated_at
		FROM users WHERE id = $1`, id))
}

// UserByEmail retrieves a user by email
func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanUser(r.q().QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, full_name, is_active, last_login_at, created_at, updated_at
		FROM users WHERE email = $1`, email))
}

func (r *Repository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var fullName sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &fullName, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	u.FullName = fullName.String
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return u, nil
}

// EmailExists reports whether a user with the email exists
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q().QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UsernameExists reports whether a user with the username exists
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.q().QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// UpdateUserLastLogin stamps the user's last successful login
func (r *Repository) UpdateUserLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.q().ExecContext(ctx,
		`UPDATE users SET last_login_at = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// PreferenceByUser retrieves a user's preferences
func (r *Repository) PreferenceByUser(ctx context.Context, userID uuid.UUID) (*models.UserPreference, error) {
	p := &models.UserPreference{}
	err := r.q().QueryRowContext(ctx, `
		SELECT user_id, default_currency, timezone, created_at, updated_at
		FROM user_preferences WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.DefaultCurrency, &p.Timezone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("preferences not found for user %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find preferences: %w", err)
	}
	return p, nil
}

// SavePreference upserts a user's preferences
func (r *Repository) SavePreference(ctx context.Context, p *models.UserPreference) error {
	query := `
		INSERT INTO user_preferences (user_id, default_currency, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE
		SET default_currency = EXCLUDED.default_currency,
		    timezone = EXCLUDED.timezone,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at`
	err := r.q().QueryRowContext(ctx, query, p.UserID, p.DefaultCurrency, p.Timezone).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

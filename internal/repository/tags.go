package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/financewallet/wallet/internal/models"
)

// GetOrCreateTag returns the user's tag with the given name, creating it on
// first use. The no-op DO UPDATE makes the insert return the existing row on
// conflict.
func (r *Repository) GetOrCreateTag(ctx context.Context, userID uuid.UUID, name string) (*models.Tag, error) {
	query := `
		INSERT INTO tags (id, user_id, name, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, user_id, name, created_at`
	tag := &models.Tag{}
	err := r.q().QueryRowContext(ctx, query, uuid.New(), userID, name).
		Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create tag %q: %w", name, err)
	}
	return tag, nil
}

// SetTransactionTags replaces the transaction's tag set.
func (r *Repository) SetTransactionTags(ctx context.Context, transactionID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := r.q().ExecContext(ctx,
		`DELETE FROM transaction_tags WHERE transaction_id = $1`, transactionID); err != nil {
		return fmt.Errorf("failed to clear transaction tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := r.q().ExecContext(ctx,
			`INSERT INTO transaction_tags (transaction_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			transactionID, tagID); err != nil {
			return fmt.Errorf("failed to attach tag %s: %w", tagID, err)
		}
	}
	return nil
}

// TransactionTags lists the tags attached to a transaction.
func (r *Repository) TransactionTags(ctx context.Context, transactionID uuid.UUID) ([]models.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.created_at
		FROM tags t
		JOIN transaction_tags tt ON tt.tag_id = t.id
		WHERE tt.transaction_id = $1
		ORDER BY t.name`
	rows, err := r.q().QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

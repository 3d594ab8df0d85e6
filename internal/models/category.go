package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups transactions. System categories have no owning user and
// are visible to everyone; user categories are private. Parent links are
// expressed as IDs and resolved through explicit lookups.
type Category struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	ParentID  *uuid.UUID      `json:"parent_id,omitempty"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	IsSystem  bool            `json:"is_system"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

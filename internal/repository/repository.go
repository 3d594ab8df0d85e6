// Package repository provides PostgreSQL data access for the service layer.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/financewallet/wallet/internal/service"
)

// Repository implements service.Store against PostgreSQL. A Repository is
// either bound to the connection pool or, inside Transact, to a single
// sql.Tx; the ForUpdate reads only lock rows in the latter case.
type Repository struct {
	db *sql.DB
	tx *sql.Tx
}

var _ service.Store = (*Repository)(nil)

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// querier is the subset of sql.DB and sql.Tx the queries need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Transact runs fn against a repository bound to one database transaction.
// Nested calls reuse the enclosing transaction.
func (r *Repository) Transact(ctx context.Context, fn func(service.Store) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Repository{db: r.db, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

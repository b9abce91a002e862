// Package postgres implements the entity store on PostgreSQL via sqlx.
// Every mutating operation runs in its own transaction; no session state is
// shared between operations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/wishbot/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	db *sqlx.DB
}

// New wraps an open sqlx connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Counts returns aggregate record counts.
func (s *Store) Counts(ctx context.Context) (*storage.Stats, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM bot_user)       AS users,
			(SELECT COUNT(*) FROM wishlist)       AS wishes,
			(SELECT COUNT(*) FROM friendship)     AS friendships,
			(SELECT COUNT(*) FROM friend_request) AS pending_requests`
	var stats storage.Stats
	if err := s.db.GetContext(ctx, &stats, q); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	return &stats, nil
}

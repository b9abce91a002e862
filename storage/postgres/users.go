package postgres

import (
	"context"
	"fmt"

	"github.com/m3rciful/wishbot/storage"
)

// CreateUser registers a new user keyed by telegram id.
func (s *Store) CreateUser(ctx context.Context, telegramID int64, name string) (*storage.User, error) {
	const q = `
		INSERT INTO bot_user (telegram_id, name)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO NOTHING
		RETURNING id, telegram_id, name, created_at`
	var u storage.User
	err := s.db.GetContext(ctx, &u, q, telegramID, name)
	if noRows(err) {
		return nil, storage.ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// UserByTelegramID looks a user up by external chat id.
func (s *Store) UserByTelegramID(ctx context.Context, telegramID int64) (*storage.User, error) {
	const q = `SELECT id, telegram_id, name, created_at FROM bot_user WHERE telegram_id = $1`
	var u storage.User
	err := s.db.GetContext(ctx, &u, q, telegramID)
	if noRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user by telegram id: %w", err)
	}
	return &u, nil
}

// UserByID looks a user up by internal id.
func (s *Store) UserByID(ctx context.Context, id int64) (*storage.User, error) {
	const q = `SELECT id, telegram_id, name, created_at FROM bot_user WHERE id = $1`
	var u storage.User
	err := s.db.GetContext(ctx, &u, q, id)
	if noRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return &u, nil
}

// DeleteUser removes the user; wish items, friendships, and requests cascade
// via foreign keys.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bot_user WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

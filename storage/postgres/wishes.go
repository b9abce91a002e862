package postgres

import (
	"context"
	"fmt"

	"github.com/m3rciful/wishbot/storage"
)

// AddWish creates a wish item for the user.
func (s *Store) AddWish(ctx context.Context, userID int64, fields storage.WishFields) (*storage.WishItem, error) {
	const q = `
		INSERT INTO wishlist (user_id, name, price, description, photo_id, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, name, price, description, photo_id, url, created_at`
	var item storage.WishItem
	err := s.db.GetContext(ctx, &item, q,
		userID, fields.Name, fields.Price, fields.Description, fields.PhotoID, fields.URL)
	if err != nil {
		return nil, fmt.Errorf("add wish: %w", err)
	}
	return &item, nil
}

// WishesByUser returns the user's wish items in insertion order.
func (s *Store) WishesByUser(ctx context.Context, userID int64) ([]storage.WishItem, error) {
	const q = `
		SELECT id, user_id, name, price, description, photo_id, url, created_at
		FROM wishlist
		WHERE user_id = $1
		ORDER BY id`
	var items []storage.WishItem
	if err := s.db.SelectContext(ctx, &items, q, userID); err != nil {
		return nil, fmt.Errorf("wishes by user: %w", err)
	}
	return items, nil
}

// DeleteWish removes the item when it belongs to the user.
func (s *Store) DeleteWish(ctx context.Context, userID, wishID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlist WHERE id = $1 AND user_id = $2`, wishID, userID)
	if err != nil {
		return fmt.Errorf("delete wish: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete wish: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/wishbot/core/logger"
	"github.com/m3rciful/wishbot/storage"
)

// Wishes manages wishlist items: validation on create, listing, deletion.
type Wishes struct {
	store storage.Store
}

// NewWishes constructs the wishes service.
func NewWishes(store storage.Store) *Wishes {
	return &Wishes{store: store}
}

// ParsePrice parses user-entered price text as a non-negative integer.
// Returns ErrValidation on malformed input.
func ParsePrice(text string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || v < 0 {
		return 0, ErrValidation
	}
	return v, nil
}

// Add validates the draft fields and persists the wish item.
func (s *Wishes) Add(ctx context.Context, userID int64, fields storage.WishFields) (*storage.WishItem, error) {
	fields.Name = strings.TrimSpace(fields.Name)
	if fields.Name == "" {
		return nil, ErrValidation
	}
	if fields.Price != nil && *fields.Price < 0 {
		return nil, ErrValidation
	}

	item, err := s.store.AddWish(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "service.wishes", "wish_added",
		slog.Int64("user_id", userID),
		slog.Int64("wish_id", item.ID),
	)
	return item, nil
}

// List returns the user's wish items in insertion order.
func (s *Wishes) List(ctx context.Context, userID int64) ([]storage.WishItem, error) {
	return s.store.WishesByUser(ctx, userID)
}

// Delete removes the item when it belongs to the user.
func (s *Wishes) Delete(ctx context.Context, userID, wishID int64) error {
	if err := s.store.DeleteWish(ctx, userID, wishID); err != nil {
		return err
	}
	logger.Info(ctx, "service.wishes", "wish_deleted",
		slog.Int64("user_id", userID),
		slog.Int64("wish_id", wishID),
	)
	return nil
}

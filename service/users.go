package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/wishbot/core/logger"
	"github.com/m3rciful/wishbot/storage"
)

// Users manages registration and lookup of bot users.
type Users struct {
	store storage.Store
}

// NewUsers constructs the users service.
func NewUsers(store storage.Store) *Users {
	return &Users{store: store}
}

// Register returns the user for the chat id, creating it on first contact.
// Safe to call on every /start.
func (s *Users) Register(ctx context.Context, telegramID int64, name string) (*storage.User, error) {
	u, err := s.store.UserByTelegramID(ctx, telegramID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	u, err = s.store.CreateUser(ctx, telegramID, name)
	if errors.Is(err, storage.ErrUserExists) {
		// Lost the race against a concurrent /start for the same chat.
		return s.store.UserByTelegramID(ctx, telegramID)
	}
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "service.users", "user_registered",
		slog.Int64("user_id", u.ID),
	)
	return u, nil
}

// ByTelegramID looks a registered user up by external chat id.
func (s *Users) ByTelegramID(ctx context.Context, telegramID int64) (*storage.User, error) {
	return s.store.UserByTelegramID(ctx, telegramID)
}

// Stats returns aggregate record counts for the /stats command.
func (s *Users) Stats(ctx context.Context) (*storage.Stats, error) {
	return s.store.Counts(ctx)
}

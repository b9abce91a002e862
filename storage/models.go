package storage

import "time"

// User is a registered bot user.
type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
}

// WishItem is a single wishlist entry owned by a user.
// Optional fields are nil when the user skipped the corresponding step.
type WishItem struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Name        string    `db:"name"`
	Price       *int64    `db:"price"`
	Description *string   `db:"description"`
	PhotoID     *string   `db:"photo_id"`
	URL         *string   `db:"url"`
	CreatedAt   time.Time `db:"created_at"`
}

// WishFields carries the payload for creating a wish item.
type WishFields struct {
	Name        string
	Price       *int64
	Description *string
	PhotoID     *string
	URL         *string
}

// Stats aggregates record counts for diagnostics.
type Stats struct {
	Users           int64 `db:"users"`
	Wishes          int64 `db:"wishes"`
	Friendships     int64 `db:"friendships"`
	PendingRequests int64 `db:"pending_requests"`
}

// PairKey returns the canonical unordered pair: lower user id first.
// Friendship rows are stored exactly once in this orientation, which keeps
// symmetric lookups to a single query.
func PairKey(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

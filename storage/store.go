// Package storage defines the entity store: users, wish items, and the
// friendship/request graph, together with the invariants both
// implementations (postgres, memory) uphold:
//
//   - friendships are symmetric and stored once per unordered pair;
//   - at most one pending request exists per ordered pair, and none while
//     the pair is friends;
//   - conflicting transitions on the same pair (accept vs. cancel) are
//     serialized so exactly one wins and the loser sees ErrNoSuchRequest.
package storage

import "context"

// Store is the persistence boundary for the bot domain.
type Store interface {
	// CreateUser registers a new user. Fails with ErrUserExists when the
	// telegram id is already taken.
	CreateUser(ctx context.Context, telegramID int64, name string) (*User, error)
	// UserByTelegramID returns the user registered under the external chat id.
	UserByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	// UserByID returns the user by internal id.
	UserByID(ctx context.Context, id int64) (*User, error)
	// DeleteUser removes the user and cascades to wish items, friendships,
	// and requests.
	DeleteUser(ctx context.Context, id int64) error

	// AddWish creates a wish item for the user. Field validation is the
	// caller's responsibility; the store only persists.
	AddWish(ctx context.Context, userID int64, fields WishFields) (*WishItem, error)
	// WishesByUser returns the user's wish items in insertion order.
	WishesByUser(ctx context.Context, userID int64) ([]WishItem, error)
	// DeleteWish removes the item. Fails with ErrNotFound when the item does
	// not exist or belongs to another user.
	DeleteWish(ctx context.Context, userID, wishID int64) error

	// CreateFriendRequest records a pending request requester->recipient.
	// Fails with ErrAlreadyFriends, ErrRequestExists, or ErrSelfRelation.
	CreateFriendRequest(ctx context.Context, requesterID, recipientID int64) error
	// DeleteFriendRequest removes the pending request requester->recipient.
	// Fails with ErrNoSuchRequest when it is not pending.
	DeleteFriendRequest(ctx context.Context, requesterID, recipientID int64) error
	// AcceptFriendRequest atomically converts the pending request into a
	// friendship. Fails with ErrNoSuchRequest when the request is gone.
	AcceptFriendRequest(ctx context.Context, requesterID, recipientID int64) error
	// DeleteFriendship dissolves the friendship between the pair.
	// Fails with ErrNotFound when the pair is not friends.
	DeleteFriendship(ctx context.Context, a, b int64) error

	// Friends returns the user's friends in creation order of the pair record.
	Friends(ctx context.Context, userID int64) ([]User, error)
	// IncomingRequests returns users with a pending request towards userID,
	// in request creation order.
	IncomingRequests(ctx context.Context, userID int64) ([]User, error)
	// AreFriends reports whether the pair is friends.
	AreFriends(ctx context.Context, a, b int64) (bool, error)
	// HasPendingRequest reports whether requester->recipient is pending.
	HasPendingRequest(ctx context.Context, requesterID, recipientID int64) (bool, error)

	// Counts returns aggregate record counts.
	Counts(ctx context.Context) (*Stats, error)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/wishbot/storage"
)

// lockPair takes a transaction-scoped advisory lock on the unordered pair,
// serializing request and accept transactions that touch the same two users.
// At READ COMMITTED the existence checks below would otherwise not see each
// other's uncommitted rows. Both ids are folded into one lock key; a
// collision between distinct pairs only over-serializes, never corrupts.
func lockPair(ctx context.Context, tx *sqlx.Tx, a, b int64) error {
	lo, hi := storage.PairKey(a, b)
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock($1)`, lo<<32|hi&0xFFFFFFFF); err != nil {
		return fmt.Errorf("lock pair: %w", err)
	}
	return nil
}

// CreateFriendRequest records a pending request requester->recipient.
// The pair lock orders it against concurrent requests for the same pair
// (either direction) and against a concurrent accept, so the loser observes
// the winner's committed row; the unique pair index on friend_request backs
// the same guarantee at the schema level.
func (s *Store) CreateFriendRequest(ctx context.Context, requesterID, recipientID int64) error {
	if requesterID == recipientID {
		return storage.ErrSelfRelation
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockPair(ctx, tx, requesterID, recipientID); err != nil {
			return err
		}

		lo, hi := storage.PairKey(requesterID, recipientID)
		var friends bool
		err := tx.GetContext(ctx, &friends,
			`SELECT EXISTS (SELECT 1 FROM friendship WHERE user_lo = $1 AND user_hi = $2)`, lo, hi)
		if err != nil {
			return fmt.Errorf("check friendship: %w", err)
		}
		if friends {
			return storage.ErrAlreadyFriends
		}

		var pending bool
		err = tx.GetContext(ctx, &pending, `
			SELECT EXISTS (
				SELECT 1 FROM friend_request
				WHERE (requester_id = $1 AND recipient_id = $2)
				   OR (requester_id = $2 AND recipient_id = $1)
			)`, requesterID, recipientID)
		if err != nil {
			return fmt.Errorf("check pending request: %w", err)
		}
		if pending {
			return storage.ErrRequestExists
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO friend_request (requester_id, recipient_id) VALUES ($1, $2)`,
			requesterID, recipientID)
		if isUniqueViolation(err) {
			return storage.ErrRequestExists
		}
		if err != nil {
			return fmt.Errorf("insert friend request: %w", err)
		}
		return nil
	})
}

// DeleteFriendRequest removes the pending request without creating a friendship.
func (s *Store) DeleteFriendRequest(ctx context.Context, requesterID, recipientID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM friend_request WHERE requester_id = $1 AND recipient_id = $2`,
		requesterID, recipientID)
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	if n == 0 {
		return storage.ErrNoSuchRequest
	}
	return nil
}

// AcceptFriendRequest atomically converts the pending request into a
// friendship. The conditional DELETE decides the winner between concurrent
// accept and cancel: whoever deletes the row proceeds, the other side sees
// ErrNoSuchRequest. The pair lock keeps a racing reverse CreateFriendRequest
// from landing between the friendship insert and commit.
func (s *Store) AcceptFriendRequest(ctx context.Context, requesterID, recipientID int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockPair(ctx, tx, requesterID, recipientID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM friend_request WHERE requester_id = $1 AND recipient_id = $2`,
			requesterID, recipientID)
		if err != nil {
			return fmt.Errorf("consume friend request: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("consume friend request: %w", err)
		}
		if n == 0 {
			return storage.ErrNoSuchRequest
		}

		lo, hi := storage.PairKey(requesterID, recipientID)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO friendship (user_lo, user_hi) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			lo, hi)
		if err != nil {
			return fmt.Errorf("insert friendship: %w", err)
		}
		return nil
	})
}

// DeleteFriendship dissolves the friendship regardless of which side asks.
func (s *Store) DeleteFriendship(ctx context.Context, a, b int64) error {
	lo, hi := storage.PairKey(a, b)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM friendship WHERE user_lo = $1 AND user_hi = $2`, lo, hi)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Friends returns the user's friends in pair creation order. Rows are stored
// once per unordered pair, so a single query covers both orientations.
func (s *Store) Friends(ctx context.Context, userID int64) ([]storage.User, error) {
	const q = `
		SELECT u.id, u.telegram_id, u.name, u.created_at
		FROM friendship f
		JOIN bot_user u
		  ON u.id = CASE WHEN f.user_lo = $1 THEN f.user_hi ELSE f.user_lo END
		WHERE f.user_lo = $1 OR f.user_hi = $1
		ORDER BY f.created_at, u.id`
	var out []storage.User
	if err := s.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, fmt.Errorf("friends: %w", err)
	}
	return out, nil
}

// IncomingRequests returns requesters pending towards userID in creation order.
func (s *Store) IncomingRequests(ctx context.Context, userID int64) ([]storage.User, error) {
	const q = `
		SELECT u.id, u.telegram_id, u.name, u.created_at
		FROM friend_request r
		JOIN bot_user u ON u.id = r.requester_id
		WHERE r.recipient_id = $1
		ORDER BY r.created_at, u.id`
	var out []storage.User
	if err := s.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, fmt.Errorf("incoming requests: %w", err)
	}
	return out, nil
}

// AreFriends reports whether the pair is friends.
func (s *Store) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	lo, hi := storage.PairKey(a, b)
	var friends bool
	err := s.db.GetContext(ctx, &friends,
		`SELECT EXISTS (SELECT 1 FROM friendship WHERE user_lo = $1 AND user_hi = $2)`, lo, hi)
	if err != nil {
		return false, fmt.Errorf("are friends: %w", err)
	}
	return friends, nil
}

// HasPendingRequest reports whether requester->recipient is pending.
func (s *Store) HasPendingRequest(ctx context.Context, requesterID, recipientID int64) (bool, error) {
	var pending bool
	err := s.db.GetContext(ctx, &pending,
		`SELECT EXISTS (SELECT 1 FROM friend_request WHERE requester_id = $1 AND recipient_id = $2)`,
		requesterID, recipientID)
	if err != nil {
		return false, fmt.Errorf("has pending request: %w", err)
	}
	return pending, nil
}

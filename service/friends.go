package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/wishbot/core/logger"
	"github.com/m3rciful/wishbot/storage"
)

// Friends implements the friend-request lifecycle over the entity store.
//
// The pair state machine: strangers, pending in one direction, friends.
// Sending is valid only between strangers; accept and reject are valid only
// for the recipient of the pending request; cancel is valid only for the
// requester and is a no-op once the request was accepted.
type Friends struct {
	store storage.Store
}

// NewFriends constructs the friends service.
func NewFriends(store storage.Store) *Friends {
	return &Friends{store: store}
}

// SendRequest resolves the recipient by external chat id and records a
// pending request. Returns the recipient on success.
// Fails with storage.ErrNotFound when the recipient never started the bot,
// storage.ErrSelfRelation on self-requests, and ErrAlreadyFriendsOrPending
// when the pair is already connected in any way.
func (s *Friends) SendRequest(ctx context.Context, requester *storage.User, recipientTelegramID int64) (*storage.User, error) {
	recipient, err := s.store.UserByTelegramID(ctx, recipientTelegramID)
	if err != nil {
		return nil, err
	}

	err = s.store.CreateFriendRequest(ctx, requester.ID, recipient.ID)
	if errors.Is(err, storage.ErrAlreadyFriends) || errors.Is(err, storage.ErrRequestExists) {
		return nil, ErrAlreadyFriendsOrPending
	}
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "service.friends", "request_sent",
		slog.Int64("requester_id", requester.ID),
		slog.Int64("recipient_id", recipient.ID),
	)
	return recipient, nil
}

// Accept converts the pending request requester->recipient into a friendship.
// Only the recipient may accept; an outbound request yields
// storage.ErrNoSuchRequest.
func (s *Friends) Accept(ctx context.Context, recipientID, requesterID int64) error {
	if err := s.store.AcceptFriendRequest(ctx, requesterID, recipientID); err != nil {
		return err
	}
	logger.Info(ctx, "service.friends", "request_accepted",
		slog.Int64("requester_id", requesterID),
		slog.Int64("recipient_id", recipientID),
	)
	return nil
}

// Reject removes the pending request without creating a friendship.
func (s *Friends) Reject(ctx context.Context, recipientID, requesterID int64) error {
	if err := s.store.DeleteFriendRequest(ctx, requesterID, recipientID); err != nil {
		return err
	}
	logger.Info(ctx, "service.friends", "request_rejected",
		slog.Int64("requester_id", requesterID),
		slog.Int64("recipient_id", recipientID),
	)
	return nil
}

// Cancel withdraws the requester's own pending request. When the recipient
// already accepted, the request row is gone and the pair is friends; that is
// treated as a successful no-op rather than an error.
func (s *Friends) Cancel(ctx context.Context, requesterID, recipientID int64) error {
	err := s.store.DeleteFriendRequest(ctx, requesterID, recipientID)
	if errors.Is(err, storage.ErrNoSuchRequest) {
		friends, ferr := s.store.AreFriends(ctx, requesterID, recipientID)
		if ferr != nil {
			return ferr
		}
		if friends {
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}
	logger.Info(ctx, "service.friends", "request_cancelled",
		slog.Int64("requester_id", requesterID),
		slog.Int64("recipient_id", recipientID),
	)
	return nil
}

// Unfriend dissolves the friendship regardless of which side asks.
func (s *Friends) Unfriend(ctx context.Context, a, b int64) error {
	if err := s.store.DeleteFriendship(ctx, a, b); err != nil {
		return err
	}
	logger.Info(ctx, "service.friends", "unfriended",
		slog.Int64("user_id", a),
		slog.Int64("friend_id", b),
	)
	return nil
}

// List returns the user's friends in pair creation order.
func (s *Friends) List(ctx context.Context, userID int64) ([]storage.User, error) {
	return s.store.Friends(ctx, userID)
}

// Incoming returns users with a pending request towards userID.
func (s *Friends) Incoming(ctx context.Context, userID int64) ([]storage.User, error) {
	return s.store.IncomingRequests(ctx, userID)
}

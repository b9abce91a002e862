package service

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/wishbot/storage"
	"github.com/m3rciful/wishbot/storage/memory"
)

func setupFriends(t *testing.T) (*Friends, *storage.User, *storage.User) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	a, err := store.CreateUser(ctx, 10, "alice")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	b, err := store.CreateUser(ctx, 20, "bob")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	return NewFriends(store), a, b
}

func TestSendRequestTwice(t *testing.T) {
	ctx := context.Background()
	friends, a, b := setupFriends(t)

	if _, err := friends.SendRequest(ctx, a, b.TelegramID); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if _, err := friends.SendRequest(ctx, a, b.TelegramID); !errors.Is(err, ErrAlreadyFriendsOrPending) {
		t.Fatalf("second send err = %v, want ErrAlreadyFriendsOrPending", err)
	}
	incoming, err := friends.Incoming(ctx, b.ID)
	if err != nil {
		t.Fatalf("Incoming: %v", err)
	}
	if len(incoming) != 1 {
		t.Fatalf("incoming = %d, want 1", len(incoming))
	}
}

func TestSendRequestToUnknownUser(t *testing.T) {
	ctx := context.Background()
	friends, a, _ := setupFriends(t)

	if _, err := friends.SendRequest(ctx, a, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("send to unknown err = %v, want ErrNotFound", err)
	}
}

func TestAcceptOnlyByRecipient(t *testing.T) {
	ctx := context.Background()
	friends, a, b := setupFriends(t)

	if _, err := friends.SendRequest(ctx, a, b.TelegramID); err != nil {
		t.Fatalf("send: %v", err)
	}

	// The requester must not be able to accept their own outbound request.
	if err := friends.Accept(ctx, a.ID, b.ID); !errors.Is(err, storage.ErrNoSuchRequest) {
		t.Fatalf("requester accept err = %v, want ErrNoSuchRequest", err)
	}

	if err := friends.Accept(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("recipient accept: %v", err)
	}
	listA, _ := friends.List(ctx, a.ID)
	listB, _ := friends.List(ctx, b.ID)
	if len(listA) != 1 || listA[0].ID != b.ID {
		t.Fatalf("alice friends = %v", listA)
	}
	if len(listB) != 1 || listB[0].ID != a.ID {
		t.Fatalf("bob friends = %v", listB)
	}
}

func TestRejectLeavesStrangers(t *testing.T) {
	ctx := context.Background()
	friends, a, b := setupFriends(t)

	if _, err := friends.SendRequest(ctx, a, b.TelegramID); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := friends.Reject(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if list, _ := friends.List(ctx, b.ID); len(list) != 0 {
		t.Fatalf("reject created friendship: %v", list)
	}
	// The pair is back to strangers, so a new request goes through.
	if _, err := friends.SendRequest(ctx, a, b.TelegramID); err != nil {
		t.Fatalf("resend after reject: %v", err)
	}
}

func TestCancelAfterAcceptIsNoOp(t *testing.T) {
	ctx := context.Background()
	friends, a, b := setupFriends(t)

	if _, err := friends.SendRequest(ctx, a, b.TelegramID); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := friends.Accept(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := friends.Cancel(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("cancel after accept = %v, want nil no-op", err)
	}
	if list, _ := friends.List(ctx, a.ID); len(list) != 1 {
		t.Fatalf("cancel after accept dissolved friendship")
	}
}

func TestCancelPendingRequest(t *testing.T) {
	ctx := context.Background()
	friends, a, b := setupFriends(t)

	if _, err := friends.SendRequest(ctx, a, b.TelegramID); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := friends.Cancel(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if incoming, _ := friends.Incoming(ctx, b.ID); len(incoming) != 0 {
		t.Fatalf("request still pending after cancel")
	}
	// Nothing left to cancel.
	if err := friends.Cancel(ctx, a.ID, b.ID); !errors.Is(err, storage.ErrNoSuchRequest) {
		t.Fatalf("second cancel err = %v, want ErrNoSuchRequest", err)
	}
}

func TestUnfriend(t *testing.T) {
	ctx := context.Background()
	friends, a, b := setupFriends(t)

	if _, err := friends.SendRequest(ctx, a, b.TelegramID); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := friends.Accept(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := friends.Unfriend(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("unfriend: %v", err)
	}
	if list, _ := friends.List(ctx, a.ID); len(list) != 0 {
		t.Fatalf("alice still has friends: %v", list)
	}
	if err := friends.Unfriend(ctx, a.ID, b.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("repeat unfriend err = %v, want ErrNotFound", err)
	}
}

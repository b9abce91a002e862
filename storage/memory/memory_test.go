package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m3rciful/wishbot/storage"
)

func newUser(t *testing.T, s *Store, tgID int64, name string) *storage.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), tgID, name)
	if err != nil {
		t.Fatalf("CreateUser(%d): %v", tgID, err)
	}
	return u
}

func TestCreateUserDuplicate(t *testing.T) {
	s := New()
	newUser(t, s, 100, "alice")

	if _, err := s.CreateUser(context.Background(), 100, "alice again"); !errors.Is(err, storage.ErrUserExists) {
		t.Fatalf("duplicate CreateUser err = %v, want ErrUserExists", err)
	}
}

func TestDuplicateRequestRejected(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")

	if err := s.CreateFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := s.CreateFriendRequest(ctx, a.ID, b.ID); !errors.Is(err, storage.ErrRequestExists) {
		t.Fatalf("repeat request err = %v, want ErrRequestExists", err)
	}
	// Reverse direction is blocked too while a request is pending.
	if err := s.CreateFriendRequest(ctx, b.ID, a.ID); !errors.Is(err, storage.ErrRequestExists) {
		t.Fatalf("reverse request err = %v, want ErrRequestExists", err)
	}

	incoming, err := s.IncomingRequests(ctx, b.ID)
	if err != nil {
		t.Fatalf("IncomingRequests: %v", err)
	}
	if len(incoming) != 1 {
		t.Fatalf("incoming = %d, want 1", len(incoming))
	}
}

func TestSelfRequestRejected(t *testing.T) {
	s := New()
	a := newUser(t, s, 1, "a")

	if err := s.CreateFriendRequest(context.Background(), a.ID, a.ID); !errors.Is(err, storage.ErrSelfRelation) {
		t.Fatalf("self request err = %v, want ErrSelfRelation", err)
	}
}

func TestAcceptCreatesSymmetricFriendship(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")

	if err := s.CreateFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := s.AcceptFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	for _, pair := range [][2]int64{{a.ID, b.ID}, {b.ID, a.ID}} {
		friends, err := s.AreFriends(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("AreFriends: %v", err)
		}
		if !friends {
			t.Fatalf("AreFriends(%d, %d) = false, want true", pair[0], pair[1])
		}
	}

	if pending, _ := s.HasPendingRequest(ctx, a.ID, b.ID); pending {
		t.Fatal("request still pending after accept")
	}
	// No new request may be created between friends.
	if err := s.CreateFriendRequest(ctx, b.ID, a.ID); !errors.Is(err, storage.ErrAlreadyFriends) {
		t.Fatalf("request between friends err = %v, want ErrAlreadyFriends", err)
	}
}

func TestRejectDoesNotCreateFriendship(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")

	if err := s.CreateFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := s.DeleteFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if friends, _ := s.AreFriends(ctx, a.ID, b.ID); friends {
		t.Fatal("reject created a friendship")
	}
	if pending, _ := s.HasPendingRequest(ctx, a.ID, b.ID); pending {
		t.Fatal("request still pending after reject")
	}
}

func TestUnfriendExcludesBothSides(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")

	if err := s.CreateFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := s.AcceptFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	// Dissolving from the non-canonical side must work the same way.
	if err := s.DeleteFriendship(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("unfriend: %v", err)
	}

	for _, id := range []int64{a.ID, b.ID} {
		friends, err := s.Friends(ctx, id)
		if err != nil {
			t.Fatalf("Friends(%d): %v", id, err)
		}
		if len(friends) != 0 {
			t.Fatalf("Friends(%d) = %d entries, want 0", id, len(friends))
		}
	}
}

func TestAcceptRaceHasOneWinner(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")

	if err := s.CreateFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("request: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = s.AcceptFriendRequest(ctx, a.ID, b.ID)
	}()
	go func() {
		defer wg.Done()
		errs[1] = s.DeleteFriendRequest(ctx, a.ID, b.ID)
	}()
	wg.Wait()

	var winners, losers int
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, storage.ErrNoSuchRequest):
			losers++
		default:
			t.Fatalf("unexpected race error: %v", err)
		}
	}
	if winners != 1 || losers != 1 {
		t.Fatalf("winners = %d, losers = %d, want exactly one of each", winners, losers)
	}
}

func TestCrossedRequestsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = s.CreateFriendRequest(ctx, a.ID, b.ID)
	}()
	go func() {
		defer wg.Done()
		errs[1] = s.CreateFriendRequest(ctx, b.ID, a.ID)
	}()
	wg.Wait()

	var winners, losers int
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, storage.ErrRequestExists):
			losers++
		default:
			t.Fatalf("unexpected race error: %v", err)
		}
	}
	if winners != 1 || losers != 1 {
		t.Fatalf("winners = %d, losers = %d, want exactly one of each", winners, losers)
	}

	ab, _ := s.HasPendingRequest(ctx, a.ID, b.ID)
	ba, _ := s.HasPendingRequest(ctx, b.ID, a.ID)
	if ab == ba {
		t.Fatalf("pending a->b = %v, b->a = %v, want exactly one direction", ab, ba)
	}
}

func TestReverseRequestRacingAcceptLeavesNoPending(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")

	if err := s.CreateFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("request: %v", err)
	}

	var wg sync.WaitGroup
	var acceptErr, reverseErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		acceptErr = s.AcceptFriendRequest(ctx, a.ID, b.ID)
	}()
	go func() {
		defer wg.Done()
		reverseErr = s.CreateFriendRequest(ctx, b.ID, a.ID)
	}()
	wg.Wait()

	if acceptErr != nil {
		t.Fatalf("accept: %v", acceptErr)
	}
	// The reverse request loses either way: against the still-pending
	// original or against the freshly created friendship.
	if !errors.Is(reverseErr, storage.ErrRequestExists) && !errors.Is(reverseErr, storage.ErrAlreadyFriends) {
		t.Fatalf("reverse request err = %v, want ErrRequestExists or ErrAlreadyFriends", reverseErr)
	}

	if friends, _ := s.AreFriends(ctx, a.ID, b.ID); !friends {
		t.Fatal("pair not friends after accept")
	}
	for _, dir := range [][2]int64{{a.ID, b.ID}, {b.ID, a.ID}} {
		if pending, _ := s.HasPendingRequest(ctx, dir[0], dir[1]); pending {
			t.Fatalf("request %d->%d still pending alongside friendship", dir[0], dir[1])
		}
	}
}

func TestDeleteWishOwnership(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")

	item, err := s.AddWish(ctx, a.ID, storage.WishFields{Name: "Book"})
	if err != nil {
		t.Fatalf("AddWish: %v", err)
	}

	if err := s.DeleteWish(ctx, b.ID, item.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign DeleteWish err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteWish(ctx, a.ID, item.ID); err != nil {
		t.Fatalf("DeleteWish: %v", err)
	}
	items, _ := s.WishesByUser(ctx, a.ID)
	if len(items) != 0 {
		t.Fatalf("wishlist = %d items, want 0", len(items))
	}
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")
	c := newUser(t, s, 3, "c")

	if _, err := s.AddWish(ctx, a.ID, storage.WishFields{Name: "Book"}); err != nil {
		t.Fatalf("AddWish: %v", err)
	}
	if err := s.CreateFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := s.AcceptFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := s.CreateFriendRequest(ctx, c.ID, a.ID); err != nil {
		t.Fatalf("request: %v", err)
	}

	if err := s.DeleteUser(ctx, a.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := s.UserByID(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("UserByID after delete err = %v, want ErrNotFound", err)
	}
	if friends, _ := s.Friends(ctx, b.ID); len(friends) != 0 {
		t.Fatalf("b still has %d friends", len(friends))
	}
	stats, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if stats.Users != 2 || stats.Wishes != 0 || stats.Friendships != 0 || stats.PendingRequests != 0 {
		t.Fatalf("stats after cascade = %+v", stats)
	}
}

func TestFriendsOrderedByPairCreation(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newUser(t, s, 1, "a")
	b := newUser(t, s, 2, "b")
	c := newUser(t, s, 3, "c")

	for _, other := range []*storage.User{c, b} {
		if err := s.CreateFriendRequest(ctx, other.ID, a.ID); err != nil {
			t.Fatalf("request: %v", err)
		}
		if err := s.AcceptFriendRequest(ctx, other.ID, a.ID); err != nil {
			t.Fatalf("accept: %v", err)
		}
	}

	friends, err := s.Friends(ctx, a.ID)
	if err != nil {
		t.Fatalf("Friends: %v", err)
	}
	if len(friends) != 2 || friends[0].ID != c.ID || friends[1].ID != b.ID {
		t.Fatalf("friends order = %v, want [c b]", friends)
	}
}

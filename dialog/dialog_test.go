package dialog

import (
	"context"
	"strings"
	"testing"

	"github.com/m3rciful/wishbot/core/telegram/state"
	"github.com/m3rciful/wishbot/service"
	"github.com/m3rciful/wishbot/storage"
	"github.com/m3rciful/wishbot/storage/memory"
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(
		service.NewUsers(store),
		service.NewWishes(store),
		service.NewFriends(store),
		state.NewMemoryManager(),
	), store
}

func greet(t *testing.T, e *Engine, tgID int64, name string) {
	t.Helper()
	if _, err := e.Greet(context.Background(), tgID, name); err != nil {
		t.Fatalf("Greet(%d): %v", tgID, err)
	}
}

func say(t *testing.T, e *Engine, tgID int64, text string) []Reply {
	t.Helper()
	replies, err := e.Handle(context.Background(), Event{TelegramID: tgID, Text: text})
	if err != nil {
		t.Fatalf("Handle(%q): %v", text, err)
	}
	if len(replies) == 0 {
		t.Fatalf("Handle(%q): no replies", text)
	}
	return replies
}

func lastText(replies []Reply) string {
	return replies[len(replies)-1].Text
}

func TestUnregisteredUserIsAskedToStart(t *testing.T) {
	e, _ := newTestEngine(t)
	replies := say(t, e, 1, labelWishlist)
	if lastText(replies) != textNeedStart {
		t.Fatalf("reply = %q, want %q", lastText(replies), textNeedStart)
	}
}

func TestAddWishFlowWithPriceRetry(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")

	say(t, e, 1, labelAddWish)
	say(t, e, 1, "Book")

	// Malformed price re-prompts in place.
	replies := say(t, e, 1, "not-a-number")
	if lastText(replies) != textPriceError {
		t.Fatalf("bad price reply = %q, want %q", lastText(replies), textPriceError)
	}
	items, _ := store.WishesByUser(context.Background(), 1)
	if len(items) != 0 {
		t.Fatalf("wish created before confirmation")
	}

	say(t, e, 1, "500")
	say(t, e, 1, labelSkipDesc)
	say(t, e, 1, labelSkipPhoto)
	say(t, e, 1, labelSkipLink)
	replies = say(t, e, 1, labelConfirm)
	if lastText(replies) != textWishAdded {
		t.Fatalf("confirm reply = %q, want %q", lastText(replies), textWishAdded)
	}

	u, err := store.UserByTelegramID(context.Background(), 1)
	if err != nil {
		t.Fatalf("user lookup: %v", err)
	}
	items, _ = store.WishesByUser(context.Background(), u.ID)
	if len(items) != 1 {
		t.Fatalf("wishlist = %d items, want 1", len(items))
	}
	if items[0].Name != "Book" || items[0].Price == nil || *items[0].Price != 500 {
		t.Fatalf("stored wish = %+v", items[0])
	}
	if e.InProgress(1) {
		t.Fatal("dialog still in progress after completion")
	}
}

func TestAddWishDescriptionStepRejectsEmptyText(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")

	say(t, e, 1, labelAddWish)
	say(t, e, 1, "Book")
	say(t, e, 1, labelSkipPrice)

	// A photo event carries no text; the description step must re-prompt
	// instead of treating it as a skip.
	replies, err := e.Handle(context.Background(), Event{TelegramID: 1, PhotoID: "file-early"})
	if err != nil {
		t.Fatalf("photo event: %v", err)
	}
	if lastText(replies) != textAskWishDesc {
		t.Fatalf("empty-text reply = %q, want %q", lastText(replies), textAskWishDesc)
	}

	say(t, e, 1, "First edition")
	say(t, e, 1, labelSkipPhoto)
	say(t, e, 1, labelSkipLink)
	say(t, e, 1, labelConfirm)

	u, _ := store.UserByTelegramID(context.Background(), 1)
	items, _ := store.WishesByUser(context.Background(), u.ID)
	if len(items) != 1 {
		t.Fatalf("wishlist = %d items, want 1", len(items))
	}
	if items[0].Description == nil || *items[0].Description != "First edition" {
		t.Fatalf("stored description = %v, want %q", items[0].Description, "First edition")
	}
}

func TestAddWishPhotoStepAcceptsPhotoEvent(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")

	say(t, e, 1, labelAddWish)
	say(t, e, 1, "Camera")
	say(t, e, 1, labelSkipPrice)
	say(t, e, 1, "A nice camera")

	// Non-photo input at the photo step re-prompts.
	replies := say(t, e, 1, "here you go")
	if lastText(replies) != textPhotoExpected {
		t.Fatalf("non-photo reply = %q, want %q", lastText(replies), textPhotoExpected)
	}

	replies, err := e.Handle(context.Background(), Event{TelegramID: 1, PhotoID: "file-abc"})
	if err != nil {
		t.Fatalf("photo event: %v", err)
	}
	if lastText(replies) != textAskWishLink {
		t.Fatalf("after photo reply = %q, want %q", lastText(replies), textAskWishLink)
	}

	say(t, e, 1, "https://example.com/camera")
	say(t, e, 1, labelConfirm)

	u, _ := store.UserByTelegramID(context.Background(), 1)
	items, _ := store.WishesByUser(context.Background(), u.ID)
	if len(items) != 1 {
		t.Fatalf("wishlist = %d items, want 1", len(items))
	}
	w := items[0]
	if w.PhotoID == nil || *w.PhotoID != "file-abc" {
		t.Fatalf("photo = %v, want file-abc", w.PhotoID)
	}
	if w.URL == nil || *w.URL != "https://example.com/camera" {
		t.Fatalf("url = %v", w.URL)
	}
	if w.Description == nil || *w.Description != "A nice camera" {
		t.Fatalf("description = %v", w.Description)
	}
}

func TestCancelDiscardsDraft(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")

	say(t, e, 1, labelAddWish)
	say(t, e, 1, "Book")
	replies := say(t, e, 1, labelCancel)
	if lastText(replies) != textCancelled {
		t.Fatalf("cancel reply = %q, want %q", lastText(replies), textCancelled)
	}
	if e.InProgress(1) {
		t.Fatal("dialog still in progress after cancel")
	}

	u, _ := store.UserByTelegramID(context.Background(), 1)
	items, _ := store.WishesByUser(context.Background(), u.ID)
	if len(items) != 0 {
		t.Fatalf("cancelled draft was persisted")
	}
	replies = say(t, e, 1, labelViewWishlist)
	if lastText(replies) != textNoWishlist {
		t.Fatalf("view after cancel = %q, want %q", lastText(replies), textNoWishlist)
	}
}

func TestNonConfirmInputCancelsAtConfirmation(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")

	say(t, e, 1, labelAddWish)
	say(t, e, 1, "Book")
	say(t, e, 1, labelSkipPrice)
	say(t, e, 1, labelSkipDesc)
	say(t, e, 1, labelSkipPhoto)
	say(t, e, 1, labelSkipLink)
	replies := say(t, e, 1, "maybe later")
	if lastText(replies) != textCancelled {
		t.Fatalf("non-confirm reply = %q, want %q", lastText(replies), textCancelled)
	}
	u, _ := store.UserByTelegramID(context.Background(), 1)
	if items, _ := store.WishesByUser(context.Background(), u.ID); len(items) != 0 {
		t.Fatalf("unconfirmed draft was persisted")
	}
}

func TestDeleteWishOrdinalOutOfRange(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")
	u, _ := store.UserByTelegramID(context.Background(), 1)
	if _, err := store.AddWish(context.Background(), u.ID, storage.WishFields{Name: "Book"}); err != nil {
		t.Fatalf("AddWish: %v", err)
	}

	replies := say(t, e, 1, labelDeleteWish)
	kb := replies[len(replies)-1].Keyboard
	if kb == nil || kb.Numbered != 1 {
		t.Fatalf("delete prompt keyboard = %+v, want numbered 1", kb)
	}

	for _, bad := range []string{"0", "5", "x"} {
		replies = say(t, e, 1, bad)
		if lastText(replies) != textNoSuchWish {
			t.Fatalf("ordinal %q reply = %q, want %q", bad, lastText(replies), textNoSuchWish)
		}
		if !e.InProgress(1) {
			t.Fatalf("ordinal %q aborted the flow", bad)
		}
	}

	replies = say(t, e, 1, "1")
	if lastText(replies) != textWishDeleted {
		t.Fatalf("delete reply = %q, want %q", lastText(replies), textWishDeleted)
	}
	if items, _ := store.WishesByUser(context.Background(), u.ID); len(items) != 0 {
		t.Fatalf("item survived deletion")
	}
}

func TestSendFriendRequestViaContact(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")
	greet(t, e, 2, "bob")

	replies := say(t, e, 1, labelAddFriend)
	if lastText(replies) != textAskContact {
		t.Fatalf("prompt = %q, want %q", lastText(replies), textAskContact)
	}

	// Plain text instead of a contact re-prompts.
	replies = say(t, e, 1, "bob")
	if lastText(replies) != textContactExpected {
		t.Fatalf("text reply = %q, want %q", lastText(replies), textContactExpected)
	}

	replies, err := e.Handle(context.Background(), Event{TelegramID: 1, ContactID: 2})
	if err != nil {
		t.Fatalf("contact event: %v", err)
	}
	if lastText(replies) != textRequestSent {
		t.Fatalf("contact reply = %q, want %q", lastText(replies), textRequestSent)
	}

	bob, _ := store.UserByTelegramID(context.Background(), 2)
	incoming, _ := store.IncomingRequests(context.Background(), bob.ID)
	if len(incoming) != 1 {
		t.Fatalf("incoming = %d, want 1", len(incoming))
	}
}

func TestRejectRequestDoesNotBefriend(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")
	greet(t, e, 2, "bob")
	ctx := context.Background()
	alice, _ := store.UserByTelegramID(ctx, 1)
	bob, _ := store.UserByTelegramID(ctx, 2)
	if err := store.CreateFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("request: %v", err)
	}

	say(t, e, 2, labelReject)
	replies := say(t, e, 2, "1")
	if lastText(replies) != textRequestRejected {
		t.Fatalf("reject reply = %q, want %q", lastText(replies), textRequestRejected)
	}

	if friends, _ := store.AreFriends(ctx, alice.ID, bob.ID); friends {
		t.Fatal("reject created a friendship")
	}
	if incoming, _ := store.IncomingRequests(ctx, bob.ID); len(incoming) != 0 {
		t.Fatal("request still pending after reject")
	}
}

func TestAcceptRequestViaDialog(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")
	greet(t, e, 2, "bob")
	ctx := context.Background()
	alice, _ := store.UserByTelegramID(ctx, 1)
	bob, _ := store.UserByTelegramID(ctx, 2)
	if err := store.CreateFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("request: %v", err)
	}

	say(t, e, 2, labelAccept)
	replies := say(t, e, 2, "1")
	if lastText(replies) != textRequestAccepted {
		t.Fatalf("accept reply = %q, want %q", lastText(replies), textRequestAccepted)
	}
	if friends, _ := store.AreFriends(ctx, alice.ID, bob.ID); !friends {
		t.Fatal("accept did not create a friendship")
	}
}

func TestFriendWishlistDetailRoundTrip(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")
	greet(t, e, 2, "bob")
	ctx := context.Background()
	alice, _ := store.UserByTelegramID(ctx, 1)
	bob, _ := store.UserByTelegramID(ctx, 2)
	if err := store.CreateFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := store.AcceptFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	price := int64(1500)
	desc := "Signed edition"
	photo := "file-xyz"
	url := "https://example.com/book"
	if _, err := store.AddWish(ctx, bob.ID, storage.WishFields{
		Name: "Book", Price: &price, Description: &desc, PhotoID: &photo, URL: &url,
	}); err != nil {
		t.Fatalf("AddWish: %v", err)
	}

	say(t, e, 1, labelFriendWishlist)
	replies := say(t, e, 1, "1")
	if !strings.Contains(replies[0].Text, "Book") || !strings.Contains(replies[0].Text, "1500") {
		t.Fatalf("wishlist listing = %q", replies[0].Text)
	}

	say(t, e, 1, labelViewItem)
	replies = say(t, e, 1, "1")
	detail := replies[len(replies)-1]
	for _, want := range []string{"Название: Book", "Цена: 1500", "Описание: Signed edition"} {
		if !strings.Contains(detail.Text, want) {
			t.Fatalf("detail %q missing %q", detail.Text, want)
		}
	}
	if detail.PhotoID != photo {
		t.Fatalf("detail photo = %q, want %q", detail.PhotoID, photo)
	}
	if detail.LinkURL != url {
		t.Fatalf("detail link = %q, want %q", detail.LinkURL, url)
	}
	if e.InProgress(1) {
		t.Fatal("dialog still in progress after detail")
	}
}

func TestFriendWithoutWishlist(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")
	greet(t, e, 2, "bob")
	ctx := context.Background()
	alice, _ := store.UserByTelegramID(ctx, 1)
	bob, _ := store.UserByTelegramID(ctx, 2)
	if err := store.CreateFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := store.AcceptFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	say(t, e, 1, labelFriendWishlist)
	replies := say(t, e, 1, "1")
	if lastText(replies) != textFriendNoWishlist {
		t.Fatalf("reply = %q, want %q", lastText(replies), textFriendNoWishlist)
	}
	if e.InProgress(1) {
		t.Fatal("flow not reset after empty wishlist")
	}
}

func TestStaleSnapshotSelectionAborts(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")
	greet(t, e, 2, "bob")
	ctx := context.Background()
	alice, _ := store.UserByTelegramID(ctx, 1)
	bob, _ := store.UserByTelegramID(ctx, 2)
	if err := store.CreateFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("request: %v", err)
	}

	// Snapshot rendered, then the requester cancels before the selection.
	say(t, e, 2, labelAccept)
	if err := store.DeleteFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	replies := say(t, e, 2, "1")
	if lastText(replies) != textNoSuchRequest {
		t.Fatalf("stale accept reply = %q, want %q", lastText(replies), textNoSuchRequest)
	}
	if friends, _ := store.AreFriends(ctx, alice.ID, bob.ID); friends {
		t.Fatal("stale accept created a friendship")
	}
	if e.InProgress(2) {
		t.Fatal("flow not reset after stale selection")
	}
}

func TestDeleteFriendFlow(t *testing.T) {
	e, store := newTestEngine(t)
	greet(t, e, 1, "alice")
	greet(t, e, 2, "bob")
	ctx := context.Background()
	alice, _ := store.UserByTelegramID(ctx, 1)
	bob, _ := store.UserByTelegramID(ctx, 2)
	if err := store.CreateFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := store.AcceptFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// The short button caption opens the same flow as the full label.
	replies := say(t, e, 1, labelDeleteShort)
	if lastText(replies) != textChooseFriendDel {
		t.Fatalf("short label reply = %q, want %q", lastText(replies), textChooseFriendDel)
	}
	replies = say(t, e, 1, "1")
	if !strings.Contains(lastText(replies), "bob") {
		t.Fatalf("delete reply = %q, want mention of bob", lastText(replies))
	}
	if friends, _ := store.AreFriends(ctx, alice.ID, bob.ID); friends {
		t.Fatal("friendship survived deletion")
	}
}

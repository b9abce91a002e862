// Package dialog implements the conversation state machine: per-user
// multi-step flows (add/delete wish, friend requests, wishlist browsing)
// expressed over transport-agnostic events and replies.
//
// The engine owns the concurrency contract: events for the same user are
// processed strictly one at a time, events for distinct users run
// concurrently. Numbered lists are snapshotted into the session when
// rendered, and ordinal input resolves against the snapshot rather than a
// fresh query.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/m3rciful/wishbot/core/logger"
	"github.com/m3rciful/wishbot/core/telegram/state"
	"github.com/m3rciful/wishbot/service"
	"github.com/m3rciful/wishbot/storage"
)

// Event is an inbound user action delivered by the transport.
type Event struct {
	TelegramID int64
	Name       string // sender display name, used on registration
	Text       string
	PhotoID    string // file reference when the update carries a photo
	ContactID  int64  // telegram id of a shared contact, 0 when absent
}

// Keyboard is a semantic keyboard request. The transport materializes it:
// Rows as literal reply buttons, or a 1..Numbered grid plus the Cancel label.
type Keyboard struct {
	Rows     [][]string
	Numbered int
	Cancel   string
}

// Reply is an outbound message. PhotoID attaches the stored photo, LinkURL
// an inline URL button labelled LinkText.
type Reply struct {
	Text     string
	PhotoID  string
	LinkURL  string
	LinkText string
	Keyboard *Keyboard
}

// Engine drives the per-user dialog state machine over the domain services.
type Engine struct {
	users    *service.Users
	wishes   *service.Wishes
	friends  *service.Friends
	sessions state.Manager

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New constructs the engine.
func New(users *service.Users, wishes *service.Wishes, friends *service.Friends, sessions state.Manager) *Engine {
	return &Engine{
		users:    users,
		wishes:   wishes,
		friends:  friends,
		sessions: sessions,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// InProgress reports whether the user is inside a multi-step flow.
func (e *Engine) InProgress(telegramID int64) bool {
	return e.sessions.InProgress(telegramID)
}

// Greet registers the user if needed and returns the greeting. Any active
// dialog is discarded.
func (e *Engine) Greet(ctx context.Context, telegramID int64, name string) ([]Reply, error) {
	mu := e.userLock(telegramID)
	mu.Lock()
	defer mu.Unlock()

	e.sessions.Clear(telegramID)
	u, err := e.users.Register(ctx, telegramID, name)
	if err != nil {
		return []Reply{{Text: textFailure, Keyboard: menuKeyboard()}}, err
	}
	return []Reply{{
		Text:     fmt.Sprintf(textGreet, u.Name),
		Keyboard: menuKeyboard(),
	}}, nil
}

// Handle processes one inbound event and returns the replies to send.
// Recoverable input problems re-prompt without an error; storage failures
// abort the dialog to idle and are returned for summary logging.
func (e *Engine) Handle(ctx context.Context, ev Event) ([]Reply, error) {
	mu := e.userLock(ev.TelegramID)
	mu.Lock()
	defer mu.Unlock()

	user, err := e.users.ByTelegramID(ctx, ev.TelegramID)
	if errors.Is(err, storage.ErrNotFound) {
		return []Reply{{Text: textNeedStart}}, nil
	}
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}

	st := e.sessions.GetState(ev.TelegramID)
	if st == state.StateIdle {
		return e.handleIdle(ctx, user, ev)
	}

	if matches(ev.Text, labelCancel) {
		e.sessions.Clear(ev.TelegramID)
		return []Reply{{Text: textCancelled, Keyboard: menuKeyboard()}}, nil
	}

	logger.Debug(ctx, "dialog", "dialog_event",
		slog.String("state", string(st)),
		slog.Int64("user_id", user.ID),
	)

	switch st {
	case stateAddWishName, stateAddWishPrice, stateAddWishDescription,
		stateAddWishPhoto, stateAddWishLink, stateAddWishConfirm:
		return e.handleAddWish(ctx, user, st, ev)
	case stateDeleteWish:
		return e.handleDeleteWish(ctx, user, ev)
	case stateViewOwnItem, stateViewFriendItem:
		return e.handleViewItem(ctx, user, ev)
	case stateSendContact:
		return e.handleSendContact(ctx, user, ev)
	case stateDeleteFriend:
		return e.handleDeleteFriend(ctx, user, ev)
	case stateAcceptRequest, stateRejectRequest:
		return e.handleDecideRequest(ctx, user, st, ev)
	case stateChooseFriend:
		return e.handleChooseFriend(ctx, user, ev)
	case stateFriendWishlist:
		return e.handleFriendWishlist(ctx, user, ev)
	}

	// Unknown state left behind by an old build. Reset rather than trap the user.
	e.sessions.Clear(ev.TelegramID)
	return []Reply{{Text: textMenu, Keyboard: menuKeyboard()}}, nil
}

// handleIdle dispatches menu selections when no flow is active.
func (e *Engine) handleIdle(ctx context.Context, user *storage.User, ev Event) ([]Reply, error) {
	text := ev.Text
	switch {
	case matches(text, labelMenu), matches(text, labelCancel):
		return []Reply{{Text: textMenu, Keyboard: menuKeyboard()}}, nil
	case matches(text, labelWishlist):
		return []Reply{{Text: textWishlistMenu, Keyboard: wishlistKeyboard()}}, nil
	case matches(text, labelFriends):
		return []Reply{{Text: textFriendsMenu, Keyboard: friendsKeyboard()}}, nil

	case matches(text, labelAddWish), matches(text, labelCreateWishlist):
		return e.startAddWish(ev)
	case matches(text, labelViewWishlist):
		return e.showOwnWishlist(ctx, user)
	case matches(text, labelViewItem):
		return e.startViewOwnItem(ctx, user, ev)
	case matches(text, labelDeleteWish):
		return e.startDeleteWish(ctx, user, ev)

	case matches(text, labelAddFriend):
		return e.startSendContact(ev)
	case matches(text, labelViewFriends):
		return e.showFriends(ctx, user)
	case matches(text, labelDeleteFriend), matches(text, labelDeleteShort):
		return e.startDeleteFriend(ctx, user, ev)
	case matches(text, labelViewRequests):
		return e.showRequests(ctx, user)
	case matches(text, labelAccept):
		return e.startDecideRequest(ctx, user, ev, stateAcceptRequest)
	case matches(text, labelReject):
		return e.startDecideRequest(ctx, user, ev, stateRejectRequest)
	case matches(text, labelFriendWishlist):
		return e.startChooseFriend(ctx, user, ev)
	}

	return []Reply{{Text: textMenu, Keyboard: menuKeyboard()}}, nil
}

// abort drops the dialog and reports a generic failure to the user. The
// underlying error propagates for handler summary logging.
func (e *Engine) abort(ctx context.Context, telegramID int64, err error) ([]Reply, error) {
	e.sessions.Clear(telegramID)
	logger.Error(ctx, "dialog", "dialog_aborted",
		slog.String("error", err.Error()),
	)
	return []Reply{{Text: textFailure, Keyboard: menuKeyboard()}}, err
}

func (e *Engine) userLock(telegramID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	mu, ok := e.locks[telegramID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[telegramID] = mu
	}
	return mu
}

// ordinal parses a 1-based selection against a snapshot of size n.
func ordinal(text string, n int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v, true
}

func (e *Engine) wishSnapshot(telegramID int64) []storage.WishItem {
	v, ok := e.sessions.GetTemp(telegramID, tempWishes)
	if !ok {
		return nil
	}
	items, _ := v.([]storage.WishItem)
	return items
}

func (e *Engine) userSnapshot(telegramID int64) []storage.User {
	v, ok := e.sessions.GetTemp(telegramID, tempUsers)
	if !ok {
		return nil
	}
	users, _ := v.([]storage.User)
	return users
}

func (e *Engine) draft(telegramID int64) *wishDraft {
	v, ok := e.sessions.GetTemp(telegramID, tempDraft)
	if !ok {
		return nil
	}
	d, _ := v.(*wishDraft)
	return d
}

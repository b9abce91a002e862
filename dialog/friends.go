package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/wishbot/core/telegram/state"
	"github.com/m3rciful/wishbot/service"
	"github.com/m3rciful/wishbot/storage"
)

func (e *Engine) startSendContact(ev Event) ([]Reply, error) {
	e.sessions.SetState(ev.TelegramID, stateSendContact)
	return []Reply{{Text: textAskContact, Keyboard: rowKeyboard(labelCancel)}}, nil
}

func (e *Engine) handleSendContact(ctx context.Context, user *storage.User, ev Event) ([]Reply, error) {
	if ev.ContactID == 0 {
		return []Reply{{Text: textContactExpected, Keyboard: rowKeyboard(labelCancel)}}, nil
	}

	_, err := e.friends.SendRequest(ctx, user, ev.ContactID)
	e.sessions.Clear(ev.TelegramID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return []Reply{{Text: textNotRegistered, Keyboard: friendsKeyboard()}}, nil
	case errors.Is(err, storage.ErrSelfRelation):
		return []Reply{{Text: textSelfRequest, Keyboard: friendsKeyboard()}}, nil
	case errors.Is(err, service.ErrAlreadyFriendsOrPending):
		return []Reply{{Text: textRequestConflict, Keyboard: friendsKeyboard()}}, nil
	case err != nil:
		return e.abort(ctx, ev.TelegramID, err)
	}
	return []Reply{{Text: textRequestSent, Keyboard: friendsKeyboard()}}, nil
}

func (e *Engine) showFriends(ctx context.Context, user *storage.User) ([]Reply, error) {
	friends, err := e.friends.List(ctx, user.ID)
	if err != nil {
		return e.abort(ctx, user.TelegramID, err)
	}
	if len(friends) == 0 {
		return []Reply{{Text: textNoFriends, Keyboard: friendsKeyboard()}}, nil
	}
	return []Reply{{
		Text:     listText(headerFriends, userLines(friends)),
		Keyboard: rowKeyboard(labelFriendWishlist, labelDeleteFriend, labelCancel),
	}}, nil
}

func (e *Engine) startDeleteFriend(ctx context.Context, user *storage.User, ev Event) ([]Reply, error) {
	friends, err := e.friends.List(ctx, user.ID)
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}
	if len(friends) == 0 {
		return []Reply{{Text: textNoFriends, Keyboard: friendsKeyboard()}}, nil
	}
	e.sessions.SetTemp(ev.TelegramID, tempUsers, friends)
	e.sessions.SetState(ev.TelegramID, stateDeleteFriend)
	return []Reply{
		{Text: listText(headerFriends, userLines(friends))},
		{Text: textChooseFriendDel, Keyboard: numberedKeyboard(len(friends))},
	}, nil
}

func (e *Engine) handleDeleteFriend(ctx context.Context, user *storage.User, ev Event) ([]Reply, error) {
	friends := e.userSnapshot(ev.TelegramID)
	idx, ok := ordinal(ev.Text, len(friends))
	if !ok {
		return []Reply{{Text: textNoSuchFriend, Keyboard: numberedKeyboard(len(friends))}}, nil
	}
	friend := friends[idx-1]

	err := e.friends.Unfriend(ctx, user.ID, friend.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Friendship dissolved between snapshot and selection.
		e.sessions.Clear(ev.TelegramID)
		return []Reply{{Text: textNoSuchFriend, Keyboard: friendsKeyboard()}}, nil
	}
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}
	e.sessions.Clear(ev.TelegramID)
	return []Reply{{
		Text:     fmt.Sprintf(textFriendDeleted, friend.Name),
		Keyboard: friendsKeyboard(),
	}}, nil
}

func (e *Engine) showRequests(ctx context.Context, user *storage.User) ([]Reply, error) {
	requests, err := e.friends.Incoming(ctx, user.ID)
	if err != nil {
		return e.abort(ctx, user.TelegramID, err)
	}
	if len(requests) == 0 {
		return []Reply{{Text: textNoRequests, Keyboard: friendsKeyboard()}}, nil
	}
	return []Reply{{
		Text:     listText(headerRequests, userLines(requests)),
		Keyboard: rowKeyboard(labelAccept, labelReject, labelCancel),
	}}, nil
}

func (e *Engine) startDecideRequest(ctx context.Context, user *storage.User, ev Event, st state.State) ([]Reply, error) {
	requests, err := e.friends.Incoming(ctx, user.ID)
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}
	if len(requests) == 0 {
		return []Reply{{Text: textNoRequests, Keyboard: friendsKeyboard()}}, nil
	}

	verb := "принять"
	if st == stateRejectRequest {
		verb = "отклонить"
	}
	e.sessions.SetTemp(ev.TelegramID, tempUsers, requests)
	e.sessions.SetState(ev.TelegramID, st)
	return []Reply{
		{Text: listText(headerRequests, userLines(requests))},
		{Text: fmt.Sprintf(textChooseRequest, verb), Keyboard: numberedKeyboard(len(requests))},
	}, nil
}

// handleDecideRequest resolves the ordinal against the requests snapshot and
// accepts or rejects. Reject never creates a friendship.
func (e *Engine) handleDecideRequest(ctx context.Context, user *storage.User, st state.State, ev Event) ([]Reply, error) {
	requests := e.userSnapshot(ev.TelegramID)
	idx, ok := ordinal(ev.Text, len(requests))
	if !ok {
		return []Reply{{Text: textNoSuchRequest, Keyboard: numberedKeyboard(len(requests))}}, nil
	}
	requester := requests[idx-1]

	var err error
	done := textRequestAccepted
	if st == stateRejectRequest {
		err = e.friends.Reject(ctx, user.ID, requester.ID)
		done = textRequestRejected
	} else {
		err = e.friends.Accept(ctx, user.ID, requester.ID)
	}
	if errors.Is(err, storage.ErrNoSuchRequest) {
		// The requester cancelled first; the snapshot is stale.
		e.sessions.Clear(ev.TelegramID)
		return []Reply{{Text: textNoSuchRequest, Keyboard: friendsKeyboard()}}, nil
	}
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}
	e.sessions.Clear(ev.TelegramID)
	return []Reply{{Text: done, Keyboard: friendsKeyboard()}}, nil
}

func (e *Engine) startChooseFriend(ctx context.Context, user *storage.User, ev Event) ([]Reply, error) {
	friends, err := e.friends.List(ctx, user.ID)
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}
	if len(friends) == 0 {
		return []Reply{{Text: textNoFriends, Keyboard: friendsKeyboard()}}, nil
	}
	e.sessions.SetTemp(ev.TelegramID, tempUsers, friends)
	e.sessions.SetState(ev.TelegramID, stateChooseFriend)
	return []Reply{
		{Text: listText(headerFriends, userLines(friends))},
		{Text: textChooseFriendWL, Keyboard: numberedKeyboard(len(friends))},
	}, nil
}

func (e *Engine) handleChooseFriend(ctx context.Context, user *storage.User, ev Event) ([]Reply, error) {
	friends := e.userSnapshot(ev.TelegramID)
	idx, ok := ordinal(ev.Text, len(friends))
	if !ok {
		return []Reply{{Text: textNoSuchFriend, Keyboard: numberedKeyboard(len(friends))}}, nil
	}
	friend := friends[idx-1]

	items, err := e.wishes.List(ctx, friend.ID)
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}
	if len(items) == 0 {
		e.sessions.Clear(ev.TelegramID)
		return []Reply{{Text: textFriendNoWishlist, Keyboard: menuKeyboard()}}, nil
	}

	e.sessions.SetTemp(ev.TelegramID, tempWishes, items)
	e.sessions.ClearTemp(ev.TelegramID, tempUsers)
	e.sessions.SetState(ev.TelegramID, stateFriendWishlist)
	return []Reply{{
		Text:     listText(headerWishlist, wishLines(items)),
		Keyboard: rowKeyboard(labelViewItem, labelMenu),
	}}, nil
}

// handleFriendWishlist waits for the follow-up after showing a friend's
// wishlist: drill into an item or return to the menu.
func (e *Engine) handleFriendWishlist(_ context.Context, _ *storage.User, ev Event) ([]Reply, error) {
	switch {
	case matches(ev.Text, labelViewItem):
		items := e.wishSnapshot(ev.TelegramID)
		e.sessions.SetState(ev.TelegramID, stateViewFriendItem)
		return []Reply{{Text: textChooseWish, Keyboard: numberedKeyboard(len(items))}}, nil
	case matches(ev.Text, labelMenu):
		e.sessions.Clear(ev.TelegramID)
		return []Reply{{Text: textMenu, Keyboard: menuKeyboard()}}, nil
	}
	return []Reply{{
		Text:     textFriendsMenu,
		Keyboard: rowKeyboard(labelViewItem, labelMenu),
	}}, nil
}

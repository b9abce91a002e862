package dialog

import (
	"context"
	"errors"

	"github.com/m3rciful/wishbot/core/telegram/state"
	"github.com/m3rciful/wishbot/service"
	"github.com/m3rciful/wishbot/storage"
)

func (e *Engine) startAddWish(ev Event) ([]Reply, error) {
	e.sessions.SetTemp(ev.TelegramID, tempDraft, &wishDraft{})
	e.sessions.SetState(ev.TelegramID, stateAddWishName)
	return []Reply{{Text: textAskWishName, Keyboard: rowKeyboard(labelCancel)}}, nil
}

// handleAddWish advances the linear add-wish flow: name, price, description,
// photo, link, confirmation. Optional steps accept their skip keyword; bad
// input re-prompts without losing the draft.
func (e *Engine) handleAddWish(ctx context.Context, user *storage.User, st state.State, ev Event) ([]Reply, error) {
	draft := e.draft(ev.TelegramID)
	if draft == nil {
		// Session data vanished under an active state. Restart cleanly.
		e.sessions.Clear(ev.TelegramID)
		return []Reply{{Text: textFailure, Keyboard: menuKeyboard()}}, nil
	}

	switch st {
	case stateAddWishName:
		if ev.Text == "" {
			return []Reply{{Text: textAskWishName, Keyboard: rowKeyboard(labelCancel)}}, nil
		}
		draft.Name = ev.Text
		e.sessions.SetTemp(ev.TelegramID, tempDraft, draft)
		e.sessions.SetState(ev.TelegramID, stateAddWishPrice)
		return []Reply{{Text: textAskWishPrice, Keyboard: rowKeyboard(labelSkipPrice, labelCancel)}}, nil

	case stateAddWishPrice:
		if !matches(ev.Text, labelSkipPrice) {
			price, err := service.ParsePrice(ev.Text)
			if err != nil {
				return []Reply{{Text: textPriceError, Keyboard: rowKeyboard(labelSkipPrice, labelCancel)}}, nil
			}
			draft.Price = &price
		}
		e.sessions.SetTemp(ev.TelegramID, tempDraft, draft)
		e.sessions.SetState(ev.TelegramID, stateAddWishDescription)
		return []Reply{{Text: textAskWishDesc, Keyboard: rowKeyboard(labelSkipDesc, labelCancel)}}, nil

	case stateAddWishDescription:
		if !matches(ev.Text, labelSkipDesc) {
			if ev.Text == "" {
				return []Reply{{Text: textAskWishDesc, Keyboard: rowKeyboard(labelSkipDesc, labelCancel)}}, nil
			}
			desc := ev.Text
			draft.Description = &desc
		}
		e.sessions.SetTemp(ev.TelegramID, tempDraft, draft)
		e.sessions.SetState(ev.TelegramID, stateAddWishPhoto)
		return []Reply{{Text: textAskWishPhoto, Keyboard: rowKeyboard(labelSkipPhoto, labelCancel)}}, nil

	case stateAddWishPhoto:
		if !matches(ev.Text, labelSkipPhoto) {
			if ev.PhotoID == "" {
				return []Reply{{Text: textPhotoExpected, Keyboard: rowKeyboard(labelSkipPhoto, labelCancel)}}, nil
			}
			photo := ev.PhotoID
			draft.PhotoID = &photo
		}
		e.sessions.SetTemp(ev.TelegramID, tempDraft, draft)
		e.sessions.SetState(ev.TelegramID, stateAddWishLink)
		return []Reply{{Text: textAskWishLink, Keyboard: rowKeyboard(labelSkipLink, labelCancel)}}, nil

	case stateAddWishLink:
		if !matches(ev.Text, labelSkipLink) {
			if ev.Text == "" {
				return []Reply{{Text: textAskWishLink, Keyboard: rowKeyboard(labelSkipLink, labelCancel)}}, nil
			}
			url := ev.Text
			draft.URL = &url
		}
		e.sessions.SetTemp(ev.TelegramID, tempDraft, draft)
		e.sessions.SetState(ev.TelegramID, stateAddWishConfirm)
		return []Reply{{Text: textConfirmAdd, Keyboard: rowKeyboard(labelConfirm, labelCancel)}}, nil

	case stateAddWishConfirm:
		if !matches(ev.Text, labelConfirm) {
			// Anything but an explicit confirmation discards the draft.
			e.sessions.Clear(ev.TelegramID)
			return []Reply{{Text: textCancelled, Keyboard: menuKeyboard()}}, nil
		}
		_, err := e.wishes.Add(ctx, user.ID, storage.WishFields{
			Name:        draft.Name,
			Price:       draft.Price,
			Description: draft.Description,
			PhotoID:     draft.PhotoID,
			URL:         draft.URL,
		})
		if err != nil {
			return e.abort(ctx, ev.TelegramID, err)
		}
		e.sessions.Clear(ev.TelegramID)
		return []Reply{{Text: textWishAdded, Keyboard: wishlistKeyboard()}}, nil
	}

	return []Reply{{Text: textFailure, Keyboard: menuKeyboard()}}, nil
}

func (e *Engine) showOwnWishlist(ctx context.Context, user *storage.User) ([]Reply, error) {
	items, err := e.wishes.List(ctx, user.ID)
	if err != nil {
		return e.abort(ctx, user.TelegramID, err)
	}
	if len(items) == 0 {
		return []Reply{{
			Text:     textNoWishlist,
			Keyboard: rowKeyboard(labelCreateWishlist, labelCancel),
		}}, nil
	}
	return []Reply{{
		Text:     listText(headerWishlist, wishLines(items)),
		Keyboard: rowKeyboard(labelViewItem, labelMenu),
	}}, nil
}

func (e *Engine) startViewOwnItem(ctx context.Context, user *storage.User, ev Event) ([]Reply, error) {
	items, err := e.wishes.List(ctx, user.ID)
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}
	if len(items) == 0 {
		return []Reply{{
			Text:     textNoWishlist,
			Keyboard: rowKeyboard(labelCreateWishlist, labelCancel),
		}}, nil
	}
	e.sessions.SetTemp(ev.TelegramID, tempWishes, items)
	e.sessions.SetState(ev.TelegramID, stateViewOwnItem)
	return []Reply{
		{Text: listText(headerWishlist, wishLines(items))},
		{Text: textChooseWish, Keyboard: numberedKeyboard(len(items))},
	}, nil
}

func (e *Engine) startDeleteWish(ctx context.Context, user *storage.User, ev Event) ([]Reply, error) {
	items, err := e.wishes.List(ctx, user.ID)
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}
	if len(items) == 0 {
		return []Reply{{
			Text:     textNoWishlist,
			Keyboard: rowKeyboard(labelCreateWishlist, labelCancel),
		}}, nil
	}
	e.sessions.SetTemp(ev.TelegramID, tempWishes, items)
	e.sessions.SetState(ev.TelegramID, stateDeleteWish)
	return []Reply{
		{Text: listText(headerWishlist, wishLines(items))},
		{Text: textChooseWishDel, Keyboard: numberedKeyboard(len(items))},
	}, nil
}

func (e *Engine) handleDeleteWish(ctx context.Context, user *storage.User, ev Event) ([]Reply, error) {
	items := e.wishSnapshot(ev.TelegramID)
	idx, ok := ordinal(ev.Text, len(items))
	if !ok {
		return []Reply{{Text: textNoSuchWish, Keyboard: numberedKeyboard(len(items))}}, nil
	}

	err := e.wishes.Delete(ctx, user.ID, items[idx-1].ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Item vanished between snapshot and selection.
		e.sessions.Clear(ev.TelegramID)
		return []Reply{{Text: textNoSuchWish, Keyboard: wishlistKeyboard()}}, nil
	}
	if err != nil {
		return e.abort(ctx, ev.TelegramID, err)
	}
	e.sessions.Clear(ev.TelegramID)
	return []Reply{{Text: textWishDeleted, Keyboard: wishlistKeyboard()}}, nil
}

// handleViewItem resolves an ordinal against the wish snapshot and renders
// the item card. Shared by the own-wishlist and friend-wishlist flows.
func (e *Engine) handleViewItem(_ context.Context, _ *storage.User, ev Event) ([]Reply, error) {
	items := e.wishSnapshot(ev.TelegramID)
	idx, ok := ordinal(ev.Text, len(items))
	if !ok {
		return []Reply{{Text: textNoSuchWish, Keyboard: numberedKeyboard(len(items))}}, nil
	}
	e.sessions.Clear(ev.TelegramID)
	return []Reply{wishDetail(items[idx-1])}, nil
}

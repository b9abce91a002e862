// Package bot glues the dialog engine to Telegram: it converts telebot
// updates into dialog events, renders semantic keyboards into reply markup,
// and registers the command surface.
package bot

import (
	"strings"

	"github.com/m3rciful/wishbot/core/telegram/helpers"
	"github.com/m3rciful/wishbot/core/telegram/keyboard"
	"github.com/m3rciful/wishbot/dialog"
	"github.com/m3rciful/wishbot/service"

	tele "gopkg.in/telebot.v4"
)

// Bot adapts the dialog engine to the telebot runtime. It satisfies
// router.Conversation, so in-progress dialogs capture text, photo, and
// contact updates.
type Bot struct {
	engine *dialog.Engine
	users  *service.Users
}

// New constructs the adapter.
func New(engine *dialog.Engine, users *service.Users) *Bot {
	return &Bot{engine: engine, users: users}
}

// InProgress reports whether the sender has an active dialog.
func (b *Bot) InProgress(userID int64) bool {
	return b.engine.InProgress(userID)
}

// Handle feeds the update into the dialog engine and sends its replies.
func (b *Bot) Handle(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	replies, err := b.engine.Handle(ctx, eventFrom(c))
	if sendErr := b.send(c, replies); sendErr != nil {
		return sendErr
	}
	return err
}

func eventFrom(c tele.Context) dialog.Event {
	ev := dialog.Event{
		TelegramID: c.Sender().ID,
		Name:       senderName(c.Sender()),
		Text:       c.Text(),
	}
	if msg := c.Message(); msg != nil {
		if msg.Photo != nil {
			ev.PhotoID = msg.Photo.FileID
			if ev.Text == "" {
				ev.Text = msg.Caption
			}
		}
		if msg.Contact != nil {
			ev.ContactID = msg.Contact.UserID
		}
	}
	return ev
}

func senderName(u *tele.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}

func (b *Bot) send(c tele.Context, replies []dialog.Reply) error {
	for _, r := range replies {
		markup := renderMarkup(r)
		if r.PhotoID != "" {
			if err := helpers.SendPhoto(c, r.PhotoID, r.Text, markup); err != nil {
				return err
			}
			continue
		}
		if markup != nil {
			if err := helpers.SendMarkup(c, r.Text, markup); err != nil {
				return err
			}
			continue
		}
		if err := helpers.SendText(c, r.Text); err != nil {
			return err
		}
	}
	return nil
}

// renderMarkup materializes the semantic keyboard request. An inline link
// button takes precedence since Telegram allows one markup per message.
func renderMarkup(r dialog.Reply) *tele.ReplyMarkup {
	if r.LinkURL != "" {
		return keyboard.LinkMarkup(r.LinkText, r.LinkURL)
	}
	kb := r.Keyboard
	if kb == nil {
		return nil
	}
	if kb.Numbered > 0 {
		return keyboard.NumberedGrid(kb.Numbered, 4, kb.Cancel)
	}
	return keyboard.ReplyButtons(kb.Rows...)
}

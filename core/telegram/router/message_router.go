package router

import (
	"time"

	tg "github.com/m3rciful/wishbot/core/telegram"
	"github.com/m3rciful/wishbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation defines the minimal interface for a conversation engine that
// consumes updates while a multi-step dialog is in progress.
type Conversation interface {
	InProgress(userID int64) bool
	Handle(c tele.Context) error
}

// MessageOptions controls fallback behaviour for text/photo/contact updates.
type MessageOptions struct {
	UnknownText    tele.HandlerFunc
	UnexpectedKind tele.HandlerFunc
}

// MessageRoutes builds handlers routing text, photo, and contact updates.
// Text goes to the active dialog first, then to registered commands, then to
// the registry fallback. Photos and contacts only make sense inside a dialog.
func MessageRoutes(conv Conversation, reg *tg.Registry, opts MessageOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if conv != nil && conv.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "dialog", start, "", "", func() error {
				return conv.Handle(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	mediaHandler := func(name string) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			if conv != nil && conv.InProgress(c.Sender().ID) {
				return handleWithSummary(c, name, start, "", "", func() error {
					return conv.Handle(c)
				})
			}
			if opts.UnexpectedKind != nil {
				return handleWithSummary(c, "unexpected_"+name, start, "", "", func() error {
					return opts.UnexpectedKind(c)
				})
			}
			logHandlerSummary(c, "unexpected_"+name, start, "skip", "ok", nil)
			return nil
		}
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(textHandler)),
		},
		{
			Endpoint: tele.OnPhoto,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(mediaHandler("dialog_photo"))),
		},
		{
			Endpoint: tele.OnContact,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(mediaHandler("dialog_contact"))),
		},
	}
}

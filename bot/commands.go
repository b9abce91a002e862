package bot

import (
	"fmt"
	"strings"

	tg "github.com/m3rciful/wishbot/core/telegram"
	"github.com/m3rciful/wishbot/core/telegram/commands"
	"github.com/m3rciful/wishbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// NewRegistry builds the command surface and routes free-form text into the
// dialog engine.
func NewRegistry(b *Bot) *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Запустить бота",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     helpHandler(reg),
		Description: "Список команд",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     b.handleStats,
		Description: "Статистика бота",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.SetTextFallback(b.Handle)
	return reg
}

// handleStart registers the sender and greets them. Any active dialog is
// discarded, so /start doubles as an escape hatch.
func (b *Bot) handleStart(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	replies, err := b.engine.Greet(ctx, c.Sender().ID, senderName(c.Sender()))
	if sendErr := b.send(c, replies); sendErr != nil {
		return sendErr
	}
	return err
}

func helpHandler(reg *tg.Registry) tele.HandlerFunc {
	return func(c tele.Context) error {
		var sb strings.Builder
		sb.WriteString("Команды:\n")
		for _, cmd := range reg.ListCommands(true) {
			fmt.Fprintf(&sb, "%s — %s\n", cmd.Text, cmd.Description)
		}
		return helpers.SendText(c, sb.String())
	}
}

func (b *Bot) handleStats(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	stats, err := b.users.Stats(ctx)
	if err != nil {
		return err
	}
	text := fmt.Sprintf(
		"Пользователи: %d\nЖелания: %d\nДружбы: %d\nЗаявки в ожидании: %d",
		stats.Users, stats.Wishes, stats.Friendships, stats.PendingRequests,
	)
	return helpers.SendText(c, text)
}

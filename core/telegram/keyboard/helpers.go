package keyboard

import (
	"strconv"

	tele "gopkg.in/telebot.v4"
)

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// ReplyRow builds a reply keyboard with all labels on a single row.
func ReplyRow(labels ...string) *tele.ReplyMarkup {
	return ReplyButtons(labels)
}

// ReplyColumn builds a reply keyboard with one label per row.
func ReplyColumn(labels ...string) *tele.ReplyMarkup {
	rows := make([][]string, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, []string{label})
	}
	return ReplyButtons(rows...)
}

// NumberedGrid builds a reply keyboard with buttons "1".."n" chunked into rows
// of perRow buttons, followed by a trailing cancel button on its own row.
func NumberedGrid(n, perRow int, cancelLabel string) *tele.ReplyMarkup {
	if perRow < 1 {
		perRow = 4
	}
	var rows [][]string
	var row []string
	for i := 1; i <= n; i++ {
		row = append(row, strconv.Itoa(i))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if cancelLabel != "" {
		rows = append(rows, []string{cancelLabel})
	}
	return ReplyButtons(rows...)
}

// LinkMarkup builds an inline keyboard with a single URL button.
func LinkMarkup(text, url string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	btn := markup.URL(text, url)
	markup.InlineKeyboard = [][]tele.InlineButton{{*btn.Inline()}}
	return markup
}

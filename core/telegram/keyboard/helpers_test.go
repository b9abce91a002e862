package keyboard

import "testing"

func TestNumberedGridChunksRows(t *testing.T) {
	markup := NumberedGrid(6, 4, "Отменить")

	rows := markup.ReplyKeyboard
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if len(rows[0]) != 4 || len(rows[1]) != 2 {
		t.Fatalf("row sizes = %d/%d, want 4/2", len(rows[0]), len(rows[1]))
	}
	if rows[0][0].Text != "1" || rows[1][1].Text != "6" {
		t.Fatalf("button labels = %q..%q", rows[0][0].Text, rows[1][1].Text)
	}
	if len(rows[2]) != 1 || rows[2][0].Text != "Отменить" {
		t.Fatalf("cancel row = %+v", rows[2])
	}
}

func TestNumberedGridWithoutCancel(t *testing.T) {
	markup := NumberedGrid(2, 4, "")
	rows := markup.ReplyKeyboard
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Fatalf("rows = %+v, want single row of 2", rows)
	}
}

func TestReplyColumn(t *testing.T) {
	markup := ReplyColumn("Вишлист", "Друзья", "Меню")
	rows := markup.ReplyKeyboard
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, want := range []string{"Вишлист", "Друзья", "Меню"} {
		if len(rows[i]) != 1 || rows[i][0].Text != want {
			t.Fatalf("row %d = %+v, want %q", i, rows[i], want)
		}
	}
	if !markup.ResizeKeyboard {
		t.Fatal("ResizeKeyboard not set")
	}
}

func TestLinkMarkup(t *testing.T) {
	markup := LinkMarkup("Ссылка", "https://example.com")
	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 1 {
		t.Fatalf("inline keyboard = %+v", markup.InlineKeyboard)
	}
	btn := markup.InlineKeyboard[0][0]
	if btn.Text != "Ссылка" || btn.URL != "https://example.com" {
		t.Fatalf("button = %+v", btn)
	}
}

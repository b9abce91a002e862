package service

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/wishbot/storage"
	"github.com/m3rciful/wishbot/storage/memory"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"500", 500, false},
		{" 42 ", 42, false},
		{"0", 0, false},
		{"not-a-number", 0, true},
		{"12.50", 0, true},
		{"-5", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ParsePrice(%q) err = %v, want ErrValidation", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParsePrice(%q) = (%d, %v), want (%d, nil)", tc.in, got, err, tc.want)
		}
	}
}

func TestAddValidatesName(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	u, err := store.CreateUser(ctx, 1, "alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	wishes := NewWishes(store)

	if _, err := wishes.Add(ctx, u.ID, storage.WishFields{Name: "   "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank name err = %v, want ErrValidation", err)
	}
	items, _ := wishes.List(ctx, u.ID)
	if len(items) != 0 {
		t.Fatalf("rejected wish was persisted")
	}

	price := int64(500)
	item, err := wishes.Add(ctx, u.ID, storage.WishFields{Name: " Book ", Price: &price})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Name != "Book" {
		t.Fatalf("name = %q, want trimmed %q", item.Name, "Book")
	}
	if item.Price == nil || *item.Price != 500 {
		t.Fatalf("price = %v, want 500", item.Price)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	u, err := store.CreateUser(ctx, 1, "alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	wishes := NewWishes(store)

	for _, name := range []string{"Book", "Lamp", "Bike"} {
		if _, err := wishes.Add(ctx, u.ID, storage.WishFields{Name: name}); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}
	items, err := wishes.List(ctx, u.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 || items[0].Name != "Book" || items[2].Name != "Bike" {
		t.Fatalf("list order = %v", items)
	}

	if err := wishes.Delete(ctx, u.ID, items[1].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	items, _ = wishes.List(ctx, u.ID)
	if len(items) != 2 || items[1].Name != "Bike" {
		t.Fatalf("list after delete = %v", items)
	}
}

package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"enriquecer/internal/core"
	"enriquecer/internal/storage"
)

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, found, err := s.Get(ctx, "k"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}

	in := []byte("abc")
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'z'

	got, found, err := s.Get(ctx, "k")
	if err != nil || !found || string(got) != "abc" {
		t.Fatalf("unexpected get: %q found=%v err=%v", got, found, err)
	}
	got[1] = 'z'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value was mutated through returned slice: %q", again)
	}
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Close()
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on get, got %v", err)
	}
	if err := s.Set(ctx, "k", nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on set, got %v", err)
	}
}

func TestNewFromFilesWithoutSeeds(t *testing.T) {
	ctx := context.Background()
	s := NewFromFiles(t.TempDir())

	cats, err := storage.NewCategoryStore(s).List(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != len(core.DefaultCategories()) {
		t.Fatalf("expected default categories, got %+v", cats)
	}
	txs, err := storage.NewTransactionStore(s).List(ctx)
	if err != nil || len(txs) != 0 {
		t.Fatalf("expected empty history, got %v err=%v", txs, err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_categories.txt", "# header\nMercado\nincome:Bônus\nMercado\n\nweird:Casa\n")
	mustWrite("transactions.json", `[{"id":"a","type":"income","date":"2024-01-05","description":"x","amount":10}]`)

	s := NewFromFiles(dir)

	cats, err := storage.NewCategoryStore(s).List(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 seeded categories, got %+v", cats)
	}
	if cats[0].Name != "Mercado" || cats[0].Kind != core.KindExpense {
		t.Fatalf("unexpected first category: %+v", cats[0])
	}
	if cats[1].Name != "Bônus" || cats[1].Kind != core.KindIncome {
		t.Fatalf("unexpected second category: %+v", cats[1])
	}
	if cats[2].Name != "weird:Casa" || cats[2].Kind != core.KindExpense {
		t.Fatalf("unknown prefix should be kept as an expense name, got %+v", cats[2])
	}

	txs, err := storage.NewTransactionStore(s).List(ctx)
	if err != nil || len(txs) != 1 || txs[0].ID != "a" {
		t.Fatalf("unexpected seeded history: %+v err=%v", txs, err)
	}
}

func TestNewFromFilesMalformedTransactions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFromFiles(dir)
	if _, found, _ := s.Get(context.Background(), storage.KeyTransactions); found {
		t.Fatalf("malformed seed should not be stored")
	}
}

package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestKindIsValid(t *testing.T) {
	cases := []struct {
		k  Kind
		ok bool
	}{
		{KindIncome, true},
		{KindExpense, true},
		{Kind(""), false},
		{Kind("transfer"), false},
	}
	for i, tc := range cases {
		if got := tc.k.IsValid(); got != tc.ok {
			t.Fatalf("case %d: IsValid(%q)=%v, want %v", i, tc.k, got, tc.ok)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := NewExpense("2025-01-01", "ok", 1.5, "Essenciais")
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	income := NewIncome("2025-01-01", "salary", 1000, "")
	if err := income.Validate(); err != nil {
		t.Fatalf("income without category should be valid, got %v", err)
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Kind: "x", Date: "2025-01-01", Description: "a", Amount: 1, Category: "c"}, ErrInvalidKind},
		{Transaction{Kind: KindExpense, Date: "2025-13-01", Description: "a", Amount: 1, Category: "c"}, ErrInvalidDate},
		{Transaction{Kind: KindExpense, Date: "", Description: "a", Amount: 1, Category: "c"}, ErrInvalidDate},
		{Transaction{Kind: KindExpense, Date: "2025-01-01", Description: "  ", Amount: 1, Category: "c"}, ErrEmptyDescription},
		{Transaction{Kind: KindExpense, Date: "2025-01-01", Description: "a", Amount: 0, Category: "c"}, ErrInvalidAmount},
		{Transaction{Kind: KindExpense, Date: "2025-01-01", Description: "a", Amount: -3, Category: "c"}, ErrInvalidAmount},
		{Transaction{Kind: KindExpense, Date: "2025-01-01", Description: "a", Amount: math.Inf(1), Category: "c"}, ErrInvalidAmount},
		{Transaction{Kind: KindExpense, Date: "2025-01-01", Description: "a", Amount: math.NaN(), Category: "c"}, ErrInvalidAmount},
		{Transaction{Kind: KindExpense, Date: "2025-01-01", Description: "a", Amount: 1}, ErrMissingCategory},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestNewTransactionGeneratesIDs(t *testing.T) {
	a := NewIncome("2025-01-01", " a ", 1, "")
	b := NewIncome("2025-01-01", "b", 1, "")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.Description != "a" {
		t.Fatalf("description should be trimmed, got %q", a.Description)
	}
}

func TestCategoryName(t *testing.T) {
	if got := NewIncome("2025-01-01", "a", 1, "").CategoryName(); got != UncategorizedName {
		t.Fatalf("expected %q, got %q", UncategorizedName, got)
	}
	if got := NewExpense("2025-01-01", "a", 1, "Food").CategoryName(); got != "Food" {
		t.Fatalf("expected Food, got %q", got)
	}
}

func TestValidateDraft(t *testing.T) {
	tx, err := ValidateDraft(Draft{Kind: "expense", Date: "2024-01-10", Description: "  Mercado ", Amount: "12,50", Category: "Essenciais"})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.Kind != KindExpense || tx.Amount != 12.5 || tx.Description != "Mercado" || tx.Category != "Essenciais" || tx.ID == "" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	tx, err = ValidateDraft(Draft{Kind: "income", Description: "bonus", Amount: "10"})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.Date != Today() {
		t.Fatalf("empty date should default to today, got %q", tx.Date)
	}

	bads := []struct {
		d    Draft
		want error
	}{
		{Draft{Kind: "", Description: "a", Amount: "1", Category: "c"}, ErrInvalidKind},
		{Draft{Kind: "expense", Description: "", Amount: "1", Category: "c"}, ErrEmptyDescription},
		{Draft{Kind: "expense", Description: "a", Amount: "abc", Category: "c"}, ErrInvalidAmount},
		{Draft{Kind: "expense", Description: "a", Amount: "0", Category: "c"}, ErrInvalidAmount},
		{Draft{Kind: "expense", Description: "a", Amount: "-2", Category: "c"}, ErrInvalidAmount},
		{Draft{Kind: "income", Description: "a", Amount: "1e400"}, ErrInvalidAmount},
		{Draft{Kind: "expense", Description: "a", Amount: "2", Category: ""}, ErrMissingCategory},
		{Draft{Kind: "expense", Date: "10/01/2024", Description: "a", Amount: "2", Category: "c"}, ErrInvalidDate},
	}
	for i, tc := range bads {
		if _, err := ValidateDraft(tc.d); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 5 {
		t.Fatalf("expected 5 default categories, got %d", len(cats))
	}
	if cats[0].ID != "essenciais" || cats[0].Kind != KindExpense {
		t.Fatalf("unexpected first category: %+v", cats[0])
	}
	for _, c := range cats {
		if err := c.Validate(); err != nil {
			t.Fatalf("default category %+v invalid: %v", c, err)
		}
	}
}

func TestIsValidation(t *testing.T) {
	long := strings.Repeat("x", 201)
	_, err := ValidateDraft(Draft{Kind: "income", Description: long, Amount: "1"})
	if !errors.Is(err, ErrDescriptionLong) || !IsValidation(err) {
		t.Fatalf("expected description length validation error, got %v", err)
	}
	if !IsValidation(fmt.Errorf("create: %w", ErrInvalidAmount)) {
		t.Fatal("wrapped sentinel should count as validation")
	}
	if IsValidation(errors.New("disk full")) || IsValidation(nil) {
		t.Fatal("unrelated errors are not validation errors")
	}
}

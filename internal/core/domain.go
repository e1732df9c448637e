package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// DateLayout is the ISO calendar date format used for every stored date.
const DateLayout = "2006-01-02"

// UncategorizedName is the grouping label for records without a category.
const UncategorizedName = "Outros"

type (
	Kind string

	// Transaction is a single dated income or expense record. Amount is always
	// positive; the sign is carried by Kind. Category is a name snapshot taken
	// at creation time, not a reference to a Category.
	Transaction struct {
		ID          string  `json:"id"`
		Kind        Kind    `json:"type"`
		Date        string  `json:"date"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category,omitempty"`
	}

	Category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Kind Kind   `json:"kind"`
	}

	// Draft holds raw, unvalidated form input for a new transaction.
	Draft struct {
		Kind        string
		Date        string
		Description string
		Amount      string
		Category    string
	}
)

var (
	ErrInvalidKind      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrMissingCategory  = errors.New("missing category for expense")
	ErrEmptyCategory    = errors.New("empty category name")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
)

// IsValidation reports whether err comes from validating user input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidKind, ErrInvalidDate, ErrInvalidAmount, ErrEmptyDescription,
		ErrMissingCategory, ErrEmptyCategory, ErrDescriptionLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (k Kind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// NewIncome builds an income record with a fresh id. Category may be empty.
func NewIncome(date, description string, amount float64, category string) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Kind:        KindIncome,
		Date:        date,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Category:    strings.TrimSpace(category),
	}
}

// NewExpense builds an expense record with a fresh id.
func NewExpense(date, description string, amount float64, category string) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Kind:        KindExpense,
		Date:        date,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Category:    strings.TrimSpace(category),
	}
}

func (t Transaction) IsIncome() bool {
	return t.Kind == KindIncome
}

func (t Transaction) IsExpense() bool {
	return t.Kind == KindExpense
}

// CategoryName returns the label used when grouping by category.
func (t Transaction) CategoryName() string {
	if t.Category == "" {
		return UncategorizedName
	}
	return t.Category
}

// Month returns the YYYY-MM key of the transaction date.
func (t Transaction) Month() string {
	return MonthKey(t.Date)
}

func (t Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionLong
	}
	if !(t.Amount > 0) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if t.Kind == KindExpense && strings.TrimSpace(t.Category) == "" {
		return ErrMissingCategory
	}
	return nil
}

// ValidateDraft turns raw form input into a Transaction or reports the first
// problem found. An empty date means today.
func ValidateDraft(d Draft) (Transaction, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(d.Kind)))
	if !kind.IsValid() {
		return Transaction{}, ErrInvalidKind
	}

	date := strings.TrimSpace(d.Date)
	if date == "" {
		date = Today()
	}

	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Transaction{}, err
	}

	var t Transaction
	if kind == KindIncome {
		t = NewIncome(date, d.Description, amount, d.Category)
	} else {
		t = NewExpense(date, d.Description, amount, d.Category)
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Today returns the current date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategory
	}
	if !c.Kind.IsValid() {
		return ErrInvalidKind
	}
	return nil
}

// DefaultCategories returns the categories offered before the user has
// customised anything.
func DefaultCategories() []Category {
	out := make([]Category, 0, 5)
	for _, n := range []string{"Essenciais", "Supérfluos", "Objetivos"} {
		out = append(out, Category{ID: strings.ToLower(n), Name: n, Kind: KindExpense})
	}
	for _, n := range []string{"Salário", "Outras"} {
		out = append(out, Category{ID: strings.ToLower(n), Name: n, Kind: KindIncome})
	}
	return out
}

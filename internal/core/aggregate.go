package core

import (
	"fmt"
	"sort"
	"time"
)

// Summary aggregates the income and expense of a set of transactions.
type Summary struct {
	Income       float64       `json:"income"`
	Expense      float64       `json:"expense"`
	Result       float64       `json:"result"`
	Transactions []Transaction `json:"transactions"`
}

// CategoryTotal is an amount summed by category name.
type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthBucket holds the totals of one calendar month.
type MonthBucket struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Result  float64 `json:"result"`
}

// MonthKey returns the YYYY-MM prefix of an ISO date. Malformed input is not
// rejected; it just yields a key no selector will match.
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// YearMonth formats a year and month as a zero padded YYYY-MM key.
func YearMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// GroupByCategory sums amounts per category. Output order is the order in
// which each category first appears in txs.
func GroupByCategory(txs []Transaction) []CategoryTotal {
	index := make(map[string]int)
	out := make([]CategoryTotal, 0)
	for _, t := range txs {
		name := t.CategoryName()
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryTotal{Name: name})
		}
		out[i].Value += t.Amount
	}
	return out
}

// ExpensesByCategory groups only the expense records of txs.
func ExpensesByCategory(txs []Transaction) []CategoryTotal {
	return GroupByCategory(filter(txs, Transaction.IsExpense))
}

// MonthSummary totals the transactions whose month key equals ym.
func MonthSummary(txs []Transaction, ym string) Summary {
	return summarize(filter(txs, func(t Transaction) bool {
		return MonthKey(t.Date) == ym
	}))
}

// CumulativeSummary totals every transaction from the start of history up to
// and including ym. The comparison is lexicographic, which matches calendar
// order because month keys are fixed width and zero padded.
func CumulativeSummary(txs []Transaction, ym string) Summary {
	return summarize(filter(txs, func(t Transaction) bool {
		return MonthKey(t.Date) <= ym
	}))
}

// BuildMonthlySeries buckets txs by month and returns one bucket per distinct
// month, ascending.
func BuildMonthlySeries(txs []Transaction) []MonthBucket {
	buckets := make(map[string]*MonthBucket)
	for _, t := range txs {
		k := MonthKey(t.Date)
		b, ok := buckets[k]
		if !ok {
			b = &MonthBucket{Month: k}
			buckets[k] = b
		}
		if t.IsIncome() {
			b.Income += t.Amount
		} else {
			b.Expense += t.Amount
		}
		b.Result = b.Income - b.Expense
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out
}

// YearsAvailable lists the distinct years present in txs plus the year of now,
// sorted ascending.
func YearsAvailable(txs []Transaction, now time.Time) []string {
	seen := map[string]struct{}{
		fmt.Sprintf("%04d", now.Year()): {},
	}
	for _, t := range txs {
		y := t.Date
		if len(y) > 4 {
			y = y[:4]
		}
		seen[y] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}
	sort.Strings(out)
	return out
}

func summarize(txs []Transaction) Summary {
	s := Summary{Transactions: txs}
	for _, t := range txs {
		switch t.Kind {
		case KindIncome:
			s.Income += t.Amount
		case KindExpense:
			s.Expense += t.Amount
		}
	}
	s.Result = s.Income - s.Expense
	return s
}

func filter(txs []Transaction, keep func(Transaction) bool) []Transaction {
	out := make([]Transaction, 0)
	for _, t := range txs {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Package core provides money parsing and formatting utilities.
//
// Amounts are kept as float64 in records and sums; decimal arithmetic is used
// only at the edges, when parsing user input and when rendering currency.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user supplied decimal string into a positive amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Zero,
// negative, unparseable and out of range values return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
//	ParseAmount("1e400") -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || v == 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatBRL renders a value as Brazilian reais with two decimals, dot
// thousands grouping and comma decimal separator (e.g. "R$ 1.234,56").
func FormatBRL(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	s := "R$ " + b.String() + "," + fracPart
	if neg {
		return "-" + s
	}
	return s
}

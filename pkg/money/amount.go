// Package money provides decimal amount handling for payment values.
//
// Amounts and commissions arrive from the upstream API as JSON numbers or
// numeric strings; both decode into decimal.Decimal without precision loss.
// All totals computed in the portal (settlement summaries, invoices) go
// through this package so float rounding never touches a payment value.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is the zero amount.
var Zero = decimal.Zero

// Parse parses a user-supplied amount string into a decimal.
// It accepts plain decimal notation, trims surrounding whitespace
// and rejects empty, malformed, negative and zero values.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if d.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d)
	}

	return d, nil
}

// Sum returns the exact sum of the given amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Format renders an amount with two decimal places for display.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Package settlement marks approved transactions as settled. The upstream
// has no batch endpoint, so a batch is a sequence of per-transaction status
// updates issued in selection order; the result records every item's outcome
// so partial failure is visible instead of silently swallowed.
package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/lendenpay/portal/pkg/money"
)

// Item is one selected transaction, as the admin screen listed it
type Item struct {
	TransactionID string          `json:"transactionId"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Commission    decimal.Decimal `json:"commission"`
}

// ItemResult is the outcome of settling a single transaction
type ItemResult struct {
	TransactionID string `json:"transactionId"`
	OK            bool   `json:"ok"`
	Error         string `json:"error,omitempty"`
}

// BatchResult is the aggregate outcome of a settlement run. Items preserves
// selection order. The totals cover only the items that actually settled.
type BatchResult struct {
	Items           []ItemResult    `json:"items"`
	Settled         int             `json:"settled"`
	Failed          int             `json:"failed"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
}

// PartialFailure reports whether some items settled and some failed
func (r *BatchResult) PartialFailure() bool {
	return r.Settled > 0 && r.Failed > 0
}

// Totals sums amount and commission over the whole selected set, settled or
// not. Invoices use this: they describe the selection, not the outcome.
func Totals(items []Item) (amount, commission decimal.Decimal) {
	amounts := make([]decimal.Decimal, len(items))
	commissions := make([]decimal.Decimal, len(items))
	for i, item := range items {
		amounts[i] = item.Amount
		commissions[i] = item.Commission
	}
	return money.Sum(amounts...), money.Sum(commissions...)
}

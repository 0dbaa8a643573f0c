// Package invoice builds printable settlement invoices from a selected
// transaction set. The document is a typed model; HTML comes out of a
// template, never out of string concatenation.
package invoice

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/pkg/money"
)

// Line is one transaction on an invoice
type Line struct {
	TransactionID string          `json:"transactionId"`
	CustomerName  string          `json:"customerName,omitempty"`
	MethodName    string          `json:"methodName,omitempty"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Commission    decimal.Decimal `json:"commission"`
	Date          time.Time       `json:"date"`
}

// Invoice is a settlement invoice over a selected transaction set
type Invoice struct {
	Number          string          `json:"number"`
	IssuedAt        time.Time       `json:"issuedAt"`
	IssuedBy        string          `json:"issuedBy,omitempty"`
	Lines           []Line          `json:"lines"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
}

// Build creates an invoice over exactly the given transactions. The totals
// are decimal sums over the selection, nothing more.
func Build(issuedBy string, txs []lendenpay.Transaction, now time.Time) *Invoice {
	inv := &Invoice{
		Number:          fmt.Sprintf("INV-%s", now.UTC().Format("20060102-150405")),
		IssuedAt:        now.UTC(),
		IssuedBy:        issuedBy,
		Lines:           make([]Line, 0, len(txs)),
		TotalAmount:     money.Zero,
		TotalCommission: money.Zero,
	}

	for _, tx := range txs {
		line := Line{
			TransactionID: tx.ID,
			Type:          tx.Type,
			Status:        tx.Status,
			Amount:        tx.Amount,
			Commission:    tx.Commission,
			Date:          tx.CreatedAt,
		}
		if tx.User != nil {
			line.CustomerName = tx.User.FullName
		}
		if tx.PaymentMethod != nil {
			line.MethodName = tx.PaymentMethod.Name
		}

		inv.Lines = append(inv.Lines, line)
		inv.TotalAmount = inv.TotalAmount.Add(tx.Amount)
		inv.TotalCommission = inv.TotalCommission.Add(tx.Commission)
	}

	return inv
}

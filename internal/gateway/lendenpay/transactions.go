package lendenpay

import (
	"context"
	"fmt"
)

// ListTransactions fetches a filtered, paginated transaction listing
func (c *Client) ListTransactions(ctx context.Context, token string, filters TransactionFilters) (*TransactionList, error) {
	var result TransactionList
	if err := c.get(ctx, "/transactions", token, filters.Values(), &result); err != nil {
		return nil, fmt.Errorf("list transactions failed: %w", err)
	}
	return &result, nil
}

// UpdateTransactionStatus requests a status transition for a transaction.
// The upstream decides whether the transition is legal; the portal only
// relays the request.
func (c *Client) UpdateTransactionStatus(ctx context.Context, token, id, status, remarks string) error {
	req := map[string]string{"status": status}
	if remarks != "" {
		req["remarks"] = remarks
	}
	if err := c.post(ctx, "/transactions/status/"+id, token, req, nil); err != nil {
		return fmt.Errorf("update transaction status failed: %w", err)
	}
	return nil
}

package settlement

import (
	"context"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/pkg/logger"
	"github.com/lendenpay/portal/pkg/money"
)

// Gateway is the slice of the upstream API settlement needs.
type Gateway interface {
	UpdateTransactionStatus(ctx context.Context, token, id, status, remarks string) error
}

// Service runs settlement batches
type Service struct {
	gateway Gateway
	logger  *logger.Logger
}

// NewService creates a new settlement service
func NewService(gateway Gateway, log *logger.Logger) *Service {
	return &Service{
		gateway: gateway,
		logger:  log.WithField("component", "settlement"),
	}
}

// Settle issues one status update per item, sequentially and in the order
// given. A failed item is recorded and the run continues; nothing is rolled
// back. Only APPROVED transactions are eligible, anything else fails its
// item without an upstream call.
func (s *Service) Settle(ctx context.Context, token string, items []Item) BatchResult {
	result := BatchResult{
		Items:           make([]ItemResult, 0, len(items)),
		TotalAmount:     money.Zero,
		TotalCommission: money.Zero,
	}

	for _, item := range items {
		if item.Status != lendenpay.TxStatusApproved {
			result.Items = append(result.Items, ItemResult{
				TransactionID: item.TransactionID,
				Error:         "transaction is not approved",
			})
			result.Failed++
			continue
		}

		if err := s.gateway.UpdateTransactionStatus(ctx, token, item.TransactionID, lendenpay.TxStatusSettled, ""); err != nil {
			msg := err.Error()
			if apiErr, ok := lendenpay.AsAPIError(err); ok {
				msg = apiErr.Message
			}
			s.logger.Warn("settlement item failed", "transaction_id", item.TransactionID, "error", err)
			result.Items = append(result.Items, ItemResult{
				TransactionID: item.TransactionID,
				Error:         msg,
			})
			result.Failed++
			continue
		}

		result.Items = append(result.Items, ItemResult{
			TransactionID: item.TransactionID,
			OK:            true,
		})
		result.Settled++
		result.TotalAmount = result.TotalAmount.Add(item.Amount)
		result.TotalCommission = result.TotalCommission.Add(item.Commission)
	}

	s.logger.Info("settlement batch finished",
		"selected", len(items),
		"settled", result.Settled,
		"failed", result.Failed,
	)
	return result
}

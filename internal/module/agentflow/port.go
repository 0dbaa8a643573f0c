package agentflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
)

// Store is the persistence port for flows. Implementations must return
// ErrFlowNotFound for missing or expired flows.
type Store interface {
	Save(ctx context.Context, f *Flow, ttl time.Duration) error
	Load(ctx context.Context, id uuid.UUID) (*Flow, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Gateway is the slice of the upstream API the flow service needs.
type Gateway interface {
	GetAgentInfo(ctx context.Context, agentID string) (*lendenpay.AgentInfo, error)
	AgentPaymentDetails(ctx context.Context, agentID, typeID string) ([]lendenpay.PaymentTypeDetail, error)
	SubmitPayment(ctx context.Context, req lendenpay.SubmitPaymentRequest) (*lendenpay.Transaction, error)
}

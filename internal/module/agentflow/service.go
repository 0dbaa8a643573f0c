package agentflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/pkg/logger"
)

// pendingTTL bounds how long a flow may idle before reaching submission.
const pendingTTL = 30 * time.Minute

// Service drives persisted payment flows. The flow state lives in the store
// so the public pages stay stateless between requests.
type Service struct {
	store   Store
	gateway Gateway
	logger  *logger.Logger
	now     func() time.Time
}

// NewService creates a new flow service
func NewService(store Store, gateway Gateway, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		logger:  log.WithField("component", "agentflow"),
		now:     time.Now,
	}
}

// Start verifies the agent exists and creates a flow with the transaction
// kind already chosen.
func (s *Service) Start(ctx context.Context, agentID, kind string) (*Flow, error) {
	if _, err := s.gateway.GetAgentInfo(ctx, agentID); err != nil {
		return nil, fmt.Errorf("agent lookup failed: %w", err)
	}

	f := New(agentID)
	if err := f.ChooseKind(kind); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, f, pendingTTL); err != nil {
		return nil, fmt.Errorf("failed to persist flow: %w", err)
	}

	s.logger.Info("flow started", "flow_id", f.ID, "agent_id", agentID, "kind", kind)
	return f, nil
}

// Get loads a flow by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Flow, error) {
	return s.store.Load(ctx, id)
}

// SelectMethod advances a flow past method selection
func (s *Service) SelectMethod(ctx context.Context, id uuid.UUID, methodID string) (*Flow, error) {
	f, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := f.ChooseMethod(methodID); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, f, pendingTTL); err != nil {
		return nil, fmt.Errorf("failed to persist flow: %w", err)
	}
	return f, nil
}

// SelectType advances a flow past type selection. The detail rows for the
// chosen type decide the next state: with zero rows the detail grid is
// skipped and the flow lands directly in submission. The rows are returned
// so the caller can render the grid without a second fetch.
func (s *Service) SelectType(ctx context.Context, id uuid.UUID, typeID string) (*Flow, []lendenpay.PaymentTypeDetail, error) {
	f, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	details, err := s.gateway.AgentPaymentDetails(ctx, f.AgentID, typeID)
	if err != nil {
		return nil, nil, fmt.Errorf("detail lookup failed: %w", err)
	}

	if err := f.ChooseType(typeID, len(details)); err != nil {
		return nil, nil, err
	}

	if err := s.store.Save(ctx, f, s.ttlFor(f)); err != nil {
		return nil, nil, fmt.Errorf("failed to persist flow: %w", err)
	}
	return f, details, nil
}

// SelectDetail advances a flow past detail selection, arming the deadline
func (s *Service) SelectDetail(ctx context.Context, id uuid.UUID, detailID string) (*Flow, error) {
	f, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := f.ChooseDetail(detailID); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, f, s.ttlFor(f)); err != nil {
		return nil, fmt.Errorf("failed to persist flow: %w", err)
	}
	return f, nil
}

// Submit validates and posts the payment. On success the flow is consumed;
// on any failure the flow stays as it was so the customer can retry.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, sub Submission) (*lendenpay.Transaction, error) {
	f, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := f.ValidateSubmission(sub, s.now()); err != nil {
		return nil, err
	}

	tx, err := s.gateway.SubmitPayment(ctx, lendenpay.SubmitPaymentRequest{
		AgentID:         f.AgentID,
		Type:            f.Kind,
		PaymentMethodID: f.MethodID,
		PaymentTypeID:   f.TypeID,
		PaymentDetailID: f.DetailID,
		Amount:          sub.Amount.String(),
		ReferenceNumber: sub.ReferenceNumber,
		Attachment:      sub.AttachmentURL,
		SourceType:      sub.SourceType,
		SourceID:        sub.SourceID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		// The payment went through; a leftover flow record only wastes a key.
		s.logger.Warn("failed to delete submitted flow", "flow_id", id, "error", err)
	}

	s.logger.Info("payment submitted", "flow_id", id, "agent_id", f.AgentID, "transaction_id", tx.ID)
	return tx, nil
}

// ttlFor keeps the store entry alive exactly as long as the flow is usable.
func (s *Service) ttlFor(f *Flow) time.Duration {
	if f.State == StateSubmitting {
		return SubmitWindow
	}
	return pendingTTL
}

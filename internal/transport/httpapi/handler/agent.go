package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/internal/module/agentflow"
	"github.com/lendenpay/portal/internal/platform/querycache"
)

// AgentGatewayInterface defines the public upstream agent endpoints
type AgentGatewayInterface interface {
	GetAgentInfo(ctx context.Context, agentID string) (*lendenpay.AgentInfo, error)
	AgentPaymentMethods(ctx context.Context, agentID string) ([]lendenpay.PaymentMethod, error)
	AgentPaymentTypes(ctx context.Context, agentID, methodID string) ([]lendenpay.PaymentType, error)
	AgentPaymentDetails(ctx context.Context, agentID, typeID string) ([]lendenpay.PaymentTypeDetail, error)
}

// FlowServiceInterface defines the agent payment flow operations
type FlowServiceInterface interface {
	Start(ctx context.Context, agentID, kind string) (*agentflow.Flow, error)
	Get(ctx context.Context, id uuid.UUID) (*agentflow.Flow, error)
	SelectMethod(ctx context.Context, id uuid.UUID, methodID string) (*agentflow.Flow, error)
	SelectType(ctx context.Context, id uuid.UUID, typeID string) (*agentflow.Flow, []lendenpay.PaymentTypeDetail, error)
	SelectDetail(ctx context.Context, id uuid.UUID, detailID string) (*agentflow.Flow, error)
	Submit(ctx context.Context, id uuid.UUID, sub agentflow.Submission) (*lendenpay.Transaction, error)
}

// AgentHandler handles the public agent payment surface
type AgentHandler struct {
	gateway AgentGatewayInterface
	flows   FlowServiceInterface
	cache   *querycache.Cache
	now     func() time.Time
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(gateway AgentGatewayInterface, flows FlowServiceInterface, cache *querycache.Cache) *AgentHandler {
	return &AgentHandler{
		gateway: gateway,
		flows:   flows,
		cache:   cache,
		now:     time.Now,
	}
}

// GetInfo handles GET /agents/{agentID}
func (h *AgentHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	info, err := querycache.Fetch(r.Context(), h.cache, querycache.Key("agent", "info", agentID),
		func(ctx context.Context) (*lendenpay.AgentInfo, error) {
			return h.gateway.GetAgentInfo(ctx, agentID)
		})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, info, http.StatusOK)
}

// ListMethods handles GET /agents/{agentID}/methods
func (h *AgentHandler) ListMethods(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	methods, err := querycache.Fetch(r.Context(), h.cache, querycache.Key("agent", "methods", agentID),
		func(ctx context.Context) ([]lendenpay.PaymentMethod, error) {
			return h.gateway.AgentPaymentMethods(ctx, agentID)
		})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, methods, http.StatusOK)
}

// ListTypes handles GET /agents/{agentID}/types
func (h *AgentHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	methodID := r.URL.Query().Get("paymentMethodId")
	types, err := querycache.Fetch(r.Context(), h.cache, querycache.Key("agent", "types", agentID, methodID),
		func(ctx context.Context) ([]lendenpay.PaymentType, error) {
			return h.gateway.AgentPaymentTypes(ctx, agentID, methodID)
		})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, types, http.StatusOK)
}

// ListDetails handles GET /agents/{agentID}/details/{typeID}
func (h *AgentHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	typeID := chi.URLParam(r, "typeID")
	details, err := querycache.Fetch(r.Context(), h.cache, querycache.Key("agent", "details", agentID, typeID),
		func(ctx context.Context) ([]lendenpay.PaymentTypeDetail, error) {
			return h.gateway.AgentPaymentDetails(ctx, agentID, typeID)
		})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, details, http.StatusOK)
}

// FlowResponse is the flow state as seen by the customer. RemainingSeconds
// is zero until the flow reaches the submission step.
type FlowResponse struct {
	*agentflow.Flow
	RemainingSeconds int                           `json:"remainingSeconds"`
	PaymentDetails   []lendenpay.PaymentTypeDetail `json:"paymentDetails,omitempty"`
}

func (h *AgentHandler) flowResponse(f *agentflow.Flow, details []lendenpay.PaymentTypeDetail) FlowResponse {
	return FlowResponse{
		Flow:             f,
		RemainingSeconds: int(f.Remaining(h.now()).Seconds()),
		PaymentDetails:   details,
	}
}

// StartFlow handles POST /agents/{agentID}/flow
func (h *AgentHandler) StartFlow(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	var req struct {
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	flow, err := h.flows.Start(r.Context(), agentID, req.Type)
	if err != nil {
		h.respondFlowError(w, err)
		return
	}
	respondJSON(w, h.flowResponse(flow, nil), http.StatusCreated)
}

// GetFlow handles GET /flows/{flowID}
func (h *AgentHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	id, err := flowID(r)
	if err != nil {
		respondError(w, "invalid flow id", http.StatusBadRequest)
		return
	}

	flow, err := h.flows.Get(r.Context(), id)
	if err != nil {
		h.respondFlowError(w, err)
		return
	}
	respondJSON(w, h.flowResponse(flow, nil), http.StatusOK)
}

// SelectMethod handles POST /flows/{flowID}/method
func (h *AgentHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	id, err := flowID(r)
	if err != nil {
		respondError(w, "invalid flow id", http.StatusBadRequest)
		return
	}
	var req struct {
		PaymentMethodID string `json:"paymentMethodId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	flow, err := h.flows.SelectMethod(r.Context(), id, req.PaymentMethodID)
	if err != nil {
		h.respondFlowError(w, err)
		return
	}
	respondJSON(w, h.flowResponse(flow, nil), http.StatusOK)
}

// SelectType handles POST /flows/{flowID}/type. When the chosen type has
// no selectable details the flow skips straight to the submission step.
func (h *AgentHandler) SelectType(w http.ResponseWriter, r *http.Request) {
	id, err := flowID(r)
	if err != nil {
		respondError(w, "invalid flow id", http.StatusBadRequest)
		return
	}
	var req struct {
		PaymentTypeID string `json:"paymentTypeId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	flow, details, err := h.flows.SelectType(r.Context(), id, req.PaymentTypeID)
	if err != nil {
		h.respondFlowError(w, err)
		return
	}
	respondJSON(w, h.flowResponse(flow, details), http.StatusOK)
}

// SelectDetail handles POST /flows/{flowID}/detail
func (h *AgentHandler) SelectDetail(w http.ResponseWriter, r *http.Request) {
	id, err := flowID(r)
	if err != nil {
		respondError(w, "invalid flow id", http.StatusBadRequest)
		return
	}
	var req struct {
		PaymentDetailID string `json:"paymentDetailId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	flow, err := h.flows.SelectDetail(r.Context(), id, req.PaymentDetailID)
	if err != nil {
		h.respondFlowError(w, err)
		return
	}
	respondJSON(w, h.flowResponse(flow, nil), http.StatusOK)
}

// SubmitFlowRequest represents the final payment submission
type SubmitFlowRequest struct {
	Amount          string `json:"amount"`
	ReferenceNumber string `json:"referenceNumber"`
	Attachment      string `json:"attachment"`
	SourceType      string `json:"sourceType"`
	SourceID        string `json:"sourceId"`
}

// Submit handles POST /flows/{flowID}/submit
func (h *AgentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := flowID(r)
	if err != nil {
		respondError(w, "invalid flow id", http.StatusBadRequest)
		return
	}
	var req SubmitFlowRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// A missing or malformed amount is caught by submission validation,
	// which reports failures in a fixed order.
	amount, _ := decimal.NewFromString(req.Amount)
	tx, err := h.flows.Submit(r.Context(), id, agentflow.Submission{
		Amount:          amount,
		ReferenceNumber: req.ReferenceNumber,
		AttachmentURL:   req.Attachment,
		SourceType:      req.SourceType,
		SourceID:        req.SourceID,
	})
	if err != nil {
		h.respondFlowError(w, err)
		return
	}
	respondJSON(w, tx, http.StatusCreated)
}

// respondFlowError maps flow errors to HTTP responses. Validation messages
// pass through verbatim so the customer sees actionable text.
func (h *AgentHandler) respondFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, agentflow.ErrFlowNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, agentflow.ErrFlowExpired):
		respondError(w, err.Error(), http.StatusGone)
	case errors.Is(err, agentflow.ErrInvalidTransition),
		errors.Is(err, agentflow.ErrUnknownKind),
		errors.Is(err, agentflow.ErrMethodRequired),
		errors.Is(err, agentflow.ErrTypeRequired),
		errors.Is(err, agentflow.ErrDetailRequired),
		errors.Is(err, agentflow.ErrNotReady),
		errors.Is(err, agentflow.ErrAmountRequired),
		errors.Is(err, agentflow.ErrReferenceRequired),
		errors.Is(err, agentflow.ErrAttachmentRequired),
		errors.Is(err, agentflow.ErrSourceRequired):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		respondUpstreamError(w, err)
	}
}

func flowID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "flowID"))
}

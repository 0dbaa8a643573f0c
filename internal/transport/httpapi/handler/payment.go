package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/internal/platform/alert"
	"github.com/lendenpay/portal/internal/platform/querycache"
	"github.com/lendenpay/portal/internal/transport/httpapi/middleware"
)

// PaymentGatewayInterface defines the upstream payment configuration operations
type PaymentGatewayInterface interface {
	ListPaymentMethods(ctx context.Context, token string) ([]lendenpay.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, token, id string) (*lendenpay.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, token string, req lendenpay.PaymentMethodRequest) (*lendenpay.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, token, id string, req lendenpay.PaymentMethodRequest) (*lendenpay.PaymentMethod, error)
	ListPaymentTypes(ctx context.Context, token, methodID string) ([]lendenpay.PaymentType, error)
	GetPaymentType(ctx context.Context, token, id string) (*lendenpay.PaymentType, error)
	CreatePaymentType(ctx context.Context, token string, req lendenpay.PaymentTypeRequest) (*lendenpay.PaymentType, error)
	UpdatePaymentType(ctx context.Context, token, id string, req lendenpay.PaymentTypeRequest) (*lendenpay.PaymentType, error)
	DeletePaymentType(ctx context.Context, token, id string) error
	PaymentDetails(ctx context.Context, token, typeID string) ([]lendenpay.PaymentTypeDetail, error)
	CreatePaymentAccount(ctx context.Context, token string, req lendenpay.PaymentAccountRequest) (*lendenpay.PaymentAccount, error)
	UpdatePaymentAccount(ctx context.Context, token, id string, req lendenpay.PaymentAccountRequest) (*lendenpay.PaymentAccount, error)
}

// PaymentHandler handles payment configuration HTTP requests
type PaymentHandler struct {
	gateway PaymentGatewayInterface
	cache   *querycache.Cache
	alerts  *alert.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(gateway PaymentGatewayInterface, cache *querycache.Cache, alerts *alert.Service) *PaymentHandler {
	return &PaymentHandler{
		gateway: gateway,
		cache:   cache,
		alerts:  alerts,
	}
}

// ListMethods handles GET /payment/methods
func (h *PaymentHandler) ListMethods(w http.ResponseWriter, r *http.Request) {
	token := upstreamToken(r.Context())
	sessKey, _ := sessionFrom(r)
	methods, err := querycache.Fetch(r.Context(), h.cache, querycache.Key("payment", "methods", sessKey),
		func(ctx context.Context) ([]lendenpay.PaymentMethod, error) {
			return h.gateway.ListPaymentMethods(ctx, token)
		})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, methods, http.StatusOK)
}

// GetMethod handles GET /payment/methods/{id}
func (h *PaymentHandler) GetMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	method, err := h.gateway.GetPaymentMethod(r.Context(), upstreamToken(r.Context()), id)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, method, http.StatusOK)
}

// CreateMethod handles POST /payment/methods
func (h *PaymentHandler) CreateMethod(w http.ResponseWriter, r *http.Request) {
	var req lendenpay.PaymentMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondError(w, "name is required", http.StatusBadRequest)
		return
	}

	method, err := h.gateway.CreatePaymentMethod(r.Context(), upstreamToken(r.Context()), req)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), querycache.Key("payment", "methods"), querycache.Key("agent"))
	h.notify(r, "Payment method created")
	respondJSON(w, method, http.StatusCreated)
}

// UpdateMethod handles POST /payment/methods/{id}
func (h *PaymentHandler) UpdateMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req lendenpay.PaymentMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	method, err := h.gateway.UpdatePaymentMethod(r.Context(), upstreamToken(r.Context()), id, req)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), querycache.Key("payment", "methods"), querycache.Key("agent"))
	h.notify(r, "Payment method updated")
	respondJSON(w, method, http.StatusOK)
}

// ListTypes handles GET /payment/types
func (h *PaymentHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	token := upstreamToken(r.Context())
	sessKey, _ := sessionFrom(r)
	methodID := r.URL.Query().Get("paymentMethodId")
	types, err := querycache.Fetch(r.Context(), h.cache, querycache.Key("payment", "types", sessKey, methodID),
		func(ctx context.Context) ([]lendenpay.PaymentType, error) {
			return h.gateway.ListPaymentTypes(ctx, token, methodID)
		})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, types, http.StatusOK)
}

// GetType handles GET /payment/types/{id}
func (h *PaymentHandler) GetType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pt, err := h.gateway.GetPaymentType(r.Context(), upstreamToken(r.Context()), id)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, pt, http.StatusOK)
}

// CreateType handles POST /payment/types
func (h *PaymentHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req lendenpay.PaymentTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.PaymentMethodID == "" {
		respondError(w, "name and paymentMethodId are required", http.StatusBadRequest)
		return
	}

	pt, err := h.gateway.CreatePaymentType(r.Context(), upstreamToken(r.Context()), req)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), querycache.Key("payment", "types"), querycache.Key("agent"))
	h.notify(r, "Payment type created")
	respondJSON(w, pt, http.StatusCreated)
}

// UpdateType handles POST /payment/types/{id}
func (h *PaymentHandler) UpdateType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req lendenpay.PaymentTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pt, err := h.gateway.UpdatePaymentType(r.Context(), upstreamToken(r.Context()), id, req)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), querycache.Key("payment", "types"), querycache.Key("agent"))
	h.notify(r, "Payment type updated")
	respondJSON(w, pt, http.StatusOK)
}

// DeleteType handles POST /payment/types/delete/{id}
func (h *PaymentHandler) DeleteType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.gateway.DeletePaymentType(r.Context(), upstreamToken(r.Context()), id); err != nil {
		respondUpstreamError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(),
		querycache.Key("payment", "types"),
		querycache.Key("payment", "details"),
		querycache.Key("agent"))
	h.notify(r, "Payment type deleted")
	respondJSON(w, map[string]string{"message": "payment type deleted"}, http.StatusOK)
}

// GetDetails handles GET /payment/details/{typeID}
func (h *PaymentHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	token := upstreamToken(r.Context())
	sessKey, _ := sessionFrom(r)
	typeID := chi.URLParam(r, "typeID")
	details, err := querycache.Fetch(r.Context(), h.cache, querycache.Key("payment", "details", sessKey, typeID),
		func(ctx context.Context) ([]lendenpay.PaymentTypeDetail, error) {
			return h.gateway.PaymentDetails(ctx, token, typeID)
		})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, details, http.StatusOK)
}

// CreateAccount handles POST /payment/accounts
func (h *PaymentHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req lendenpay.PaymentAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PaymentDetailID == "" || req.AccountNumber == "" {
		respondError(w, "paymentDetailId and accountNumber are required", http.StatusBadRequest)
		return
	}

	account, err := h.gateway.CreatePaymentAccount(r.Context(), upstreamToken(r.Context()), req)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), querycache.Key("payment", "details"), querycache.Key("agent"))
	h.notify(r, "Payment account created")
	respondJSON(w, account, http.StatusCreated)
}

// UpdateAccount handles POST /payment/accounts/{id}
func (h *PaymentHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req lendenpay.PaymentAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.gateway.UpdatePaymentAccount(r.Context(), upstreamToken(r.Context()), id, req)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), querycache.Key("payment", "details"), querycache.Key("agent"))
	h.notify(r, "Payment account updated")
	respondJSON(w, account, http.StatusOK)
}

// notify publishes a success alert scoped to the current session. Alert
// failures never affect the response.
func (h *PaymentHandler) notify(r *http.Request, message string) {
	if h.alerts == nil {
		return
	}
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		_, _ = h.alerts.Publish(r.Context(), sess.ID.String(), message, alert.SeveritySuccess)
	}
}

// sessionFrom returns the alert key for the authenticated session.
func sessionFrom(r *http.Request) (string, bool) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		return sess.ID.String(), true
	}
	return "", false
}

// upstreamToken returns the upstream bearer token for the authenticated
// session, or an empty string for unauthenticated requests.
func upstreamToken(ctx context.Context) string {
	if sess, ok := middleware.SessionFromContext(ctx); ok {
		return sess.UpstreamToken
	}
	return ""
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/internal/module/invoice"
	"github.com/lendenpay/portal/internal/module/settlement"
	"github.com/lendenpay/portal/internal/platform/alert"
	"github.com/lendenpay/portal/internal/platform/querycache"
	"github.com/lendenpay/portal/internal/transport/httpapi/middleware"
	"github.com/lendenpay/portal/pkg/money"
)

// TransactionGatewayInterface defines the upstream transaction operations
type TransactionGatewayInterface interface {
	ListTransactions(ctx context.Context, token string, filters lendenpay.TransactionFilters) (*lendenpay.TransactionList, error)
	UpdateTransactionStatus(ctx context.Context, token, id, status, remarks string) error
}

// SettlementServiceInterface defines the batch settlement operation
type SettlementServiceInterface interface {
	Settle(ctx context.Context, token string, items []settlement.Item) settlement.BatchResult
}

// TransactionHandler handles transaction listing, status updates, batch
// settlement and invoice generation
type TransactionHandler struct {
	gateway    TransactionGatewayInterface
	settlement SettlementServiceInterface
	cache      *querycache.Cache
	alerts     *alert.Service
	now        func() time.Time
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(gateway TransactionGatewayInterface, settle SettlementServiceInterface, cache *querycache.Cache, alerts *alert.Service) *TransactionHandler {
	return &TransactionHandler{
		gateway:    gateway,
		settlement: settle,
		cache:      cache,
		alerts:     alerts,
		now:        time.Now,
	}
}

// parseTransactionFilters builds upstream filters from list query parameters
func parseTransactionFilters(r *http.Request) lendenpay.TransactionFilters {
	q := r.URL.Query()
	filters := lendenpay.TransactionFilters{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	if v := q.Get("startDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.From = &t
		}
	}
	if v := q.Get("endDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.To = &t
		}
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filters.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	return filters
}

// List handles GET /transactions
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	token := upstreamToken(r.Context())
	filters := parseTransactionFilters(r)

	// Keys carry the session so one admin's token never serves another's read.
	sessKey, _ := sessionFrom(r)
	key := querycache.Key("tx", "list", sessKey, filters.Values().Encode())
	list, err := querycache.Fetch(r.Context(), h.cache, key,
		func(ctx context.Context) (*lendenpay.TransactionList, error) {
			return h.gateway.ListTransactions(ctx, token, filters)
		})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, list, http.StatusOK)
}

// UpdateStatusRequest represents a single status change
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

// UpdateStatus handles POST /transactions/{id}/status
func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		respondError(w, "status is required", http.StatusBadRequest)
		return
	}

	if err := h.gateway.UpdateTransactionStatus(r.Context(), upstreamToken(r.Context()), id, req.Status, req.Remarks); err != nil {
		respondUpstreamError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), querycache.Key("tx"))
	h.notify(r, "Transaction "+req.Status, alert.SeveritySuccess)
	respondJSON(w, map[string]string{"message": "transaction updated"}, http.StatusOK)
}

// SettleItemRequest is one selected row from the charges screen
type SettleItemRequest struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Commission    string `json:"commission"`
}

// SettleRequest represents the batch settlement payload. Items arrive in
// the order they were selected on screen and are processed in that order.
type SettleRequest struct {
	Items []SettleItemRequest `json:"items"`
}

// Settle handles POST /charges/settle
func (h *TransactionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		respondError(w, "no transactions selected", http.StatusBadRequest)
		return
	}

	items := make([]settlement.Item, 0, len(req.Items))
	for _, it := range req.Items {
		if it.TransactionID == "" {
			respondError(w, "transactionId is required for every item", http.StatusBadRequest)
			return
		}
		amount, err := money.Parse(it.Amount)
		if err != nil {
			respondError(w, "invalid amount for transaction "+it.TransactionID, http.StatusBadRequest)
			return
		}
		commission, err := decimal.NewFromString(it.Commission)
		if err != nil {
			respondError(w, "invalid commission for transaction "+it.TransactionID, http.StatusBadRequest)
			return
		}
		items = append(items, settlement.Item{
			TransactionID: it.TransactionID,
			Status:        it.Status,
			Amount:        amount,
			Commission:    commission,
		})
	}

	result := h.settlement.Settle(r.Context(), upstreamToken(r.Context()), items)
	h.cache.Invalidate(r.Context(), querycache.Key("tx"))

	switch {
	case result.Failed == 0:
		h.notify(r, "All transactions settled", alert.SeveritySuccess)
	case result.Settled == 0:
		h.notify(r, "Settlement failed", alert.SeverityError)
	default:
		h.notify(r, "Some transactions could not be settled", alert.SeverityWarn)
	}

	respondJSON(w, result, http.StatusOK)
}

// InvoiceLineRequest is one selected row for invoice generation
type InvoiceLineRequest struct {
	TransactionID string `json:"transactionId"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Commission    string `json:"commission"`
	UserName      string `json:"userName,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// InvoiceRequest represents the invoice generation payload
type InvoiceRequest struct {
	Transactions []InvoiceLineRequest `json:"transactions"`
}

// Invoice handles POST /charges/invoice and responds with a printable
// HTML document covering exactly the selected transactions.
func (h *TransactionHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req InvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Transactions) == 0 {
		respondError(w, "no transactions selected", http.StatusBadRequest)
		return
	}

	txs := make([]lendenpay.Transaction, 0, len(req.Transactions))
	for _, line := range req.Transactions {
		amount, err := money.Parse(line.Amount)
		if err != nil {
			respondError(w, "invalid amount for transaction "+line.TransactionID, http.StatusBadRequest)
			return
		}
		commission, err := decimal.NewFromString(line.Commission)
		if err != nil {
			respondError(w, "invalid commission for transaction "+line.TransactionID, http.StatusBadRequest)
			return
		}
		tx := lendenpay.Transaction{
			ID:         line.TransactionID,
			Type:       line.Type,
			Status:     line.Status,
			Amount:     amount,
			Commission: commission,
		}
		if line.UserName != "" {
			tx.User = &lendenpay.User{FullName: line.UserName}
		}
		if line.CreatedAt != "" {
			if t, err := time.Parse(time.RFC3339, line.CreatedAt); err == nil {
				tx.CreatedAt = t
			}
		}
		txs = append(txs, tx)
	}

	inv := invoice.Build(sess.User.FullName, txs, h.now())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := inv.RenderHTML(w); err != nil {
		// headers already sent, nothing more to do
		return
	}
}

func (h *TransactionHandler) notify(r *http.Request, message string, severity alert.Severity) {
	if h.alerts == nil {
		return
	}
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		_, _ = h.alerts.Publish(r.Context(), sess.ID.String(), message, severity)
	}
}

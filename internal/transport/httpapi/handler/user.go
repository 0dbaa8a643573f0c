package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/internal/platform/alert"
	"github.com/lendenpay/portal/internal/platform/querycache"
)

// UserGatewayInterface defines the upstream user management operations
type UserGatewayInterface interface {
	ListUsers(ctx context.Context, token string, filters lendenpay.UserFilters) (*lendenpay.UserList, error)
	UpdateUser(ctx context.Context, token, id string, req lendenpay.UserUpdateRequest) (*lendenpay.User, error)
}

// UserHandler handles user management HTTP requests
type UserHandler struct {
	gateway UserGatewayInterface
	cache   *querycache.Cache
	alerts  *alert.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(gateway UserGatewayInterface, cache *querycache.Cache, alerts *alert.Service) *UserHandler {
	return &UserHandler{
		gateway: gateway,
		cache:   cache,
		alerts:  alerts,
	}
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	token := upstreamToken(r.Context())
	q := r.URL.Query()
	filters := lendenpay.UserFilters{Search: q.Get("search")}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filters.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}

	sessKey, _ := sessionFrom(r)
	key := querycache.Key("users", "list", sessKey, filters.Values().Encode())
	list, err := querycache.Fetch(r.Context(), h.cache, key,
		func(ctx context.Context) (*lendenpay.UserList, error) {
			return h.gateway.ListUsers(ctx, token, filters)
		})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, list, http.StatusOK)
}

// Update handles POST /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req lendenpay.UserUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.gateway.UpdateUser(r.Context(), upstreamToken(r.Context()), id, req)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), querycache.Key("users"))
	if h.alerts != nil {
		if sess, ok := sessionFrom(r); ok {
			_, _ = h.alerts.Publish(r.Context(), sess, "User updated", alert.SeveritySuccess)
		}
	}
	respondJSON(w, user, http.StatusOK)
}

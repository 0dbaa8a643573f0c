package handler

import (
	"net/http"

	"github.com/lendenpay/portal/internal/platform/alert"
)

// AlertHandler exposes the current session-scoped alert
type AlertHandler struct {
	alerts *alert.Service
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alerts *alert.Service) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// Current handles GET /alerts/current. An expired or absent alert comes
// back as an empty object so the frontend can poll unconditionally.
func (h *AlertHandler) Current(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionFrom(r)
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	a, err := h.alerts.Current(r.Context(), key)
	if err != nil {
		respondError(w, "failed to load alert", http.StatusInternalServerError)
		return
	}
	if a == nil {
		respondJSON(w, struct{}{}, http.StatusOK)
		return
	}
	respondJSON(w, a, http.StatusOK)
}

// Dismiss handles POST /alerts/dismiss
func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionFrom(r)
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.alerts.Dismiss(r.Context(), key); err != nil {
		respondError(w, "failed to dismiss alert", http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]string{"message": "dismissed"}, http.StatusOK)
}

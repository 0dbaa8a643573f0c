package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondUpstreamError maps an error coming back from the lendenpay API
// to an HTTP response. Upstream messages are surfaced verbatim so the
// frontend shows exactly what the server said.
func respondUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *lendenpay.APIError
	if errors.As(err, &apiErr) {
		respondError(w, apiErr.Message, apiErr.StatusCode)
		return
	}
	if lendenpay.IsRateLimitError(err) {
		respondError(w, "too many requests, please try again later", http.StatusTooManyRequests)
		return
	}
	respondError(w, "something went wrong", http.StatusInternalServerError)
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

package lendenpay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError is an error response from the upstream API. Message carries the
// upstream-provided text so handlers can surface it to the user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("LendenPay API error: status %d: %s", e.StatusCode, e.Message)
}

// NotFound reports whether the upstream answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// newAPIError builds an APIError from an upstream response body. It tries
// the "message" and "error" fields before falling back to a generic string.
func newAPIError(status int, body []byte) *APIError {
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(body, &obj) == nil {
		if obj.Message != "" {
			msg = obj.Message
		} else if obj.Error != "" {
			msg = obj.Error
		}
	}
	if msg == "" {
		msg = "something went wrong"
	}
	return &APIError{StatusCode: status, Message: msg}
}

// AsAPIError extracts an APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// RateLimitError represents a rate limit error from the upstream API
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
}

// IsRateLimitError checks if an error is (or wraps) an upstream rate limit error
func IsRateLimitError(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

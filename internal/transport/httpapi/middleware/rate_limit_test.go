package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func limitedHandler(rl *RateLimiter) http.Handler {
	return rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimiter_SharesLimiterAcrossConnections(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0), 2)
	h := limitedHandler(rl)

	// Same host on different ephemeral ports is one client.
	for i, addr := range []string{"10.0.0.1:40001", "10.0.0.1:40002"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/agents/AG1/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/agents/AG1/", nil)
	req.RemoteAddr = "10.0.0.1:40003"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiter_DistinctHostsGetOwnLimiters(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0), 1)
	h := limitedHandler(rl)

	for _, addr := range []string{"10.0.0.1:40001", "10.0.0.2:40001"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/agents/AG1/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "first request from %s", addr)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{name: "direct with port", remote: "10.0.0.1:40001", want: "10.0.0.1"},
		{name: "direct without port", remote: "10.0.0.1", want: "10.0.0.1"},
		{name: "single forwarded", remote: "127.0.0.1:80", forwarded: "203.0.113.7", want: "203.0.113.7"},
		{name: "forwarded chain uses first hop", remote: "127.0.0.1:80", forwarded: "203.0.113.7, 10.0.0.1", want: "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

// Package lendenpay is the HTTP client for the upstream LendenPay API.
// The upstream owns all business logic: credential checks, ledgering,
// commission computation, limit enforcement and settlement recording.
// The portal never reinterprets upstream decisions, it only relays them.
package lendenpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lendenpay/portal/pkg/logger"
)

const (
	defaultBaseURL = "https://lendenpay.com/api"
	requestTimeout = 30 * time.Second
	maxRetries     = 3
)

// Client is an HTTP client for the LendenPay REST API
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// NewClient creates a new LendenPay API client
func NewClient(baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: baseURL,
		logger:  log.WithField("component", "lendenpay"),
	}
}

// SetBaseURL overrides the base URL (useful for testing)
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// doRequest performs an HTTP request against the upstream API with
// rate-limit retry. It retries up to maxRetries times with exponential
// backoff (1s, 2s, 4s) on 429 responses. A non-empty token is attached
// as a bearer Authorization header.
func (c *Client) doRequest(ctx context.Context, method, path, token string, params url.Values, body interface{}) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	backoff := time.Second
	for attempt := 0; attempt <= maxRetries; attempt++ {
		c.logger.Debug("API request", "method", method, "path", path, "attempt", attempt)
		attemptStart := time.Now()

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.logger.Debug("API response", "status_code", resp.StatusCode, "duration_ms", time.Since(attemptStart).Milliseconds())
			return respBody, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt == maxRetries {
				c.logger.Error("rate limit exhausted", "attempts", maxRetries+1)
				return nil, &RateLimitError{
					RetryAfter: backoff,
					Message:    "LendenPay API rate limit exceeded after retries",
				}
			}
			c.logger.Warn("rate limited, retrying", "attempt", attempt, "backoff_ms", backoff.Milliseconds())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
				continue
			}
		}

		c.logger.Warn("API error", "status_code", resp.StatusCode, "path", path)
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	return nil, fmt.Errorf("LendenPay API: exhausted retries")
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path, token string, params url.Values, out interface{}) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, token, params, nil)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// post issues a POST request with a JSON body and decodes the response into
// out when out is non-nil.
func (c *Client) post(ctx context.Context, path, token string, in, out interface{}) error {
	body, err := c.doRequest(ctx, http.MethodPost, path, token, nil, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

func decode(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode LendenPay response: %w", err)
	}
	return nil
}

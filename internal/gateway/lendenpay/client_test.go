package lendenpay_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("development", io.Discard)
}

func newTestClient(serverURL string) *lendenpay.Client {
	client := lendenpay.NewClient("", testLogger())
	client.SetBaseURL(serverURL)
	return client
}

func TestClient_BearerToken(t *testing.T) {
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"paymentMethods": []interface{}{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ListPaymentMethods(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", receivedAuth)
}

func TestClient_PublicEndpointsSendNoToken(t *testing.T) {
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"agent": map[string]string{"agentId": "a-1", "fullName": "Agent One"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	info, err := client.GetAgentInfo(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Empty(t, receivedAuth)
	assert.Equal(t, "Agent One", info.FullName)
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin@lendenpay.com", req["email"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "upstream-token",
			"user":  map[string]interface{}{"id": "u-1", "email": "admin@lendenpay.com", "accountType": "super admin"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Login(context.Background(), "admin@lendenpay.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", result.Token)
	assert.Equal(t, "u-1", result.User.ID)
}

func TestClient_TransactionFilters(t *testing.T) {
	var receivedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(lendenpay.TransactionList{})
	}))
	defer server.Close()

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	client := newTestClient(server.URL)
	_, err := client.ListTransactions(context.Background(), "tok", lendenpay.TransactionFilters{
		From:   &from,
		To:     &to,
		Status: lendenpay.TxStatusApproved,
		Search: "rahim",
		Page:   2,
		Limit:  25,
	})
	require.NoError(t, err)

	assert.Contains(t, receivedQuery, "startDate=2024-06-01")
	assert.Contains(t, receivedQuery, "endDate=2024-06-30")
	assert.Contains(t, receivedQuery, "status=APPROVED")
	assert.Contains(t, receivedQuery, "search=rahim")
	assert.Contains(t, receivedQuery, "page=2")
	assert.Contains(t, receivedQuery, "limit=25")
}

func TestClient_UpstreamErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "insufficient agent limit"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SubmitPayment(context.Background(), lendenpay.SubmitPaymentRequest{})
	require.Error(t, err)

	apiErr, ok := lendenpay.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "insufficient agent limit", apiErr.Message)
}

func TestClient_GenericFallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ListPaymentMethods(context.Background(), "tok")
	require.Error(t, err)

	apiErr, ok := lendenpay.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "something went wrong", apiErr.Message)
}

func TestClient_RetryOn429(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"paymentMethods": []interface{}{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ListPaymentMethods(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_RateLimitExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ListPaymentMethods(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, lendenpay.IsRateLimitError(err))
}

func TestClient_UploadImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/upload", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "receipt.png", header.Filename)
		assert.Equal(t, "fake-png-bytes", string(content))

		json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.lendenpay.com/receipt.png"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	url, err := client.UploadImage(context.Background(), "tok", "receipt.png", strings.NewReader("fake-png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.lendenpay.com/receipt.png", url)
}

func TestClient_UploadMissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.UploadImage(context.Background(), "tok", "receipt.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing url")
}

func TestClient_DeletePaymentTypeUsesPost(t *testing.T) {
	var receivedMethod, receivedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		receivedPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.DeletePaymentType(context.Background(), "tok", "pt-9")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, receivedMethod)
	assert.Equal(t, "/payment/types/delete/pt-9", receivedPath)
}

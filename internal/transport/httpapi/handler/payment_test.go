package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/internal/transport/httpapi/handler"
)

// MockPaymentGateway is a mock implementation of handler.PaymentGatewayInterface
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) ListPaymentMethods(ctx context.Context, token string) ([]lendenpay.PaymentMethod, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lendenpay.PaymentMethod), args.Error(1)
}

func (m *MockPaymentGateway) GetPaymentMethod(ctx context.Context, token, id string) (*lendenpay.PaymentMethod, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lendenpay.PaymentMethod), args.Error(1)
}

func (m *MockPaymentGateway) CreatePaymentMethod(ctx context.Context, token string, req lendenpay.PaymentMethodRequest) (*lendenpay.PaymentMethod, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lendenpay.PaymentMethod), args.Error(1)
}

func (m *MockPaymentGateway) UpdatePaymentMethod(ctx context.Context, token, id string, req lendenpay.PaymentMethodRequest) (*lendenpay.PaymentMethod, error) {
	args := m.Called(ctx, token, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lendenpay.PaymentMethod), args.Error(1)
}

func (m *MockPaymentGateway) ListPaymentTypes(ctx context.Context, token, methodID string) ([]lendenpay.PaymentType, error) {
	args := m.Called(ctx, token, methodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lendenpay.PaymentType), args.Error(1)
}

func (m *MockPaymentGateway) GetPaymentType(ctx context.Context, token, id string) (*lendenpay.PaymentType, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lendenpay.PaymentType), args.Error(1)
}

func (m *MockPaymentGateway) CreatePaymentType(ctx context.Context, token string, req lendenpay.PaymentTypeRequest) (*lendenpay.PaymentType, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lendenpay.PaymentType), args.Error(1)
}

func (m *MockPaymentGateway) UpdatePaymentType(ctx context.Context, token, id string, req lendenpay.PaymentTypeRequest) (*lendenpay.PaymentType, error) {
	args := m.Called(ctx, token, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lendenpay.PaymentType), args.Error(1)
}

func (m *MockPaymentGateway) DeletePaymentType(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockPaymentGateway) PaymentDetails(ctx context.Context, token, typeID string) ([]lendenpay.PaymentTypeDetail, error) {
	args := m.Called(ctx, token, typeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lendenpay.PaymentTypeDetail), args.Error(1)
}

func (m *MockPaymentGateway) CreatePaymentAccount(ctx context.Context, token string, req lendenpay.PaymentAccountRequest) (*lendenpay.PaymentAccount, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lendenpay.PaymentAccount), args.Error(1)
}

func (m *MockPaymentGateway) UpdatePaymentAccount(ctx context.Context, token, id string, req lendenpay.PaymentAccountRequest) (*lendenpay.PaymentAccount, error) {
	args := m.Called(ctx, token, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lendenpay.PaymentAccount), args.Error(1)
}

func newPaymentRouter(gw *MockPaymentGateway) *chi.Mux {
	h := handler.NewPaymentHandler(gw, newTestCache(), nil)
	r := chi.NewRouter()
	r.Route("/payment", func(r chi.Router) {
		r.Get("/methods", h.ListMethods)
		r.Post("/methods", h.CreateMethod)
		r.Get("/methods/{id}", h.GetMethod)
		r.Post("/methods/{id}", h.UpdateMethod)
		r.Get("/types", h.ListTypes)
		r.Post("/types", h.CreateType)
		r.Post("/types/delete/{id}", h.DeleteType)
		r.Get("/details/{typeID}", h.GetDetails)
		r.Post("/accounts", h.CreateAccount)
	})
	return r
}

func TestPaymentHandler_ListMethodsCached(t *testing.T) {
	gw := new(MockPaymentGateway)
	r := newPaymentRouter(gw)

	methods := []lendenpay.PaymentMethod{{ID: "pm-1", Name: "bKash", Status: lendenpay.StatusActive}}
	gw.On("ListPaymentMethods", mock.Anything, "upstream-token").Return(methods, nil).Once()

	sess := newAdminSession()
	for i := 0; i < 2; i++ {
		req := withSession(httptest.NewRequest(http.MethodGet, "/payment/methods", nil), sess)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "bKash")
	}

	gw.AssertNumberOfCalls(t, "ListPaymentMethods", 1)
}

func TestPaymentHandler_ListMethodsNotSharedAcrossSessions(t *testing.T) {
	gw := new(MockPaymentGateway)
	r := newPaymentRouter(gw)

	gw.On("ListPaymentMethods", mock.Anything, "upstream-token").
		Return([]lendenpay.PaymentMethod{{ID: "pm-1", Name: "bKash"}}, nil).Twice()

	// Each session fetches with its own token; neither reads the other's entry.
	for i := 0; i < 2; i++ {
		req := withSession(httptest.NewRequest(http.MethodGet, "/payment/methods", nil), newAdminSession())
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	gw.AssertNumberOfCalls(t, "ListPaymentMethods", 2)
}

func TestPaymentHandler_CreateMethodInvalidatesListing(t *testing.T) {
	gw := new(MockPaymentGateway)
	r := newPaymentRouter(gw)

	gw.On("ListPaymentMethods", mock.Anything, "upstream-token").
		Return([]lendenpay.PaymentMethod{{ID: "pm-1", Name: "bKash"}}, nil).Twice()
	gw.On("CreatePaymentMethod", mock.Anything, "upstream-token", mock.Anything).
		Return(&lendenpay.PaymentMethod{ID: "pm-2", Name: "Nagad"}, nil)

	sess := newAdminSession()

	// Prime the cache.
	req := withSession(httptest.NewRequest(http.MethodGet, "/payment/methods", nil), sess)
	r.ServeHTTP(httptest.NewRecorder(), req)

	// Create a method.
	req = withSession(httptest.NewRequest(http.MethodPost, "/payment/methods",
		jsonBody(t, lendenpay.PaymentMethodRequest{Name: "Nagad", Status: lendenpay.StatusActive})), sess)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The next listing refetches instead of serving the stale cache entry.
	req = withSession(httptest.NewRequest(http.MethodGet, "/payment/methods", nil), sess)
	r.ServeHTTP(httptest.NewRecorder(), req)

	gw.AssertNumberOfCalls(t, "ListPaymentMethods", 2)
}

func TestPaymentHandler_CreateMethodRequiresName(t *testing.T) {
	gw := new(MockPaymentGateway)
	r := newPaymentRouter(gw)

	req := adminContext(httptest.NewRequest(http.MethodPost, "/payment/methods",
		jsonBody(t, lendenpay.PaymentMethodRequest{Status: lendenpay.StatusActive})))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	gw.AssertNotCalled(t, "CreatePaymentMethod", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentHandler_DeleteTypeUpstreamError(t *testing.T) {
	gw := new(MockPaymentGateway)
	r := newPaymentRouter(gw)

	apiErr := &lendenpay.APIError{StatusCode: http.StatusConflict, Message: "type has pending transactions"}
	gw.On("DeletePaymentType", mock.Anything, "upstream-token", "pt-1").Return(apiErr)

	req := adminContext(httptest.NewRequest(http.MethodPost, "/payment/types/delete/pt-1", strings.NewReader("{}")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "type has pending transactions")
}

func TestPaymentHandler_CreateAccountRequiresDetail(t *testing.T) {
	gw := new(MockPaymentGateway)
	r := newPaymentRouter(gw)

	req := adminContext(httptest.NewRequest(http.MethodPost, "/payment/accounts",
		jsonBody(t, lendenpay.PaymentAccountRequest{AccountNumber: ""})))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	gw.AssertNotCalled(t, "CreatePaymentAccount", mock.Anything, mock.Anything, mock.Anything)
}

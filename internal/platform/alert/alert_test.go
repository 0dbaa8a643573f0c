package alert_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendenpay/portal/internal/platform/alert"
	"github.com/lendenpay/portal/pkg/logger"
)

// memStore enforces TTL expiry in memory, mirroring the Redis implementation.
type memStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	alert    *alert.Alert
	deadline time.Time
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]memEntry)}
}

func (s *memStore) Put(ctx context.Context, key string, a *alert.Alert, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{alert: a, deadline: time.Now().Add(ttl)}
	return nil
}

func (s *memStore) Get(ctx context.Context, key string) (*alert.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.deadline) {
		delete(s.entries, key)
		return nil, nil
	}
	return entry.alert, nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func newService(store alert.Store) *alert.Service {
	return alert.NewService(store, logger.New("development", io.Discard))
}

func TestService_PublishAndCurrent(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())

	published, err := svc.Publish(ctx, "sess-1", "Payment method created", alert.SeveritySuccess)
	require.NoError(t, err)
	assert.Equal(t, alert.SeveritySuccess, published.Severity)

	current, err := svc.Current(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "Payment method created", current.Message)
}

func TestService_SecondPublishReplacesFirst(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())

	_, err := svc.Publish(ctx, "sess-1", "first", alert.SeverityWarn)
	require.NoError(t, err)
	_, err = svc.Publish(ctx, "sess-1", "second", alert.SeverityError)
	require.NoError(t, err)

	current, err := svc.Current(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "second", current.Message)
	assert.Equal(t, alert.SeverityError, current.Severity)
}

func TestService_InvalidSeverity(t *testing.T) {
	svc := newService(newMemStore())
	_, err := svc.Publish(context.Background(), "sess-1", "msg", alert.Severity("fatal"))
	assert.ErrorIs(t, err, alert.ErrInvalidSeverity)
}

func TestService_Dismiss(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())

	_, err := svc.Publish(ctx, "sess-1", "msg", alert.SeveritySuccess)
	require.NoError(t, err)
	require.NoError(t, svc.Dismiss(ctx, "sess-1"))

	current, err := svc.Current(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestService_AlertsAreScopedPerKey(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())

	_, err := svc.Publish(ctx, "sess-1", "for one", alert.SeveritySuccess)
	require.NoError(t, err)

	current, err := svc.Current(ctx, "sess-2")
	require.NoError(t, err)
	assert.Nil(t, current)
}

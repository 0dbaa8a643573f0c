package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lendenpay/portal/internal/platform/alert"
)

const alertKeyPrefix = "alert:"

// AlertStore implements alert.Store on Redis. The Redis TTL is the alert's
// visibility window, so expiry is auto-dismissal.
type AlertStore struct {
	client *redis.Client
}

// NewAlertStore creates a Redis alert store
func NewAlertStore(client *redis.Client) *AlertStore {
	return &AlertStore{client: client}
}

// Put replaces the alert under key
func (s *AlertStore) Put(ctx context.Context, key string, a *alert.Alert, ttl time.Duration) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := s.client.Set(ctx, alertKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// Get returns the live alert for key, or nil when none is showing
func (s *AlertStore) Get(ctx context.Context, key string) (*alert.Alert, error) {
	val, err := s.client.Get(ctx, alertKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}

	var a alert.Alert
	if err := json.Unmarshal(val, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert: %w", err)
	}
	return &a, nil
}

// Delete dismisses the alert under key
func (s *AlertStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, alertKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

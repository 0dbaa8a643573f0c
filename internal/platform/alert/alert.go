// Package alert holds ephemeral user-facing notifications. An alert lives
// for a fixed window and then expires on its own; publishing replaces any
// alert already showing. There is no queue.
package alert

import (
	"context"
	"errors"
	"time"

	"github.com/lendenpay/portal/pkg/logger"
)

// DefaultVisibility is how long an alert stays visible before it expires.
const DefaultVisibility = 3 * time.Second

// Severity classifies an alert
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

// ErrInvalidSeverity is returned for severities outside the known set
var ErrInvalidSeverity = errors.New("invalid alert severity")

// Alert is a single ephemeral notification
type Alert struct {
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the persistence port for alerts. Implementations expire entries
// after the TTL passed to Put; Get returns nil for absent or expired keys.
type Store interface {
	Put(ctx context.Context, key string, a *Alert, ttl time.Duration) error
	Get(ctx context.Context, key string) (*Alert, error)
	Delete(ctx context.Context, key string) error
}

// Service publishes and reads per-session alerts
type Service struct {
	store      Store
	visibility time.Duration
	logger     *logger.Logger
}

// NewService creates an alert service with the default visibility window
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{
		store:      store,
		visibility: DefaultVisibility,
		logger:     log.WithField("component", "alert"),
	}
}

// Publish replaces the current alert for the key with a new one
func (s *Service) Publish(ctx context.Context, key, message string, severity Severity) (*Alert, error) {
	switch severity {
	case SeveritySuccess, SeverityWarn, SeverityError:
	default:
		return nil, ErrInvalidSeverity
	}

	a := &Alert{
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Put(ctx, key, a, s.visibility); err != nil {
		return nil, err
	}
	return a, nil
}

// Current returns the live alert for the key, or nil when none is showing
func (s *Service) Current(ctx context.Context, key string) (*Alert, error) {
	return s.store.Get(ctx, key)
}

// Dismiss removes the current alert before its window elapses
func (s *Service) Dismiss(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

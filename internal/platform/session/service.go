package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lendenpay/portal/pkg/logger"
)

// Service handles session business logic
type Service struct {
	store   Store
	gateway Gateway
	ttl     time.Duration
	logger  *logger.Logger
}

// NewService creates a new session service
func NewService(store Store, gateway Gateway, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		ttl:     ttl,
		logger:  log.WithField("component", "session"),
	}
}

// Login validates credentials locally, exchanges them upstream and persists
// the resulting session. Validation failures never reach the upstream.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	result, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:            uuid.New(),
		UpstreamToken: result.Token,
		User:          result.User,
		CreatedAt:     now,
		RefreshedAt:   now,
	}

	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("session created", "session_id", sess.ID, "account_type", sess.User.AccountType)
	return sess, nil
}

// Get retrieves a session by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.store.Load(ctx, id)
}

// Logout deletes the session. A missing session is not an error: logout is
// idempotent.
func (s *Service) Logout(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil && err != ErrSessionNotFound {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info("session deleted", "session_id", id)
	return nil
}

// Refresh re-fetches the profile for the session's email and updates the
// stored snapshot. A refresh failure leaves the existing session usable;
// callers log it and move on.
func (s *Service) Refresh(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	profile, err := s.gateway.ProfileByEmail(ctx, sess.UpstreamToken, sess.User.Email)
	if err != nil {
		return nil, fmt.Errorf("profile refresh failed: %w", err)
	}

	sess.User = *profile
	sess.RefreshedAt = time.Now().UTC()

	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed session: %w", err)
	}

	return sess, nil
}

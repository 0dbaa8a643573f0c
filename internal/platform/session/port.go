package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
)

// Store is the persistence port for sessions. Implementations must return
// ErrSessionNotFound for missing or expired sessions.
type Store interface {
	// Save persists a session with the given lifetime.
	Save(ctx context.Context, s *Session, ttl time.Duration) error

	// Load retrieves a session by ID.
	Load(ctx context.Context, id uuid.UUID) (*Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Gateway is the slice of the upstream API the session service needs.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*lendenpay.LoginResult, error)
	ProfileByEmail(ctx context.Context, token, email string) (*lendenpay.User, error)
}

package session

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
)

// Session is the portal-side record of an authenticated user: the upstream
// bearer token and the profile snapshot fetched at login. It is the explicit
// replacement for browser-storage credential state; persistence goes through
// the Store port.
type Session struct {
	ID            uuid.UUID      `json:"id"`
	UpstreamToken string         `json:"upstreamToken"`
	User          lendenpay.User `json:"user"`
	CreatedAt     time.Time      `json:"createdAt"`
	RefreshedAt   time.Time      `json:"refreshedAt"`
}

// emailRegex is a simplified RFC 5322 check. Malformed addresses fail here,
// before any upstream call is made.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks the email format
func ValidateEmail(email string) error {
	if email == "" || !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

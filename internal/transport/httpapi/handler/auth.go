package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	"github.com/lendenpay/portal/internal/platform/session"
	"github.com/lendenpay/portal/internal/transport/httpapi/middleware"
	"github.com/lendenpay/portal/pkg/logger"
)

// SessionServiceInterface defines the session operations needed by AuthHandler
type SessionServiceInterface interface {
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Logout(ctx context.Context, id uuid.UUID) error
	Refresh(ctx context.Context, id uuid.UUID) (*session.Session, error)
}

// AccountGatewayInterface defines the upstream account operations needed by AuthHandler
type AccountGatewayInterface interface {
	Register(ctx context.Context, req lendenpay.RegisterRequest) (*lendenpay.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	sessions     SessionServiceInterface
	gateway      AccountGatewayInterface
	jwt          *middleware.JWTService
	cookieTTL    time.Duration
	secureCookie bool
	logger       *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions SessionServiceInterface, gateway AccountGatewayInterface, jwt *middleware.JWTService, cookieTTL time.Duration, secureCookie bool, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		gateway:      gateway,
		jwt:          jwt,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
		logger:       log,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response payload
type LoginResponse struct {
	Token string         `json:"token"`
	User  lendenpay.User `json:"user"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidEmail):
			respondError(w, "Please enter a valid email", http.StatusBadRequest)
		case errors.Is(err, session.ErrPasswordRequired):
			respondError(w, "Please enter your password", http.StatusBadRequest)
		default:
			respondUpstreamError(w, err)
		}
		return
	}

	token, err := h.jwt.GenerateToken(sess.ID, sess.User.Email)
	if err != nil {
		respondError(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, LoginResponse{Token: token, User: sess.User}, http.StatusOK)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req lendenpay.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		respondError(w, "full name, email and password are required", http.StatusBadRequest)
		return
	}
	if err := session.ValidateEmail(req.Email); err != nil {
		respondError(w, "Please enter a valid email", http.StatusBadRequest)
		return
	}

	user, err := h.gateway.Register(r.Context(), req)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	respondJSON(w, user, http.StatusCreated)
}

// ForgotPassword handles POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := session.ValidateEmail(req.Email); err != nil {
		respondError(w, "Please enter a valid email", http.StatusBadRequest)
		return
	}

	if err := h.gateway.ForgotPassword(r.Context(), req.Email); err != nil {
		respondUpstreamError(w, err)
		return
	}

	respondJSON(w, map[string]string{"message": "password reset email sent"}, http.StatusOK)
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Token == "" || req.Password == "" {
		respondError(w, "token and password are required", http.StatusBadRequest)
		return
	}

	if err := h.gateway.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondUpstreamError(w, err)
		return
	}

	respondJSON(w, map[string]string{"message": "password updated"}, http.StatusOK)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if ok {
		if err := h.sessions.Logout(r.Context(), sess.ID); err != nil {
			respondError(w, "failed to end session", http.StatusInternalServerError)
			return
		}
	}

	h.clearSessionCookie(w)
	respondJSON(w, map[string]string{"message": "logged out"}, http.StatusOK)
}

// Profile handles GET /auth/profile
// Returns the current user, refreshed from the upstream profile endpoint.
// If the refresh fails the stored copy is returned instead.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if refreshed, err := h.sessions.Refresh(r.Context(), sess.ID); err == nil {
		sess = refreshed
	} else {
		h.logger.WithContext(r.Context()).Warn("profile refresh failed, serving stored snapshot",
			"session_id", sess.ID, "error", err)
	}

	respondJSON(w, sess.User, http.StatusOK)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

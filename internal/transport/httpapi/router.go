package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lendenpay/portal/internal/transport/httpapi/handler"
	"github.com/lendenpay/portal/internal/transport/httpapi/middleware"
	"github.com/lendenpay/portal/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger             *logger.Logger
	AllowedOrigins     []string
	AuthHandler        *handler.AuthHandler
	PaymentHandler     *handler.PaymentHandler
	TransactionHandler *handler.TransactionHandler
	UserHandler        *handler.UserHandler
	AgentHandler       *handler.AgentHandler
	UploadHandler      *handler.UploadHandler
	AlertHandler       *handler.AlertHandler
	HealthHandler      *handler.HealthHandler
	AuthMiddleware     func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit()) // Rate limiting: 100 req/s with burst of 20

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public - no authentication required)
		if cfg.AuthHandler != nil {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/forgot-password", cfg.AuthHandler.ForgotPassword)
			r.Post("/auth/reset-password", cfg.AuthHandler.ResetPassword)
		}

		// Public agent payment surface (no authentication required)
		if cfg.AgentHandler != nil {
			r.Route("/agents/{agentID}", func(r chi.Router) {
				r.Get("/", cfg.AgentHandler.GetInfo)
				r.Get("/methods", cfg.AgentHandler.ListMethods)
				r.Get("/types", cfg.AgentHandler.ListTypes)
				r.Get("/details/{typeID}", cfg.AgentHandler.ListDetails)
				r.Post("/flow", cfg.AgentHandler.StartFlow)
			})
			r.Route("/flows/{flowID}", func(r chi.Router) {
				r.Get("/", cfg.AgentHandler.GetFlow)
				r.Post("/method", cfg.AgentHandler.SelectMethod)
				r.Post("/type", cfg.AgentHandler.SelectType)
				r.Post("/detail", cfg.AgentHandler.SelectDetail)
				r.Post("/submit", cfg.AgentHandler.Submit)
			})
		}

		// Image uploads: authenticated admins, or the public payment
		// flow with paymentType=direct (customers uploading receipts).
		if cfg.UploadHandler != nil && cfg.AuthMiddleware != nil {
			r.With(middleware.PaymentGate(cfg.AuthMiddleware)).
				Post("/images/upload", cfg.UploadHandler.Upload)
		}

		// Protected routes (require a live portal session)
		if cfg.AuthMiddleware != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthMiddleware)

				if cfg.AuthHandler != nil {
					r.Post("/auth/logout", cfg.AuthHandler.Logout)
					r.Get("/auth/profile", cfg.AuthHandler.Profile)
				}

				if cfg.AlertHandler != nil {
					r.Get("/alerts/current", cfg.AlertHandler.Current)
					r.Post("/alerts/dismiss", cfg.AlertHandler.Dismiss)
				}

				// Payment configuration
				if cfg.PaymentHandler != nil {
					r.Route("/payment", func(r chi.Router) {
						r.Get("/methods", cfg.PaymentHandler.ListMethods)
						r.Post("/methods", cfg.PaymentHandler.CreateMethod)
						r.Get("/methods/{id}", cfg.PaymentHandler.GetMethod)
						r.Post("/methods/{id}", cfg.PaymentHandler.UpdateMethod)

						r.Get("/types", cfg.PaymentHandler.ListTypes)
						r.Post("/types", cfg.PaymentHandler.CreateType)
						r.Get("/types/{id}", cfg.PaymentHandler.GetType)
						r.Post("/types/{id}", cfg.PaymentHandler.UpdateType)
						r.Post("/types/delete/{id}", cfg.PaymentHandler.DeleteType)

						r.Get("/details/{typeID}", cfg.PaymentHandler.GetDetails)

						r.Post("/accounts", cfg.PaymentHandler.CreateAccount)
						r.Post("/accounts/{id}", cfg.PaymentHandler.UpdateAccount)
					})
				}

				// Transactions, settlement and invoices
				if cfg.TransactionHandler != nil {
					r.Get("/transactions", cfg.TransactionHandler.List)
					r.Post("/transactions/{id}/status", cfg.TransactionHandler.UpdateStatus)
					r.Post("/charges/settle", cfg.TransactionHandler.Settle)
					r.Post("/charges/invoice", cfg.TransactionHandler.Invoice)
				}

				// User management
				if cfg.UserHandler != nil {
					r.Get("/users", cfg.UserHandler.List)
					r.Post("/users/{id}", cfg.UserHandler.Update)
				}
			})
		}
	})

	return r
}

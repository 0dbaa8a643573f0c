package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
	infraRedis "github.com/lendenpay/portal/internal/infra/redis"
	"github.com/lendenpay/portal/internal/module/agentflow"
	"github.com/lendenpay/portal/internal/module/settlement"
	"github.com/lendenpay/portal/internal/platform/alert"
	"github.com/lendenpay/portal/internal/platform/querycache"
	"github.com/lendenpay/portal/internal/platform/session"
	"github.com/lendenpay/portal/internal/transport/httpapi"
	"github.com/lendenpay/portal/internal/transport/httpapi/handler"
	"github.com/lendenpay/portal/internal/transport/httpapi/middleware"
	"github.com/lendenpay/portal/pkg/config"
	"github.com/lendenpay/portal/pkg/logger"
)

// redisPinger adapts the go-redis client to the readiness probe.
type redisPinger struct {
	client *redis.Client
}

func (p *redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting LendenPay portal server",
		"env", cfg.Env,
		"port", cfg.Port,
		"upstream", cfg.UpstreamBaseURL,
	)

	// Initialize Redis client (sessions, query cache, flows, alerts)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	// Test Redis connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Redis connection established")

	// Upstream API client
	upstream := lendenpay.NewClient(cfg.UpstreamBaseURL, log)

	// Redis-backed state stores
	sessionStore := infraRedis.NewSessionStore(redisClient)
	flowStore := infraRedis.NewFlowStore(redisClient)
	alertStore := infraRedis.NewAlertStore(redisClient)
	cacheBackend := infraRedis.NewCacheBackend(redisClient)

	// Services
	queryCache := querycache.New(cacheBackend, log)
	sessionSvc := session.NewService(sessionStore, upstream, cfg.SessionTTL, log)
	alertSvc := alert.NewService(alertStore, log)
	flowSvc := agentflow.NewService(flowStore, upstream, log)
	settlementSvc := settlement.NewService(upstream, log)
	jwtSvc := middleware.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)
	log.Info("Services initialized")

	// HTTP handlers
	authHandler := handler.NewAuthHandler(sessionSvc, upstream, jwtSvc, cfg.SessionTTL, cfg.IsProduction(), log)
	paymentHandler := handler.NewPaymentHandler(upstream, queryCache, alertSvc)
	transactionHandler := handler.NewTransactionHandler(upstream, settlementSvc, queryCache, alertSvc)
	userHandler := handler.NewUserHandler(upstream, queryCache, alertSvc)
	agentHandler := handler.NewAgentHandler(upstream, flowSvc, queryCache)
	uploadHandler := handler.NewUploadHandler(upstream, cfg.MaxUploadBytes)
	alertHandler := handler.NewAlertHandler(alertSvc)
	healthHandler := handler.NewHealthHandler(&redisPinger{client: redisClient})

	// Auth middleware backed by the session store
	authMiddleware := middleware.Auth(jwtSvc, sessionSvc)

	// Determine allowed origins for CORS
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:5174"}
	if cfg.IsProduction() {
		// In production, read from environment variable
		if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
			allowedOrigins = []string{origins}
		}
	}

	// Create HTTP router
	routerCfg := httpapi.Config{
		Logger:             log,
		AllowedOrigins:     allowedOrigins,
		AuthHandler:        authHandler,
		PaymentHandler:     paymentHandler,
		TransactionHandler: transactionHandler,
		UserHandler:        userHandler,
		AgentHandler:       agentHandler,
		UploadHandler:      uploadHandler,
		AlertHandler:       alertHandler,
		HealthHandler:      healthHandler,
		AuthMiddleware:     authMiddleware,
	}
	r := httpapi.NewRouter(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}

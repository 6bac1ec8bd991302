package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/larsvasseldonk/calmly-list/internal/domain"
	"github.com/larsvasseldonk/calmly-list/internal/handler"
	"github.com/larsvasseldonk/calmly-list/internal/infrastructure/logger"
	"github.com/larsvasseldonk/calmly-list/internal/infrastructure/redis"
	"github.com/larsvasseldonk/calmly-list/internal/observability/metrics"
	"github.com/larsvasseldonk/calmly-list/internal/observability/tracing"
	"github.com/larsvasseldonk/calmly-list/internal/repository"
	"github.com/larsvasseldonk/calmly-list/internal/security/audit"
	"github.com/larsvasseldonk/calmly-list/internal/security/auth"
	"github.com/larsvasseldonk/calmly-list/internal/security/middleware"
	"github.com/larsvasseldonk/calmly-list/internal/security/ratelimit"
	"github.com/larsvasseldonk/calmly-list/internal/service"
	"github.com/larsvasseldonk/calmly-list/pkg/config"
	"github.com/larsvasseldonk/calmly-list/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting Calmly List server",
		slog.String("environment", cfg.Environment),
		slog.String("store", cfg.StoreBackend),
		slog.Bool("auth", cfg.AuthEnabled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "calmly-list", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize the selected store backend
	var (
		todoRepo domain.TodoRepository
		userRepo domain.UserRepository
		pinger   handler.Pinger
	)
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := database.NewConnectionPool(ctx, &database.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Database: cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		}, log)
		if err != nil {
			log.Error("failed to connect to postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.EnsureSchema(ctx); err != nil {
			log.Error("failed to ensure schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
		todoRepo = repository.NewPostgresTodoRepository(pool.GetDB(), log)
		userRepo = repository.NewPostgresUserRepository(pool.GetDB(), log)
		pinger = pool
	case config.StoreRedis:
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		todoRepo = repository.NewRedisTodoRepository(redisClient, log)
		userRepo = repository.NewRedisUserRepository(redisClient, log)
		pinger = redisClient
	default:
		todoRepo = repository.NewMemoryTodoRepository()
		userRepo = repository.NewMemoryUserRepository()
	}

	// 5. Initialize services
	todoService := service.NewTodoService(todoRepo, log)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "calmly-list", cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, tokenManager, log)

	// 6. Initialize handlers
	todoHandler := handler.NewTodoHandler(todoService, log, cfg.StoreBackend)
	authHandler := handler.NewAuthHandler(authService, log)
	healthHandler := handler.NewHealthHandler(pinger, log)

	// 7. Initialize security components
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 8. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /todos", todoHandler.List)
	mux.HandleFunc("POST /todos", todoHandler.Create)
	mux.HandleFunc("PATCH /todos/{id}", todoHandler.Update)
	mux.HandleFunc("DELETE /todos/completed", todoHandler.DeleteCompleted)
	mux.HandleFunc("DELETE /todos/{id}", todoHandler.Delete)
	if cfg.AuthEnabled {
		mux.HandleFunc("POST /register", authHandler.Register)
		mux.HandleFunc("POST /login", authHandler.Login)
	}
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> validation -> JWT -> rate limit -> audit
	var protected http.Handler = handlerWithCORS
	protected = middleware.AuditMiddleware(auditLogger)(protected)
	protected = middleware.RateLimitMiddleware(rateLimiter, log)(protected)
	if cfg.AuthEnabled {
		protected = middleware.JWTMiddleware(tokenManager, log)(protected)
	}
	protected = middleware.ValidateJSONContentType(log)(protected)
	protected = metrics.HTTPMetricsMiddleware(protected)
	rootHandler := otelhttp.NewHandler(withRequestID(protected, log), "http.server")

	// 9. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("store", cfg.StoreBackend),
		slog.Bool("auth", cfg.AuthEnabled),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), audit.RequestIDContextKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}

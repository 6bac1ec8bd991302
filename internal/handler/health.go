package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger checks connectivity to a backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness endpoints
type HealthHandler struct {
	store  Pinger // nil for the in-memory backend
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz - simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz - returns 200 only when the configured store
// answers a ping. The in-memory backend is always ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if h.store == nil {
		checks["store"] = "in-memory"
		writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Checks: checks})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("store not ready", slog.String("error", err.Error()))
		checks["store"] = "error: " + err.Error()
		writeJSON(w, http.StatusServiceUnavailable, ReadinessResponse{Status: "not ready", Checks: checks})
		return
	}

	checks["store"] = "ok"
	writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Checks: checks})
}

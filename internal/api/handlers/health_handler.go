package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/habmon/habmon/internal/apperr"
)

// Pinger reports whether the database is usable.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a handler. A nil db makes readiness always pass.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, logger: logger}
}

// Liveness reports that the process is serving.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness responds 503 when the database health check fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn("readiness check failed", "error", err)
			writeError(w, r, h.logger, apperr.Wrap(err, apperr.CodeUnavailable, "database unavailable"))
			return
		}
	}
	writeData(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

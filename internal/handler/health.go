package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"coursehub/internal/httputil"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	db       Pinger
	renderer string
	store    string
	logger   *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, renderer, store string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, renderer: renderer, store: store, logger: logger}
}

// HealthCheck returns 200 when the database answers, 503 otherwise
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health check: database unreachable", "error", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	httputil.RespondJSON(w, code, map[string]string{
		"status":   status,
		"renderer": h.renderer,
		"storage":  h.store,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

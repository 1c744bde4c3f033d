package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyu460659-glitch/paoTuanGame/internal/services"
)

type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Components map[string]interface{} `json:"components"`
}

type HealthHandler struct {
	cache    services.Pinger // nil when Redis is not configured
	sessions func() int
	logger   *slog.Logger
}

func NewHealthHandler(cache services.Pinger, sessions func() int, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		cache:    cache,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]interface{})
	overallStatus := "healthy"

	if h.cache == nil {
		components["cache"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		h.logger.Warn("Cache health check failed", "error", err)
		components["cache"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["cache"] = "healthy"
	}
	if h.sessions != nil {
		components["sessions"] = h.sessions()
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "paotuan-game",
		Components: components,
	})
}

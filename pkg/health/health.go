package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/saaga0h/daybreak/pkg/mqtt"
)

// Pinger is the probe surface shared by the Redis and Postgres clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker provides health check functionality for agents. Only the
// dependencies an agent actually holds are probed; nil clients are
// left out of the report entirely.
type Checker struct {
	mqtt     mqtt.Client
	redis    Pinger
	postgres Pinger
	logger   *slog.Logger
}

// NewChecker creates a new health checker with the given dependencies.
// redisClient and pgClient may be nil for agents without that backend.
func NewChecker(mqttClient mqtt.Client, redisClient, pgClient Pinger, logger *slog.Logger) *Checker {
	return &Checker{
		mqtt:     mqttClient,
		redis:    redisClient,
		postgres: pgClient,
		logger:   logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp string    `json:"timestamp"`
	Services  *Services `json:"services,omitempty"`
}

// Services represents the status of external dependencies. Backends
// the agent does not use are omitted.
type Services struct {
	MQTT     string `json:"mqtt"`
	Redis    string `json:"redis,omitempty"`
	Postgres string `json:"postgres,omitempty"`
}

// HandlerFunc returns an HTTP handler function for health checks.
// Returns 200 if the process is alive without checking dependencies,
// keeping the endpoint fast for orchestrator probes.
func (h *Checker) HandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode health response", "error", err)
		}
	}
}

// DetailedHandlerFunc returns a handler that checks the agent's
// configured dependencies
func (h *Checker) DetailedHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := &Services{}
		degraded := false

		if h.mqtt != nil && h.mqtt.IsConnected() {
			services.MQTT = "connected"
		} else {
			services.MQTT = "disconnected"
			degraded = true
		}

		if h.redis != nil {
			services.Redis = h.probe(r.Context(), h.redis)
			degraded = degraded || services.Redis == "disconnected"
		}

		if h.postgres != nil {
			services.Postgres = h.probe(r.Context(), h.postgres)
			degraded = degraded || services.Postgres == "disconnected"
		}

		status := "healthy"
		statusCode := http.StatusOK
		if degraded {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Services:  services,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode health response", "error", err)
		}
	}
}

func (h *Checker) probe(ctx context.Context, p Pinger) string {
	pctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := p.Ping(pctx); err != nil {
		return "disconnected"
	}
	return "connected"
}

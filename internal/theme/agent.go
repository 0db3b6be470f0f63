package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/saaga0h/daybreak/internal/geo"
	"github.com/saaga0h/daybreak/pkg/config"
	"github.com/saaga0h/daybreak/pkg/mqtt"
	"github.com/saaga0h/daybreak/pkg/redis"
)

// Agent wires the theme controller to the platform: MQTT command and UI
// event topics in, retained theme state out, persisted state in Redis,
// one-shot geolocation at startup.
type Agent struct {
	mqtt        mqtt.Client
	redis       redis.Client
	geo         geo.Provider
	cfg         *config.Config
	logger      *slog.Logger
	controller  *Controller
	refresh     func()
	stopRefresh func()
}

// NewAgent creates a new theme agent
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, geoProvider geo.Provider, cfg *config.Config, logger *slog.Logger) *Agent {
	clock := SystemClock()
	controller := NewController(
		clock,
		NewTimerScheduler(clock),
		NewRedisStore(redisClient),
		NewMQTTApplier(mqttClient, cfg, logger),
		cfg,
		logger,
	)

	refresh, stopRefresh := Debounce(cfg.Debounce(), controller.Refresh)

	return &Agent{
		mqtt:        mqttClient,
		redis:       redisClient,
		geo:         geoProvider,
		cfg:         cfg,
		logger:      logger,
		controller:  controller,
		refresh:     refresh,
		stopRefresh: stopRefresh,
	}
}

// Controller exposes the underlying controller for diagnostics
func (a *Agent) Controller() *Controller {
	return a.controller
}

// Start starts the theme agent and begins processing
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting theme agent",
		"service_name", a.cfg.ServiceName,
		"fallback_day_hour", a.cfg.FallbackDayHour,
		"fallback_night_hour", a.cfg.FallbackNightHour,
		"debounce_ms", a.cfg.DebounceMs)

	// Connect to MQTT broker
	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	// Redis is best-effort: without it the engine runs on in-memory
	// defaults, so a failed ping is not fatal.
	if err := a.redis.Ping(ctx); err != nil {
		a.logger.Warn("Redis unavailable, theme state will not persist", "error", err)
	}

	// Subscribe to mode commands
	if err := a.mqtt.Subscribe(mqtt.TopicThemeSet, 0, a.handleSetMode); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", mqtt.TopicThemeSet, err)
	}
	if err := a.mqtt.Subscribe(mqtt.TopicThemeToggle, 0, a.handleToggle); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", mqtt.TopicThemeToggle, err)
	}

	// Subscribe to UI events (visibility, focus, resize)
	if err := a.mqtt.Subscribe(mqtt.TopicUIEvents, 0, a.handleUIEvent); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", mqtt.TopicUIEvents, err)
	}

	// Restore persisted mode and apply an initial decision immediately.
	// Geolocation has not resolved yet, so the first decision uses the
	// fixed-hour fallback rather than waiting on the fix.
	a.controller.Restore(ctx)
	a.controller.Refresh()

	go a.locate(ctx)

	a.logger.Info("Theme agent started and ready", "mode", a.controller.Mode())

	// Block until context is cancelled
	<-ctx.Done()
	a.logger.Info("Theme agent stopping")

	return nil
}

// Stop gracefully stops the theme agent
func (a *Agent) Stop() error {
	a.logger.Info("Stopping theme agent")

	a.stopRefresh()
	a.controller.Shutdown()
	a.mqtt.Disconnect()

	if err := a.redis.Close(); err != nil {
		a.logger.Error("Error closing Redis connection", "error", err)
		return err
	}

	a.logger.Info("Theme agent stopped")
	return nil
}

// locate issues the one-shot geolocation request with a bounded timeout
// and feeds the result into the controller. Failure of any kind leaves
// the fixed-hour fallback governing.
func (a *Agent) locate(ctx context.Context) {
	lctx, cancel := context.WithTimeout(ctx, a.cfg.GeoTimeout())
	defer cancel()

	pos, err := a.geo.Locate(lctx)
	if err != nil {
		a.controller.LocationFailed(err)
		return
	}

	a.controller.SetLocation(pos.Latitude, pos.Longitude)
}

// handleSetMode handles incoming mode commands
func (a *Agent) handleSetMode(msg mqtt.Message) {
	var cmd struct {
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		a.logger.Warn("Invalid mode command payload", "error", err)
		return
	}

	mode := Mode(cmd.Mode)
	if !mode.Valid() {
		a.logger.Warn("Unknown theme mode in command", "mode", cmd.Mode)
		return
	}

	a.logger.Info("Mode command received", "mode", mode)
	a.controller.SetMode(mode)
}

// handleToggle handles incoming toggle commands
func (a *Agent) handleToggle(msg mqtt.Message) {
	a.logger.Info("Toggle command received")
	a.controller.Toggle()
}

// handleUIEvent handles visibility/focus/resize events from UI
// collaborators. Bursts are coalesced by the debounce into a single
// recomputation.
func (a *Agent) handleUIEvent(msg mqtt.Message) {
	a.logger.Debug("UI event received", "topic", msg.Topic())
	a.refresh()
}

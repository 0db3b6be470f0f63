package theme

import (
	"log/slog"
	"time"

	"github.com/saaga0h/daybreak/internal/solar"
	"github.com/saaga0h/daybreak/pkg/config"
	"github.com/saaga0h/daybreak/pkg/mqtt"
)

// State is the applied theme state published to UI collaborators. The
// retained copy on the state topic is what a freshly loaded board reads
// before its own first recomputation.
type State struct {
	Theme     string          `json:"theme"` // "day" or "night"
	IsNight   bool            `json:"is_night"`
	Mode      Mode            `json:"mode"`
	Daylight  *solar.Daylight `json:"daylight,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// animationEvent is the one-shot indicator animation trigger. Purely
// cosmetic; nothing reads it back.
type animationEvent struct {
	Indicator string `json:"indicator"` // "sun" or "moon"
	Active    bool   `json:"active"`
	Timestamp string `json:"timestamp"`
}

// Applier renders a theme decision to the outside world. Apply must be
// idempotent: applying the same state twice leaves the same observable
// result as applying it once.
type Applier interface {
	Apply(state State)
}

// mqttApplier publishes the theme state retained on the state topic and
// fires the indicator enter-animation event.
type mqttApplier struct {
	mqtt      mqtt.Client
	cfg       *config.Config
	logger    *slog.Logger
	animTimer *time.Timer
}

// NewMQTTApplier creates the MQTT-backed theme applier
func NewMQTTApplier(mqttClient mqtt.Client, cfg *config.Config, logger *slog.Logger) Applier {
	return &mqttApplier{
		mqtt:   mqttClient,
		cfg:    cfg,
		logger: logger,
	}
}

func (a *mqttApplier) Apply(state State) {
	if err := a.mqtt.PublishJSON(mqtt.TopicThemeState, 0, true, state); err != nil {
		a.logger.Warn("Failed to publish theme state", "error", err)
	}

	indicator := "sun"
	if state.IsNight {
		indicator = "moon"
	}

	if err := a.mqtt.PublishJSON(mqtt.TopicThemeAnimation, 0, false, animationEvent{
		Indicator: indicator,
		Active:    true,
		Timestamp: state.Timestamp,
	}); err != nil {
		a.logger.Warn("Failed to publish animation event", "error", err)
	}

	// One-shot: clear the animation after the configured duration. A new
	// apply cancels the previous clear so only one is ever outstanding.
	if a.animTimer != nil {
		a.animTimer.Stop()
	}
	a.animTimer = time.AfterFunc(a.cfg.AnimationDuration(), func() {
		if err := a.mqtt.PublishJSON(mqtt.TopicThemeAnimation, 0, false, animationEvent{
			Indicator: indicator,
			Active:    false,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		}); err != nil {
			a.logger.Warn("Failed to publish animation clear event", "error", err)
		}
	})
}

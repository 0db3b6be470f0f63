package theme

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/saaga0h/daybreak/pkg/config"
	"github.com/saaga0h/daybreak/pkg/mqtt"
)

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// fakeMQTT records published messages for applier tests
type fakeMQTT struct {
	mu       sync.Mutex
	messages []published
}

func (f *fakeMQTT) Connect(ctx context.Context) error { return nil }
func (f *fakeMQTT) Disconnect()                       {}
func (f *fakeMQTT) IsConnected() bool                 { return true }

func (f *fakeMQTT) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	return nil
}

func (f *fakeMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic: topic, retained: retained, payload: payload})
	return nil
}

func (f *fakeMQTT) PublishJSON(topic string, qos byte, retained bool, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return f.Publish(topic, qos, retained, data)
}

func (f *fakeMQTT) onTopic(topic string) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, m := range f.messages {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func TestMQTTApplier_PublishesRetainedState(t *testing.T) {
	broker := &fakeMQTT{}
	cfg := config.NewConfig()
	applier := NewMQTTApplier(broker, cfg, testLogger())

	applier.Apply(State{
		Theme:     "night",
		IsNight:   true,
		Mode:      ModeAuto,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})

	states := broker.onTopic(mqtt.TopicThemeState)
	if len(states) != 1 {
		t.Fatalf("expected 1 state message, got %d", len(states))
	}
	if !states[0].retained {
		t.Error("state message must be retained for late joiners")
	}

	var state State
	if err := json.Unmarshal(states[0].payload, &state); err != nil {
		t.Fatalf("state payload not valid JSON: %v", err)
	}
	if state.Theme != "night" || !state.IsNight || state.Mode != ModeAuto {
		t.Errorf("unexpected state payload: %+v", state)
	}
}

func TestMQTTApplier_AnimationOneShot(t *testing.T) {
	broker := &fakeMQTT{}
	cfg := config.NewConfig()
	cfg.AnimationMs = 20
	applier := NewMQTTApplier(broker, cfg, testLogger())

	applier.Apply(State{Theme: "day", IsNight: false, Mode: ModeDay})

	anims := broker.onTopic(mqtt.TopicThemeAnimation)
	if len(anims) != 1 {
		t.Fatalf("expected 1 immediate animation message, got %d", len(anims))
	}
	if anims[0].retained {
		t.Error("animation messages must not be retained")
	}

	var start struct {
		Indicator string `json:"indicator"`
		Active    bool   `json:"active"`
	}
	if err := json.Unmarshal(anims[0].payload, &start); err != nil {
		t.Fatalf("animation payload not valid JSON: %v", err)
	}
	if start.Indicator != "sun" || !start.Active {
		t.Errorf("expected active sun indicator, got %+v", start)
	}

	// The clear event arrives after the animation duration
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(broker.onTopic(mqtt.TopicThemeAnimation)) >= 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	anims = broker.onTopic(mqtt.TopicThemeAnimation)
	if len(anims) != 2 {
		t.Fatalf("expected animation clear message, got %d messages", len(anims))
	}
	var clear struct {
		Indicator string `json:"indicator"`
		Active    bool   `json:"active"`
	}
	if err := json.Unmarshal(anims[1].payload, &clear); err != nil {
		t.Fatalf("clear payload not valid JSON: %v", err)
	}
	if clear.Indicator != "sun" || clear.Active {
		t.Errorf("expected inactive sun indicator, got %+v", clear)
	}
}

func TestMQTTApplier_MoonIndicatorForNight(t *testing.T) {
	broker := &fakeMQTT{}
	applier := NewMQTTApplier(broker, config.NewConfig(), testLogger())

	applier.Apply(State{Theme: "night", IsNight: true, Mode: ModeNight})

	anims := broker.onTopic(mqtt.TopicThemeAnimation)
	if len(anims) == 0 {
		t.Fatal("expected an animation message")
	}
	var evt struct {
		Indicator string `json:"indicator"`
	}
	if err := json.Unmarshal(anims[0].payload, &evt); err != nil {
		t.Fatalf("animation payload not valid JSON: %v", err)
	}
	if evt.Indicator != "moon" {
		t.Errorf("expected moon indicator for night, got %q", evt.Indicator)
	}
}

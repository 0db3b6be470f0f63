package tasks

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/saaga0h/daybreak/pkg/config"
	"github.com/saaga0h/daybreak/pkg/mqtt"
)

type published struct {
	topic    string
	retained bool
	payload  []byte
}

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

func (f *fakeMQTT) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.messages...)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }
func (m *fakeMessage) Ack()            {}

func newTestAgent() (*Agent, *fakeMQTT) {
	broker := &fakeMQTT{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	// Validation failures never reach storage, so no database is wired
	return NewAgent(broker, nil, config.NewConfig(), logger), broker
}

func TestHandleRequest_InvalidTopicIgnored(t *testing.T) {
	agent, broker := newTestAgent()

	agent.handleRequest(&fakeMessage{
		topic:   "taskboard/tasks/request/create/extra",
		payload: []byte(`{"request_id": "r1", "title": "x"}`),
	})

	if len(broker.all()) != 0 {
		t.Error("malformed topic must not produce a response")
	}
}

func TestHandleRequest_MalformedPayloadIgnored(t *testing.T) {
	agent, broker := newTestAgent()

	agent.handleRequest(&fakeMessage{
		topic:   mqtt.TaskRequestTopic("create"),
		payload: []byte("not json"),
	})

	if len(broker.all()) != 0 {
		t.Error("malformed payload must not produce a response")
	}
}

func TestHandleRequest_MissingRequestIDIgnored(t *testing.T) {
	agent, broker := newTestAgent()

	agent.handleRequest(&fakeMessage{
		topic:   mqtt.TaskRequestTopic("create"),
		payload: []byte(`{"title": "x"}`),
	})

	if len(broker.all()) != 0 {
		t.Error("request without request_id must not produce a response")
	}
}

func TestHandleRequest_ValidationErrorsCorrelated(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		payload   string
	}{
		{"create without title", "create", `{"request_id": "r1"}`},
		{"get with bad id", "get", `{"request_id": "r1", "task_id": "nope"}`},
		{"list with bad filter", "list", `{"request_id": "r1", "filter": "stale"}`},
		{"update with bad id", "update", `{"request_id": "r1", "task_id": "nope"}`},
		{"move without position", "move", `{"request_id": "r1", "task_id": "4b4e68ac-0a36-4a63-9292-caa6b4b8a954"}`},
		{"unknown operation", "archive", `{"request_id": "r1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent, broker := newTestAgent()

			agent.handleRequest(&fakeMessage{
				topic:   mqtt.TaskRequestTopic(tt.operation),
				payload: []byte(tt.payload),
			})

			msgs := broker.all()
			if len(msgs) != 1 {
				t.Fatalf("expected exactly 1 response, got %d", len(msgs))
			}
			if msgs[0].topic != mqtt.TaskResponseTopic("r1") {
				t.Errorf("response topic = %q, want %q", msgs[0].topic, mqtt.TaskResponseTopic("r1"))
			}

			var resp response
			if err := json.Unmarshal(msgs[0].payload, &resp); err != nil {
				t.Fatalf("response not valid JSON: %v", err)
			}
			if resp.OK {
				t.Error("expected a failed response")
			}
			if resp.RequestID != "r1" {
				t.Errorf("response request_id = %q, want %q", resp.RequestID, "r1")
			}
			if resp.Error == "" {
				t.Error("failed response must carry an error message")
			}
		})
	}
}

func TestHandleRequest_FailedMutationPublishesNoChangeNotice(t *testing.T) {
	agent, broker := newTestAgent()

	agent.handleRequest(&fakeMessage{
		topic:   mqtt.TaskRequestTopic("create"),
		payload: []byte(`{"request_id": "r1"}`),
	})

	for _, m := range broker.all() {
		if m.topic == mqtt.TopicTasksChanged {
			t.Error("failed operation must not publish a change notice")
		}
	}
}

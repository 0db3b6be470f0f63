package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/saaga0h/daybreak/pkg/mqtt"
	"github.com/saaga0h/daybreak/pkg/redis"
)

type stubMQTT struct {
	connected bool
}

func (s *stubMQTT) Connect(ctx context.Context) error                                   { return nil }
func (s *stubMQTT) Disconnect()                                                         {}
func (s *stubMQTT) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error { return nil }
func (s *stubMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error { return nil }
func (s *stubMQTT) PublishJSON(topic string, qos byte, retained bool, v interface{}) error {
	return nil
}
func (s *stubMQTT) IsConnected() bool { return s.connected }

type stubRedis struct {
	pingErr error
}

func (s *stubRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (s *stubRedis) Get(ctx context.Context, key string) (string, error) {
	return "", redis.ErrNotFound
}
func (s *stubRedis) Del(ctx context.Context, keys ...string) error { return nil }
func (s *stubRedis) Ping(ctx context.Context) error                { return s.pingErr }
func (s *stubRedis) Close() error                                  { return nil }

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error { return s.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHandlerFunc_AlwaysOK(t *testing.T) {
	checker := NewChecker(&stubMQTT{connected: false}, &stubRedis{pingErr: errors.New("down")}, nil, testLogger())

	rec := httptest.NewRecorder()
	checker.HandlerFunc()(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Errorf("liveness probe status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestDetailedHandlerFunc(t *testing.T) {
	tests := []struct {
		name       string
		mqtt       *stubMQTT
		redis      Pinger
		postgres   Pinger
		wantCode   int
		wantStatus string
	}{
		{"all connected", &stubMQTT{connected: true}, &stubRedis{}, nil, 200, "healthy"},
		{"mqtt down", &stubMQTT{connected: false}, &stubRedis{}, nil, 503, "degraded"},
		{"redis down", &stubMQTT{connected: true}, &stubRedis{pingErr: errors.New("down")}, nil, 503, "degraded"},
		{"postgres down", &stubMQTT{connected: true}, nil, &stubPinger{err: errors.New("down")}, 503, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(tt.mqtt, tt.redis, tt.postgres, testLogger())

			rec := httptest.NewRecorder()
			checker.DetailedHandlerFunc()(rec, httptest.NewRequest("GET", "/health/detailed", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}

			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response not valid JSON: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
		})
	}
}

// A checker built the way the task agent builds it, with no Redis
// backend, must report healthy when MQTT and Postgres are up.
func TestDetailedHandlerFunc_SkipsAbsentBackends(t *testing.T) {
	checker := NewChecker(&stubMQTT{connected: true}, nil, &stubPinger{}, testLogger())

	rec := httptest.NewRecorder()
	checker.DetailedHandlerFunc()(rec, httptest.NewRequest("GET", "/health/detailed", nil))

	if rec.Code != 200 {
		t.Errorf("status code = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Services == nil {
		t.Fatal("services missing from detailed response")
	}
	if resp.Services.Redis != "" {
		t.Errorf("absent redis backend must be omitted, got %q", resp.Services.Redis)
	}
	if resp.Services.Postgres != "connected" {
		t.Errorf("postgres = %q, want connected", resp.Services.Postgres)
	}
}

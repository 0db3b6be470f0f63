package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.MQTTBroker != "localhost" || cfg.MQTTPort != 1883 {
		t.Errorf("unexpected MQTT defaults: %s:%d", cfg.MQTTBroker, cfg.MQTTPort)
	}
	if cfg.RedisHost != "localhost" || cfg.RedisPort != 6379 {
		t.Errorf("unexpected Redis defaults: %s:%d", cfg.RedisHost, cfg.RedisPort)
	}
	if cfg.Latitude != 60.1695 || cfg.Longitude != 24.9354 {
		t.Errorf("unexpected coordinate defaults: %f, %f", cfg.Latitude, cfg.Longitude)
	}
	if cfg.FallbackDayHour != 6 || cfg.FallbackNightHour != 18 {
		t.Errorf("unexpected fallback hours: %d, %d", cfg.FallbackDayHour, cfg.FallbackNightHour)
	}
	if cfg.DebounceMs != 200 || cfg.AnimationMs != 700 {
		t.Errorf("unexpected durations: debounce=%d animation=%d", cfg.DebounceMs, cfg.AnimationMs)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
mqtt_broker: broker.example.com
mqtt_port: 8883
latitude: -33.8688
longitude: 151.2093
fallback_day_hour: 7
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.MQTTBroker != "broker.example.com" || cfg.MQTTPort != 8883 {
		t.Errorf("file values not applied: %s:%d", cfg.MQTTBroker, cfg.MQTTPort)
	}
	if cfg.Latitude != -33.8688 || cfg.Longitude != 151.2093 {
		t.Errorf("coordinates not applied: %f, %f", cfg.Latitude, cfg.Longitude)
	}
	if cfg.FallbackDayHour != 7 {
		t.Errorf("fallback day hour not applied: %d", cfg.FallbackDayHour)
	}
	// Untouched fields keep their defaults
	if cfg.RedisHost != "localhost" {
		t.Errorf("unset file values must keep defaults, got redis host %q", cfg.RedisHost)
	}
}

func TestLoadFromFile_MissingFileIsNotAnError(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.LoadFromFile("/nonexistent/config.yaml"); err != nil {
		t.Errorf("missing file must not be an error: %v", err)
	}
	if err := cfg.LoadFromFile(""); err != nil {
		t.Errorf("empty path must not be an error: %v", err)
	}
}

func TestLoadFromFile_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("mqtt_broker: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	if err := cfg.LoadFromFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DAYBREAK_MQTT_BROKER", "mqtt.internal")
	t.Setenv("DAYBREAK_MQTT_PORT", "1884")
	t.Setenv("DAYBREAK_LATITUDE", "51.5074")
	t.Setenv("DAYBREAK_LONGITUDE", "-0.1278")
	t.Setenv("DAYBREAK_GEO_ENDPOINT", "http://geo.internal/json")
	t.Setenv("DAYBREAK_DEBOUNCE_MS", "500")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	if cfg.MQTTBroker != "mqtt.internal" || cfg.MQTTPort != 1884 {
		t.Errorf("env values not applied: %s:%d", cfg.MQTTBroker, cfg.MQTTPort)
	}
	if cfg.Latitude != 51.5074 || cfg.Longitude != -0.1278 {
		t.Errorf("coordinates not applied: %f, %f", cfg.Latitude, cfg.Longitude)
	}
	if cfg.GeoEndpoint != "http://geo.internal/json" {
		t.Errorf("geo endpoint not applied: %q", cfg.GeoEndpoint)
	}
	if cfg.DebounceMs != 500 {
		t.Errorf("debounce not applied: %d", cfg.DebounceMs)
	}
}

func TestLoadFromEnv_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("DAYBREAK_MQTT_PORT", "not-a-number")
	t.Setenv("DAYBREAK_LATITUDE", "north")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	if cfg.MQTTPort != 1883 {
		t.Errorf("invalid port must keep default, got %d", cfg.MQTTPort)
	}
	if cfg.Latitude != 60.1695 {
		t.Errorf("invalid latitude must keep default, got %f", cfg.Latitude)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty broker", func(c *Config) { c.MQTTBroker = "" }, true},
		{"port too large", func(c *Config) { c.MQTTPort = 70000 }, true},
		{"latitude out of range", func(c *Config) { c.Latitude = 91 }, true},
		{"longitude out of range", func(c *Config) { c.Longitude = -181 }, true},
		{"day hour out of range", func(c *Config) { c.FallbackDayHour = 24 }, true},
		{"day not before night", func(c *Config) { c.FallbackDayHour = 18; c.FallbackNightHour = 18 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"edge coordinates", func(c *Config) { c.Latitude = -90; c.Longitude = 180 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddressHelpers(t *testing.T) {
	cfg := NewConfig()
	cfg.MQTTBroker = "broker"
	cfg.MQTTPort = 1883
	cfg.RedisHost = "cache"
	cfg.RedisPort = 6380

	if got := cfg.MQTTAddress(); got != "tcp://broker:1883" {
		t.Errorf("MQTTAddress = %q", got)
	}
	if got := cfg.RedisAddress(); got != "cache:6380" {
		t.Errorf("RedisAddress = %q", got)
	}

	conn := cfg.PostgresConnectionString()
	want := "host=localhost port=5432 user=daybreak password= dbname=daybreak sslmode=disable"
	if conn != want {
		t.Errorf("PostgresConnectionString = %q, want %q", conn, want)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := NewConfig()
	cfg.GeoTimeoutMs = 1500
	cfg.GeoCacheMs = 30000
	cfg.DebounceMs = 250
	cfg.AnimationMs = 400

	if cfg.GeoTimeout() != 1500*time.Millisecond {
		t.Errorf("GeoTimeout = %v", cfg.GeoTimeout())
	}
	if cfg.GeoCacheMaxAge() != 30*time.Second {
		t.Errorf("GeoCacheMaxAge = %v", cfg.GeoCacheMaxAge())
	}
	if cfg.Debounce() != 250*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Debounce())
	}
	if cfg.AnimationDuration() != 400*time.Millisecond {
		t.Errorf("AnimationDuration = %v", cfg.AnimationDuration())
	}
}

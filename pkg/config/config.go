package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for a Daybreak agent
type Config struct {
	// MQTT configuration
	MQTTBroker   string `yaml:"mqtt_broker"`
	MQTTPort     int    `yaml:"mqtt_port"`
	MQTTUser     string `yaml:"mqtt_user"`
	MQTTPassword string `yaml:"mqtt_password"`
	MQTTClientID string `yaml:"mqtt_client_id"`

	// Redis configuration
	RedisHost     string `yaml:"redis_host"`
	RedisPort     int    `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Postgres configuration (task agent)
	PostgresHost            string        `yaml:"postgres_host"`
	PostgresPort            int           `yaml:"postgres_port"`
	PostgresUser            string        `yaml:"postgres_user"`
	PostgresPassword        string        `yaml:"postgres_password"`
	PostgresDB              string        `yaml:"postgres_db"`
	PostgresSSLMode         string        `yaml:"postgres_sslmode"`
	PostgresMaxConnections  int           `yaml:"postgres_max_connections"`
	PostgresMaxIdleConns    int           `yaml:"postgres_max_idle_connections"`
	PostgresConnMaxLifetime time.Duration `yaml:"postgres_conn_max_lifetime"`

	// Service configuration
	ServiceName string `yaml:"service_name"`
	HealthPort  int    `yaml:"health_port"`
	LogLevel    string `yaml:"log_level"`

	// Theme agent configuration
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`
	GeoEndpoint  string  `yaml:"geo_endpoint"`
	GeoTimeoutMs int     `yaml:"geo_timeout_ms"`
	GeoCacheMs   int     `yaml:"geo_cache_ms"`

	// Fallback day/night boundary when no solar data is available
	FallbackDayHour   int `yaml:"fallback_day_hour"`
	FallbackNightHour int `yaml:"fallback_night_hour"`

	// Recompute debounce and indicator animation durations
	DebounceMs  int `yaml:"debounce_ms"`
	AnimationMs int `yaml:"animation_ms"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MQTTBroker:   "localhost",
		MQTTPort:     1883,
		MQTTUser:     "",
		MQTTPassword: "",
		MQTTClientID: "",

		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,

		PostgresHost:            "localhost",
		PostgresPort:            5432,
		PostgresUser:            "daybreak",
		PostgresPassword:        "",
		PostgresDB:              "daybreak",
		PostgresSSLMode:         "disable",
		PostgresMaxConnections:  10,
		PostgresMaxIdleConns:    2,
		PostgresConnMaxLifetime: 30 * time.Minute,

		ServiceName: "daybreak-agent",
		HealthPort:  8080,
		LogLevel:    "info",

		// Helsinki coordinates
		Latitude:     60.1695,
		Longitude:    24.9354,
		GeoEndpoint:  "",
		GeoTimeoutMs: 5000,
		GeoCacheMs:   60000,

		FallbackDayHour:   6,
		FallbackNightHour: 18,

		DebounceMs:  200,
		AnimationMs: 700,
	}
}

// LoadFromFile loads configuration from a YAML file. A missing file is not an
// error; the env and flag layers still apply on top of the defaults.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables with DAYBREAK_ prefix
func (c *Config) LoadFromEnv() {
	// MQTT configuration
	if v := os.Getenv("DAYBREAK_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("DAYBREAK_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("DAYBREAK_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("DAYBREAK_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("DAYBREAK_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}

	// Redis configuration
	if v := os.Getenv("DAYBREAK_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("DAYBREAK_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("DAYBREAK_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("DAYBREAK_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	// Postgres configuration
	if v := os.Getenv("DAYBREAK_POSTGRES_HOST"); v != "" {
		c.PostgresHost = v
	}
	if v := os.Getenv("DAYBREAK_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.PostgresPort = port
		}
	}
	if v := os.Getenv("DAYBREAK_POSTGRES_USER"); v != "" {
		c.PostgresUser = v
	}
	if v := os.Getenv("DAYBREAK_POSTGRES_PASSWORD"); v != "" {
		c.PostgresPassword = v
	}
	if v := os.Getenv("DAYBREAK_POSTGRES_DB"); v != "" {
		c.PostgresDB = v
	}
	if v := os.Getenv("DAYBREAK_POSTGRES_SSLMODE"); v != "" {
		c.PostgresSSLMode = v
	}

	// Service configuration
	if v := os.Getenv("DAYBREAK_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("DAYBREAK_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("DAYBREAK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	// Theme agent configuration
	if v := os.Getenv("DAYBREAK_LATITUDE"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Latitude = lat
		}
	}
	if v := os.Getenv("DAYBREAK_LONGITUDE"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Longitude = lon
		}
	}
	if v := os.Getenv("DAYBREAK_GEO_ENDPOINT"); v != "" {
		c.GeoEndpoint = v
	}
	if v := os.Getenv("DAYBREAK_GEO_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.GeoTimeoutMs = ms
		}
	}
	if v := os.Getenv("DAYBREAK_GEO_CACHE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.GeoCacheMs = ms
		}
	}
	if v := os.Getenv("DAYBREAK_FALLBACK_DAY_HOUR"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			c.FallbackDayHour = hour
		}
	}
	if v := os.Getenv("DAYBREAK_FALLBACK_NIGHT_HOUR"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			c.FallbackNightHour = hour
		}
	}
	if v := os.Getenv("DAYBREAK_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.DebounceMs = ms
		}
	}
	if v := os.Getenv("DAYBREAK_ANIMATION_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.AnimationMs = ms
		}
	}
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	// MQTT flags
	pflag.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	pflag.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	pflag.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	pflag.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	pflag.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Redis flags
	pflag.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	pflag.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	pflag.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	pflag.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Postgres flags
	pflag.StringVar(&c.PostgresHost, "postgres-host", c.PostgresHost, "Postgres hostname")
	pflag.IntVar(&c.PostgresPort, "postgres-port", c.PostgresPort, "Postgres port")
	pflag.StringVar(&c.PostgresUser, "postgres-user", c.PostgresUser, "Postgres username")
	pflag.StringVar(&c.PostgresPassword, "postgres-password", c.PostgresPassword, "Postgres password")
	pflag.StringVar(&c.PostgresDB, "postgres-db", c.PostgresDB, "Postgres database name")
	pflag.StringVar(&c.PostgresSSLMode, "postgres-sslmode", c.PostgresSSLMode, "Postgres SSL mode")

	// Service flags
	pflag.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	pflag.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Theme agent flags
	pflag.Float64Var(&c.Latitude, "latitude", c.Latitude, "Geographic latitude for sunrise/sunset calculation")
	pflag.Float64Var(&c.Longitude, "longitude", c.Longitude, "Geographic longitude for sunrise/sunset calculation")
	pflag.StringVar(&c.GeoEndpoint, "geo-endpoint", c.GeoEndpoint, "HTTP geolocation endpoint URL (empty = use configured coordinates)")
	pflag.IntVar(&c.GeoTimeoutMs, "geo-timeout-ms", c.GeoTimeoutMs, "Geolocation request timeout (ms)")
	pflag.IntVar(&c.GeoCacheMs, "geo-cache-ms", c.GeoCacheMs, "Geolocation result max cache age (ms)")
	pflag.IntVar(&c.FallbackDayHour, "fallback-day-hour", c.FallbackDayHour, "Hour day starts when no solar data is available")
	pflag.IntVar(&c.FallbackNightHour, "fallback-night-hour", c.FallbackNightHour, "Hour night starts when no solar data is available")
	pflag.IntVar(&c.DebounceMs, "debounce-ms", c.DebounceMs, "Recompute debounce window (ms)")
	pflag.IntVar(&c.AnimationMs, "animation-ms", c.AnimationMs, "Indicator animation duration (ms)")

	pflag.Parse()
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if c.FallbackDayHour < 0 || c.FallbackDayHour > 23 {
		return fmt.Errorf("fallback day hour must be between 0 and 23")
	}
	if c.FallbackNightHour < 0 || c.FallbackNightHour > 23 {
		return fmt.Errorf("fallback night hour must be between 0 and 23")
	}
	if c.FallbackDayHour >= c.FallbackNightHour {
		return fmt.Errorf("fallback day hour must be before fallback night hour")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresConnectionString returns the lib/pq connection string
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode)
}

// GeoTimeout returns the geolocation request timeout as a duration
func (c *Config) GeoTimeout() time.Duration {
	return time.Duration(c.GeoTimeoutMs) * time.Millisecond
}

// GeoCacheMaxAge returns the geolocation result max cache age as a duration
func (c *Config) GeoCacheMaxAge() time.Duration {
	return time.Duration(c.GeoCacheMs) * time.Millisecond
}

// Debounce returns the recompute debounce window as a duration
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// AnimationDuration returns the indicator animation duration
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.AnimationMs) * time.Millisecond
}

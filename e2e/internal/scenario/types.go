package scenario

import "time"

// Scenario represents a complete E2E test scenario
type Scenario struct {
	Name         string                   `yaml:"name"`
	Description  string                   `yaml:"description"`
	Steps        []Step                   `yaml:"steps"`
	Wait         []WaitPeriod             `yaml:"wait"`
	Expectations map[string][]Expectation `yaml:"expectations"`
}

// Step represents one MQTT message to publish during the test: a theme
// command, a UI event, or a task request.
type Step struct {
	Time        int                    `yaml:"time"`              // Seconds from start
	Topic       string                 `yaml:"topic"`             // e.g. "taskboard/theme/set"
	Payload     map[string]interface{} `yaml:"payload,omitempty"` // Empty payload publishes {}
	Description string                 `yaml:"description"`
}

// WaitPeriod represents a pause in the scenario
type WaitPeriod struct {
	Time        int    `yaml:"time"` // Seconds from start
	Description string `yaml:"description"`
}

// Expectation represents an expected outcome to verify
type Expectation struct {
	Time    int                    `yaml:"time"`    // Seconds from start
	Topic   string                 `yaml:"topic"`   // MQTT topic
	Payload map[string]interface{} `yaml:"payload"` // Expected payload (supports special matchers)

	// Optional: Redis state checks (plain string keys)
	RedisKey string `yaml:"redis_key,omitempty"`
	Expected string `yaml:"expected,omitempty"`

	// Optional: Postgres state checks
	PostgresQuery    string      `yaml:"postgres_query,omitempty"`
	PostgresExpected interface{} `yaml:"postgres_expected,omitempty"`
}

// TestResult represents the outcome of running a scenario
type TestResult struct {
	Scenario     *Scenario
	StartTime    time.Time
	EndTime      time.Time
	Passed       bool
	PassedCount  int
	FailedCount  int
	Expectations []ExpectationResult
}

// ExpectationResult represents the result of checking a single expectation
type ExpectationResult struct {
	Layer         string
	Expectation   Expectation
	Passed        bool
	Reason        string
	ActualTopic   string
	ActualPayload interface{}
}

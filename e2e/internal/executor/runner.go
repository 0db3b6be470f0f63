package executor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saaga0h/daybreak/e2e/internal/checker"
	"github.com/saaga0h/daybreak/e2e/internal/observer"
	"github.com/saaga0h/daybreak/e2e/internal/reporter"
	"github.com/saaga0h/daybreak/e2e/internal/scenario"
)

// Runner orchestrates test scenario execution against a running broker,
// Redis and, when a connection string is given, the task store database.
type Runner struct {
	mqttBroker      string
	redisHost       string
	postgresConnStr string
	logger          *log.Logger
	observer        *observer.Observer
	player          *MQTTPlayer
	redisClient     *redis.Client
	postgresChecker *checker.PostgresChecker
}

// NewRunner creates a new test runner. postgresConnStr may be empty when
// the scenario has no task store expectations.
func NewRunner(mqttBroker, redisHost, postgresConnStr string, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		mqttBroker:      mqttBroker,
		redisHost:       redisHost,
		postgresConnStr: postgresConnStr,
		logger:          logger,
	}
}

// Run executes a test scenario
func (r *Runner) Run(ctx context.Context, s *scenario.Scenario) (*scenario.TestResult, []reporter.TimelineEvent, error) {
	r.logger.Printf("Starting scenario: %s", s.Name)
	r.logger.Printf("Description: %s", s.Description)

	if err := r.initialize(); err != nil {
		return nil, nil, fmt.Errorf("initialization failed: %w", err)
	}
	defer r.cleanup()

	// Wait for agents to start up
	r.logger.Printf("Waiting 5 seconds for agents to start up...")
	time.Sleep(5 * time.Second)

	if err := r.observer.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start observer: %w", err)
	}

	startTime := time.Now()
	var timelineEvents []reporter.TimelineEvent

	// Execute steps
	for _, step := range s.Steps {
		WaitUntil(startTime, step.Time)
		elapsed := GetElapsed(startTime)

		stepDesc := fmt.Sprintf("%s (%s)", step.Topic, step.Description)
		r.logger.Printf("[%.2fs] Publishing step: %s", elapsed, stepDesc)

		if err := r.player.PublishStep(step); err != nil {
			return nil, nil, fmt.Errorf("failed to publish step: %w", err)
		}

		timelineEvents = append(timelineEvents, reporter.TimelineEvent{
			Elapsed:     elapsed,
			Layer:       "step",
			Description: stepDesc,
			IsCheck:     false,
		})
	}

	// Execute wait periods
	for _, wait := range s.Wait {
		WaitUntil(startTime, wait.Time)
		elapsed := GetElapsed(startTime)

		r.logger.Printf("[%.2fs] Wait: %s", elapsed, wait.Description)

		timelineEvents = append(timelineEvents, reporter.TimelineEvent{
			Elapsed:     elapsed,
			Layer:       "wait",
			Description: fmt.Sprintf("%s (%.1fs)", wait.Description, float64(wait.Time)),
			IsCheck:     false,
		})
	}

	// Check expectations, ordered by time across layers
	type layerExp struct {
		layer string
		exp   scenario.Expectation
	}
	var allExpectations []layerExp
	for layer, exps := range s.Expectations {
		for _, exp := range exps {
			allExpectations = append(allExpectations, layerExp{layer, exp})
		}
	}
	sort.Slice(allExpectations, func(i, j int) bool {
		return allExpectations[i].exp.Time < allExpectations[j].exp.Time
	})

	var expectationResults []scenario.ExpectationResult

	for _, le := range allExpectations {
		WaitUntil(startTime, le.exp.Time)
		elapsed := GetElapsed(startTime)

		var checkDesc string
		switch {
		case le.exp.Topic != "":
			checkDesc = le.exp.Topic
		case le.exp.RedisKey != "":
			checkDesc = "redis:" + le.exp.RedisKey
		case le.exp.PostgresQuery != "":
			checkDesc = "postgres query"
		}

		r.logger.Printf("[%.2fs] Checking expectation: %s - %s", elapsed, le.layer, checkDesc)

		var passed bool
		var reason string
		var actualPayload interface{}

		switch {
		case le.exp.PostgresQuery != "":
			passed, reason, actualPayload = r.checkPostgresExpectation(le.exp)
		case le.exp.RedisKey != "":
			passed, reason, actualPayload = checker.CheckRedisExpectation(ctx, r.redisClient, le.exp)
		default:
			messages := r.observer.GetAllMessages()
			passed, reason, actualPayload = checker.CheckExpectation(le.exp, messages)
		}

		expectationResults = append(expectationResults, scenario.ExpectationResult{
			Layer:         le.layer,
			Expectation:   le.exp,
			Passed:        passed,
			Reason:        reason,
			ActualTopic:   le.exp.Topic,
			ActualPayload: actualPayload,
		})

		if passed {
			r.logger.Printf("[%.2fs] ✓ PASS", elapsed)
		} else {
			r.logger.Printf("[%.2fs] ✗ FAIL: %s", elapsed, reason)
		}

		timelineEvents = append(timelineEvents, reporter.TimelineEvent{
			Elapsed:     elapsed,
			Layer:       le.layer,
			Description: checkDesc,
			Success:     passed,
			IsCheck:     true,
		})
	}

	endTime := time.Now()

	passedCount := 0
	failedCount := 0
	for _, result := range expectationResults {
		if result.Passed {
			passedCount++
		} else {
			failedCount++
		}
	}

	testResult := &scenario.TestResult{
		Scenario:     s,
		StartTime:    startTime,
		EndTime:      endTime,
		Passed:       failedCount == 0,
		PassedCount:  passedCount,
		FailedCount:  failedCount,
		Expectations: expectationResults,
	}

	return testResult, timelineEvents, nil
}

// checkPostgresExpectation checks a Postgres query expectation
func (r *Runner) checkPostgresExpectation(exp scenario.Expectation) (bool, string, interface{}) {
	if r.postgresChecker == nil {
		return false, "postgres checker not initialized", nil
	}

	if err := r.postgresChecker.CheckQuery(exp.PostgresQuery, exp.PostgresExpected); err != nil {
		return false, fmt.Sprintf("postgres check failed: %v", err), nil
	}

	return true, "", exp.PostgresExpected
}

// initialize sets up connections
func (r *Runner) initialize() error {
	r.observer = observer.NewObserver(r.mqttBroker, r.logger)

	player, err := NewMQTTPlayer(r.mqttBroker, r.logger)
	if err != nil {
		return fmt.Errorf("failed to create MQTT player: %w", err)
	}
	r.player = player

	r.redisClient = redis.NewClient(&redis.Options{
		Addr: r.redisHost,
	})

	ctx := context.Background()
	if err := r.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r.logger.Printf("Connected to Redis at %s", r.redisHost)

	if r.postgresConnStr != "" {
		postgresChecker, err := checker.NewPostgresChecker(r.postgresConnStr, r.logger)
		if err != nil {
			return fmt.Errorf("failed to create Postgres checker: %w", err)
		}
		r.postgresChecker = postgresChecker
	}

	return nil
}

// cleanup closes all connections
func (r *Runner) cleanup() {
	if r.observer != nil {
		r.observer.Stop()
	}
	if r.player != nil {
		r.player.Close()
	}
	if r.redisClient != nil {
		r.redisClient.Close()
	}
	if r.postgresChecker != nil {
		r.postgresChecker.Close()
	}
}

// SaveCapture saves the MQTT capture to a file
func (r *Runner) SaveCapture(filename string) error {
	if r.observer == nil {
		return fmt.Errorf("observer not initialized")
	}
	return r.observer.SaveCapture(filename)
}

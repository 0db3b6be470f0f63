package scenario

import (
	"fmt"
	"strings"
)

// ValidateScenario performs validation checks on a loaded scenario
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("scenario description is required")
	}

	if err := validateSteps(s.Steps); err != nil {
		return fmt.Errorf("steps validation failed: %w", err)
	}

	if err := validateWaitPeriods(s.Wait); err != nil {
		return fmt.Errorf("wait periods validation failed: %w", err)
	}

	if err := validateExpectations(s.Expectations); err != nil {
		return fmt.Errorf("expectations validation failed: %w", err)
	}

	return nil
}

func validateSteps(steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, step := range steps {
		if step.Time < 0 {
			return fmt.Errorf("step %d: time cannot be negative", i)
		}

		if step.Topic == "" {
			return fmt.Errorf("step %d: topic is required", i)
		}

		if !strings.HasPrefix(step.Topic, "taskboard/") {
			return fmt.Errorf("step %d: topic %q is outside the taskboard namespace", i, step.Topic)
		}

		if step.Description == "" {
			return fmt.Errorf("step %d: description is required", i)
		}
	}

	return nil
}

func validateWaitPeriods(waits []WaitPeriod) error {
	for i, wait := range waits {
		if wait.Time < 0 {
			return fmt.Errorf("wait period %d: time cannot be negative", i)
		}

		if wait.Description == "" {
			return fmt.Errorf("wait period %d: description is required", i)
		}
	}

	return nil
}

func validateExpectations(expectations map[string][]Expectation) error {
	if len(expectations) == 0 {
		return fmt.Errorf("at least one expectation is required")
	}

	for layer, exps := range expectations {
		if layer == "" {
			return fmt.Errorf("expectation layer name cannot be empty")
		}

		for i, exp := range exps {
			if exp.Time < 0 {
				return fmt.Errorf("layer %s, expectation %d: time cannot be negative", layer, i)
			}

			hasMQTT := exp.Topic != ""
			hasRedis := exp.RedisKey != ""
			hasPostgres := exp.PostgresQuery != ""

			if !hasMQTT && !hasRedis && !hasPostgres {
				return fmt.Errorf("layer %s, expectation %d: one of topic, redis_key or postgres_query is required", layer, i)
			}

			if hasMQTT && len(exp.Payload) == 0 {
				return fmt.Errorf("layer %s, expectation %d: MQTT expectations require a payload", layer, i)
			}

			if hasRedis && exp.Expected == "" {
				return fmt.Errorf("layer %s, expectation %d: expected is required when redis_key is specified", layer, i)
			}

			if hasPostgres && exp.PostgresExpected == nil {
				return fmt.Errorf("layer %s, expectation %d: postgres_expected is required when postgres_query is specified", layer, i)
			}
		}
	}

	return nil
}

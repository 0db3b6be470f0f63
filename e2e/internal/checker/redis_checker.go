package checker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/saaga0h/daybreak/e2e/internal/scenario"
)

// CheckRedisExpectation validates a Redis state expectation. Theme state
// is persisted under plain string keys, so a simple GET is enough.
func CheckRedisExpectation(ctx context.Context, client *redis.Client, exp scenario.Expectation) (bool, string, interface{}) {
	if exp.RedisKey == "" {
		return false, "redis_key is empty", nil
	}

	value, err := client.Get(ctx, exp.RedisKey).Result()
	if err == redis.Nil {
		return false, fmt.Sprintf("key %q not found in Redis", exp.RedisKey), nil
	}
	if err != nil {
		return false, fmt.Sprintf("Redis error: %v", err), nil
	}

	matches, reason := MatchesExpectation(value, exp.Expected)
	if !matches {
		return false, reason, value
	}

	return true, "", value
}

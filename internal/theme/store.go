package theme

import (
	"context"
	"fmt"

	"github.com/saaga0h/daybreak/pkg/redis"
)

// Store persists the theme mode and the last applied day/night flag across
// process restarts. All writes are best-effort: the controller logs and
// ignores failures, so a broken store degrades to in-memory defaults.
type Store interface {
	SaveMode(ctx context.Context, mode Mode) error
	LoadMode(ctx context.Context) (Mode, error)

	SaveLastApplied(ctx context.Context, isNight bool) error
	LoadLastApplied(ctx context.Context) (bool, error)
}

// redisStore implements Store on the platform Redis client
type redisStore struct {
	redis redis.Client
}

// NewRedisStore creates a Redis-backed theme store
func NewRedisStore(redisClient redis.Client) Store {
	return &redisStore{redis: redisClient}
}

func (s *redisStore) SaveMode(ctx context.Context, mode Mode) error {
	if err := s.redis.Set(ctx, redis.ThemeModeKey(), string(mode), 0); err != nil {
		return fmt.Errorf("failed to save theme mode: %w", err)
	}
	return nil
}

// LoadMode reads the persisted mode. A missing or malformed value comes
// back as ModeAuto, not an error.
func (s *redisStore) LoadMode(ctx context.Context) (Mode, error) {
	val, err := s.redis.Get(ctx, redis.ThemeModeKey())
	if err != nil {
		return ModeAuto, fmt.Errorf("failed to load theme mode: %w", err)
	}
	return ParseMode(val), nil
}

func (s *redisStore) SaveLastApplied(ctx context.Context, isNight bool) error {
	val := "day"
	if isNight {
		val = "night"
	}
	if err := s.redis.Set(ctx, redis.ThemeLastAppliedKey(), val, 0); err != nil {
		return fmt.Errorf("failed to save last applied theme: %w", err)
	}
	return nil
}

func (s *redisStore) LoadLastApplied(ctx context.Context) (bool, error) {
	val, err := s.redis.Get(ctx, redis.ThemeLastAppliedKey())
	if err != nil {
		return false, fmt.Errorf("failed to load last applied theme: %w", err)
	}
	return val == "night", nil
}

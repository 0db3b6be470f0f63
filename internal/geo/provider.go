package geo

import (
	"context"
	"sync"
	"time"
)

// Position is a resolved geographic coordinate pair
type Position struct {
	Latitude  float64
	Longitude float64
}

// Provider resolves the board's location. Implementations honor context
// cancellation; all failures are opaque to callers and treated uniformly,
// regardless of cause.
type Provider interface {
	Locate(ctx context.Context) (Position, error)
}

// StaticProvider returns fixed coordinates from configuration
type StaticProvider struct {
	Position Position
}

func (p *StaticProvider) Locate(ctx context.Context) (Position, error) {
	return p.Position, nil
}

// Cached wraps a provider with a max-age result cache, so repeated
// lookups within the window reuse the previous fix instead of issuing a
// new request.
type Cached struct {
	inner  Provider
	maxAge time.Duration

	mu         sync.Mutex
	position   Position
	resolvedAt time.Time
}

// NewCached wraps inner with a result cache of the given max age
func NewCached(inner Provider, maxAge time.Duration) *Cached {
	return &Cached{
		inner:  inner,
		maxAge: maxAge,
	}
}

func (c *Cached) Locate(ctx context.Context) (Position, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.resolvedAt.IsZero() && time.Since(c.resolvedAt) < c.maxAge {
		return c.position, nil
	}

	pos, err := c.inner.Locate(ctx)
	if err != nil {
		return Position{}, err
	}

	c.position = pos
	c.resolvedAt = time.Now()
	return pos, nil
}

package theme

import (
	"sync"
	"time"
)

// Debounce returns a trigger that delays invoking fn until delay has
// elapsed since the most recent call. A burst of calls collapses into a
// single trailing invocation, so rapid-fire triggers (visibility flaps,
// resize storms) cost one recomputation. The returned stop cancels any
// pending invocation.
func Debounce(delay time.Duration, fn func()) (trigger, stop func()) {
	var mu sync.Mutex
	var pending *time.Timer

	trigger = func() {
		mu.Lock()
		defer mu.Unlock()

		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(delay, fn)
	}

	stop = func() {
		mu.Lock()
		defer mu.Unlock()

		if pending != nil {
			pending.Stop()
			pending = nil
		}
	}

	return trigger, stop
}

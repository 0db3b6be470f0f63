package theme

import "time"

// Handle identifies one armed wake-up.
type Handle interface{}

// Scheduler arms a single future wake-up at an absolute instant. The
// controller enforces the at-most-one-pending invariant by always
// cancelling the previous handle before arming a new one.
type Scheduler interface {
	// Arm schedules fn to run at the given instant. An instant in the
	// past fires as soon as possible.
	Arm(at time.Time, fn func()) Handle

	// Cancel stops a previously armed wake-up. Cancelling a nil or
	// already fired handle is a no-op.
	Cancel(h Handle)
}

// timerScheduler implements Scheduler on time.AfterFunc
type timerScheduler struct {
	clock Clock
}

// NewTimerScheduler returns a Scheduler backed by the runtime timer heap,
// measuring delays against the given clock.
func NewTimerScheduler(clock Clock) Scheduler {
	return &timerScheduler{clock: clock}
}

func (s *timerScheduler) Arm(at time.Time, fn func()) Handle {
	d := at.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, fn)
}

func (s *timerScheduler) Cancel(h Handle) {
	if h == nil {
		return
	}
	if t, ok := h.(*time.Timer); ok {
		t.Stop()
	}
}

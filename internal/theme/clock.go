package theme

import "time"

// Clock is the controller's time source, injected so tests can run the
// state machine at a fixed or scripted instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock {
	return systemClock{}
}

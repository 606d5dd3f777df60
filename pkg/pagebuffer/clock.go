package pagebuffer

import "time"

// Clock abstracts time.Now so the backoff controller's error-streak
// elapsed() calculation is deterministic under test. Grounded in the
// original client's injectable Stopwatch constructor overload: production
// code always gets the real clock, tests supply a fake one.
type Clock interface {
	Now() time.Time
}

// systemClock is the default, time.Now-backed Clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

package pagebuffer

import (
	"sync"
	"time"
)

const (
	initialErrorDelay = 1 * time.Millisecond
	maxErrorDelay      = 100 * time.Millisecond
)

// backoffController tracks an error streak's cumulative duration and the
// next retry delay, mirroring the original client's Stopwatch-plus-delay
// pair. The streak clock and the delay are two independent pieces of
// state that happen to be driven by the same events:
//
//   - start is called once per scheduleRequest arm, so the scheduling
//     delay itself counts against the error budget even before any
//     failure has been observed.
//   - noteError is called from a failure continuation; it only advances
//     the delay (1, 2, 4, ..., 100ms), it does not touch the clock.
//   - elapsedDuration is called from a failure continuation to decide
//     whether the streak has persisted past minErrorDuration; it
//     freezes the accumulated duration until the clock is started
//     again, the same way a stopped stopwatch holds its reading.
//   - reset is called after a successful response; it zeroes both the
//     delay and the accumulated streak duration, so the next request
//     isn't artificially delayed by a streak that has already ended.
type backoffController struct {
	mu          sync.Mutex
	clock       Clock
	errorDelay  time.Duration
	running     bool
	startedAt   time.Time
	accumulated time.Duration
}

func newBackoffController(clock Clock) *backoffController {
	if clock == nil {
		clock = systemClock{}
	}
	return &backoffController{clock: clock}
}

// start begins the error clock if it is not already running.
func (b *backoffController) start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		b.running = true
		b.startedAt = b.clock.Now()
	}
}

// noteError advances the retry delay one step: 0 -> 1ms, else doubled up
// to a 100ms ceiling.
func (b *backoffController) noteError() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.errorDelay == 0 {
		b.errorDelay = initialErrorDelay
	} else {
		b.errorDelay *= 2
		if b.errorDelay > maxErrorDelay {
			b.errorDelay = maxErrorDelay
		}
	}
}

// reset stops the error clock and zeroes both the accumulated streak
// duration and the next retry delay.
func (b *backoffController) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	b.accumulated = 0
	b.errorDelay = 0
}

// elapsedDuration stops the error clock (if running), folding the
// running segment into the accumulated duration, and returns that
// accumulated duration. A subsequent start() resumes accumulating from
// this point rather than from zero.
func (b *backoffController) elapsedDuration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		b.accumulated += b.clock.Now().Sub(b.startedAt)
		b.running = false
	}
	return b.accumulated
}

// delay returns the current delay to use for the next scheduled attempt.
func (b *backoffController) delay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorDelay
}

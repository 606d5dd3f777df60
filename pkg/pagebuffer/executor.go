package pagebuffer

import "time"

// Executor is the delayed/immediate task submission surface the Client
// schedules its own retries on. The scheduler's own policy is left to
// the owner; Executor is the narrow interface the Client actually
// needs, plus TimerExecutor as a usable default.
type Executor interface {
	// Schedule runs fn after delay elapses. Implementations must not
	// run fn synchronously on the calling goroutine.
	Schedule(delay time.Duration, fn func())

	// Run submits fn for immediate execution, used for the success and
	// failure continuations that must never run while the Client's lock
	// is held.
	Run(fn func())
}

// TimerExecutor is the default Executor, backed by time.AfterFunc for
// delayed work and a plain goroutine for immediate work. It has no
// bounded concurrency: a Client never has more than one outstanding
// Schedule/Run pair in flight at a time, so an unbounded
// goroutine-per-call executor cannot be starved by one Client, though a
// process running many Clients should still size its own worker pool if
// it wants a bound — that policy lives with the owner, not here.
type TimerExecutor struct{}

func (TimerExecutor) Schedule(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}

func (TimerExecutor) Run(fn func()) {
	go fn()
}

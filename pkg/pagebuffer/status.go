package pagebuffer

import (
	"fmt"
	"net/url"
	"time"
)

// Status is a point-in-time, lock-free-to-read snapshot returned by
// Client.Status.
type Status struct {
	URI               *url.URL
	State             string // one of: closed, running, scheduled, completed, queued
	LastUpdate        time.Time
	PagesReceived     int
	RequestsScheduled int
	RequestsCompleted int
	RequestsFailed    int
	HTTPRequestState  string // "running" while a request is in flight, else "not scheduled"; the transport's own request state is not reported
}

// String renders the status for logs: the URI plus an abbreviated,
// uppercased state. This abbreviated state only distinguishes three
// buckets (CLOSED, RUNNING, QUEUED) — it collapses
// scheduled/completed/queued into QUEUED, unlike the five-way State
// field above.
func (s Status) String() string {
	return fmt.Sprintf("%s{%s}", uriString(s.URI), abbreviateState(s.State))
}

func abbreviateState(state string) string {
	switch state {
	case "closed":
		return "CLOSED"
	case "running":
		return "RUNNING"
	default:
		return "QUEUED"
	}
}

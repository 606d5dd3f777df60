package pagebuffer

// Callback is the narrow interface a Client uses to hand results back to
// its owner. All four methods are invoked from the Client's Executor,
// never while the Client's internal lock is held, and must not block: if
// an implementation needs to do blocking work in response to a
// notification, it is responsible for handing that work off (e.g. to its
// own goroutine or channel).
//
// Per request, AddPage is called zero or more times, followed by exactly
// one RequestComplete, except that a request ending in ClientFailed gets
// no RequestComplete. ClientFinished fires exactly once, after a
// successful DELETE. ClientFailed fires at most once, on a fatal,
// structured failure, and is mutually exclusive with ClientFinished for a
// single Client's lifetime. If Close races with an in-flight response,
// RequestComplete and ClientFinished may be skipped, and ClientFailed may
// also never fire.
type Callback interface {
	// AddPage delivers one page from a successful GET. Ownership of the
	// page's bytes transfers to the callback sink.
	AddPage(client *Client, page Page)

	// RequestComplete fires once per finished GET attempt, whether it
	// succeeded or failed with a non-fatal (still transient) error.
	RequestComplete(client *Client)

	// ClientFinished fires once, after the DELETE that follows a
	// complete buffer succeeds.
	ClientFinished(client *Client)

	// ClientFailed fires at most once, when a failure is promoted to a
	// structured, fatal Error. The owner should treat this as a signal
	// to call Close.
	ClientFailed(client *Client, cause error)
}

package pagebuffer

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrContextCancelled is a sentinel for a request whose context was
// cancelled while it was outstanding. Nothing in this package returns it:
// HTTPTransport surfaces the context's own error instead.
var ErrContextCancelled = errors.New("pagebuffer: context cancelled")

// ErrorKind classifies a structured Error for control flow. Unlike the raw
// errors a Transport or Executor may return, a value of Kind other than
// KindNone is fatal to the client: handleFailure reports it to the
// callback sink's ClientFailed and the retry loop stops arming itself.
type ErrorKind string

const (
	// KindNone is never attached to an *Error; it exists so zero-value
	// checks read naturally.
	KindNone ErrorKind = ""

	// KindPageTooLarge means a single window exceeded MaxResponseSize.
	// Not retryable: the server will keep offering at least as much data
	// until the client's token advances past it.
	KindPageTooLarge ErrorKind = "page_too_large"

	// KindPageTransportError means the decoder rejected a GET response:
	// a non-200/204 status, a mismatched content type, a missing
	// required header, or a body I/O failure. Raised synchronously by
	// decode and surfaced immediately as a fatal error.
	KindPageTransportError ErrorKind = "page_transport_error"

	// KindPageTransportTimeout means a transient GET failure persisted
	// longer than MinErrorDuration and was promoted to fatal.
	KindPageTransportTimeout ErrorKind = "page_transport_timeout"

	// KindTooManyRequestsFailed is the DELETE-path analogue of
	// KindPageTransportTimeout.
	KindTooManyRequestsFailed ErrorKind = "too_many_requests_failed"
)

// Error is the client's structured failure type. A nil *Error is not a
// valid zero value to compare against Kind; use errors.As to recover one
// from an error chain.
type Error struct {
	Kind     ErrorKind
	URI      *url.URL
	Message  string
	Duration time.Duration // populated for promoted errors; zero otherwise
	Err      error         // the original cause, if any
}

func (e *Error) Error() string {
	if e.Duration > 0 {
		return fmt.Sprintf("pagebuffer: %s: %s (%s - requests failed for %s)", e.Kind, e.Message, uriString(e.URI), e.Duration)
	}
	if e.Err != nil {
		return fmt.Sprintf("pagebuffer: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("pagebuffer: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func uriString(u *url.URL) string {
	if u == nil {
		return "<nil>"
	}
	return u.String()
}

// pageTooLarge rewrites a transport-reported oversized-response condition
// into the sentinel fatal error, regardless of how long the error streak
// has been running.
func pageTooLarge(uri *url.URL) *Error {
	return &Error{Kind: KindPageTooLarge, URI: uri, Message: "response exceeded maximum size"}
}

// promoteTransportTimeout wraps a raw transient error that has persisted
// past minErrorDuration into a fatal transport-timeout error.
func promoteTransportTimeout(uri *url.URL, duration time.Duration, cause error) *Error {
	return &Error{
		Kind:     KindPageTransportTimeout,
		URI:      uri,
		Message:  "worker node error",
		Duration: duration,
		Err:      cause,
	}
}

// promoteTooManyRequestsFailed is the DELETE-path analogue of
// promoteTransportTimeout.
func promoteTooManyRequestsFailed(uri *url.URL, duration time.Duration, cause error) *Error {
	return &Error{
		Kind:     KindTooManyRequestsFailed,
		URI:      uri,
		Message:  "too many requests failed",
		Duration: duration,
		Err:      cause,
	}
}

// transportError reports a synchronous decode failure: bad status, bad
// content type, a missing header, or a body read error.
func transportError(uri *url.URL, format string, args ...interface{}) *Error {
	return &Error{Kind: KindPageTransportError, URI: uri, Message: fmt.Sprintf(format, args...)}
}

// isStructured reports whether err is (or wraps) a *Error, i.e. already a
// member of the client's own fatal error taxonomy rather than a raw,
// still-transient failure from the transport or executor.
func isStructured(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// AsError recovers a *Error from err, if one is present in its chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

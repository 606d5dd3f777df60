package pagebuffer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Config holds the mandatory and optional knobs a Client is built with.
// DefaultConfig only fills in what has a sane default (MinErrorDuration,
// Transport, Executor, Clock); EndpointURI, MaxResponseSize, Callback, and
// Deserializer must always be supplied by the caller.
type Config struct {
	// EndpointURI is the base URI the client polls. GET appends the
	// current token as a path segment; DELETE targets it directly.
	EndpointURI *url.URL

	// MaxResponseSize caps one GET's body and is sent via the
	// X-Presto-Max-Size header.
	MaxResponseSize int64

	// MinErrorDuration is the error-streak duration above which a
	// transient failure is promoted to a fatal, structured one.
	MinErrorDuration time.Duration

	// Callback receives page/lifecycle notifications. Required.
	Callback Callback

	// Deserializer turns a GET response body into pages. Required.
	Deserializer PageDeserializer

	// Transport issues the GET/DELETE requests. Defaults to an
	// HTTPTransport over http.DefaultClient.
	Transport Transport

	// Executor schedules retries and runs continuations off the lock.
	// Defaults to TimerExecutor.
	Executor Executor

	// Clock feeds the backoff controller's error-streak accounting.
	// Defaults to the system clock.
	Clock Clock

	// Logger receives the package's structured debug/error log lines.
	// Defaults to a zerolog logger tagged component=pagebuffer.
	Logger *Logger
}

// DefaultConfig returns a Config with MinErrorDuration, Transport,
// Executor, and Clock filled in. Logger is left nil; New substitutes the
// default logger for it. EndpointURI, MaxResponseSize, Callback, and
// Deserializer are still the
// caller's responsibility; New validates their presence.
func DefaultConfig() Config {
	return Config{
		MinErrorDuration: 5 * time.Second,
		Transport:        NewHTTPTransport(nil),
		Executor:         TimerExecutor{},
		Clock:            systemClock{},
	}
}

// Client is the per-peer, long-polling page-buffer client: it owns a
// token cursor and a single in-flight request, drives GET/DELETE
// sequencing through an explicit state machine, and reports pages and
// lifecycle events to a Callback sink.
//
// A Client's public methods are safe for concurrent use. The fields
// below mu are the only mutable state; everything else is set once at
// construction and never mutated afterward.
type Client struct {
	uri              *url.URL
	maxResponseSize  int64
	minErrorDuration time.Duration
	callback         Callback
	deserialize      PageDeserializer
	transport        Transport
	executor         Executor
	backoff          *backoffController
	log              *Logger

	mu         sync.Mutex
	closed     bool
	inFlight   bool
	cancel     context.CancelFunc
	scheduled  bool
	completed  bool
	token      uint64
	lastUpdate time.Time

	pagesReceived     int
	requestsScheduled int
	requestsCompleted int
	requestsFailed    int
}

// New constructs a Client from cfg. It returns an error if a mandatory
// field is missing; it never returns a nil *Client without an error.
func New(cfg Config) (*Client, error) {
	if cfg.EndpointURI == nil {
		return nil, fmt.Errorf("pagebuffer: EndpointURI is required")
	}
	if cfg.Callback == nil {
		return nil, fmt.Errorf("pagebuffer: Callback is required")
	}
	if cfg.Deserializer == nil {
		return nil, fmt.Errorf("pagebuffer: Deserializer is required")
	}
	if cfg.MaxResponseSize <= 0 {
		return nil, fmt.Errorf("pagebuffer: MaxResponseSize must be positive")
	}
	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(nil)
	}
	executor := cfg.Executor
	if executor == nil {
		executor = TimerExecutor{}
	}
	logger := cfg.Logger
	if logger == nil {
		l := NewLogger()
		logger = &l
	}

	c := &Client{
		uri:              cfg.EndpointURI,
		maxResponseSize:  cfg.MaxResponseSize,
		minErrorDuration: cfg.MinErrorDuration,
		callback:         cfg.Callback,
		deserialize:      cfg.Deserializer,
		transport:        transport,
		executor:         executor,
		backoff:          newBackoffController(cfg.Clock),
		log:              logger,
		lastUpdate:       time.Now(),
	}
	return c, nil
}

// Key is the client's identity for set/map keying: two clients are
// equal iff their endpoint URIs are equal.
func (c *Client) Key() string {
	return c.uri.String()
}

// String renders the client for diagnostics: the URI plus an
// abbreviated, uppercased state bucket (CLOSED/RUNNING/QUEUED).
func (c *Client) String() string {
	return c.Status().String()
}

// IsRunning reports whether a request is currently in flight.
func (c *Client) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Status returns a point-in-time snapshot. The five-way State field
// picks the first matching flag in the order closed > running >
// scheduled > completed > queued.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	httpState := "not scheduled"
	if c.inFlight {
		httpState = "running"
	}

	return Status{
		URI:               c.uri,
		State:             c.stateLocked(),
		LastUpdate:        c.lastUpdate,
		PagesReceived:     c.pagesReceived,
		RequestsScheduled: c.requestsScheduled,
		RequestsCompleted: c.requestsCompleted,
		RequestsFailed:    c.requestsFailed,
		HTTPRequestState:  httpState,
	}
}

func (c *Client) stateLocked() string {
	switch {
	case c.closed:
		return "closed"
	case c.inFlight:
		return "running"
	case c.scheduled:
		return "scheduled"
	case c.completed:
		return "completed"
	default:
		return "queued"
	}
}

// ScheduleRequest idempotently arms the next GET or DELETE. It is a
// no-op if the client is closed, has a request in flight, or already
// has one scheduled.
func (c *Client) ScheduleRequest() {
	c.mu.Lock()
	if c.closed || c.inFlight || c.scheduled {
		c.mu.Unlock()
		return
	}
	c.scheduled = true
	c.requestsScheduled++
	c.mu.Unlock()

	requestsScheduledTotal.WithLabelValues(c.uri.String()).Inc()

	c.backoff.start()
	delay := c.backoff.delay()

	c.executor.Schedule(delay, c.runScheduledTask)
}

// runScheduledTask is the delayed action the executor fires. It never
// runs while c.mu is held for longer than it takes to read the flags it
// dispatches on.
func (c *Client) runScheduledTask() {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("uri", c.uri.String()).
				Msg("pagebuffer: recovered panic in scheduled task")
			c.handleFailure(fmt.Errorf("pagebuffer: panic in scheduled task: %v", r))
		}
	}()

	c.mu.Lock()
	c.scheduled = false
	if c.closed || c.inFlight {
		c.mu.Unlock()
		return
	}
	completed := c.completed
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	if completed {
		c.sendDelete()
	} else {
		c.sendGetResults()
	}
}

// sendGetResults issues the GET for the client's current token and
// wires up continuations that run outside the lock.
func (c *Client) sendGetResults() {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.inFlight = true
	c.cancel = cancel
	token := c.token
	c.mu.Unlock()

	go func() {
		resp, err := c.transport.GetPages(ctx, c.uri, token, c.maxResponseSize, c.deserialize)
		c.executor.Run(func() {
			if err != nil {
				c.onGetFailure(err)
				return
			}
			c.onGetSuccess(resp)
		})
	}()
}

// onGetSuccess is the success continuation for a GET. It resets the
// backoff controller, advances the token cursor only if the response's
// token matches the client's current cursor (discarding a stale replay
// otherwise), delivers pages to the callback outside the lock, and
// finally reports RequestComplete.
func (c *Client) onGetSuccess(resp PagesResponse) {
	c.backoff.reset()

	c.mu.Lock()
	var pages []Page
	if resp.Token == c.token {
		pages = resp.Pages
		c.token = resp.NextToken
	}
	c.mu.Unlock()

	for _, p := range pages {
		c.mu.Lock()
		c.pagesReceived++
		c.mu.Unlock()
		pagesReceivedTotal.WithLabelValues(c.uri.String()).Inc()
		c.callback.AddPage(c, p)
	}

	c.mu.Lock()
	if resp.Complete {
		c.completed = true
	}
	c.inFlight = false
	c.cancel = nil
	c.requestsCompleted++
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	requestsCompletedTotal.WithLabelValues(c.uri.String()).Inc()
	c.callback.RequestComplete(c)
}

// onGetFailure is the failure continuation for a GET: a
// ResponseTooLarge hint is rewritten to the fatal PageTooLarge error
// regardless of streak duration; any other still-unstructured error
// that has persisted past minErrorDuration is promoted to
// PageTransportTimeout.
func (c *Client) onGetFailure(err error) {
	errorDuration := c.backoff.elapsedDuration()

	if isResponseTooLarge(err) {
		err = pageTooLarge(c.uri)
	} else if !isStructured(err) && errorDuration > c.minErrorDuration {
		err = promoteTransportTimeout(c.uri, errorDuration, err)
	}

	c.log.Debug().Err(err).Str("uri", c.uri.String()).Dur("error_duration", errorDuration).
		Msg("pagebuffer: GET failed")

	c.handleFailure(err)
}

// sendDelete issues the authoritative DELETE. It is only invoked by the
// scheduled task once Complete has become true; the best-effort DELETE
// on Close is issued by Close itself.
func (c *Client) sendDelete() {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.inFlight = true
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		err := c.transport.Delete(ctx, c.uri)
		c.executor.Run(func() {
			if err != nil {
				c.onDeleteFailure(err)
				return
			}
			c.onDeleteSuccess()
		})
	}()
}

func (c *Client) onDeleteSuccess() {
	c.mu.Lock()
	c.closed = true
	c.inFlight = false
	c.cancel = nil
	c.requestsCompleted++
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	requestsCompletedTotal.WithLabelValues(c.uri.String()).Inc()
	c.callback.ClientFinished(c)
}

// onDeleteFailure mirrors onGetFailure's promotion logic but produces
// TooManyRequestsFailed instead of PageTransportTimeout, and leaves
// Completed set so the next scheduled task retries the DELETE rather
// than issuing a GET.
func (c *Client) onDeleteFailure(err error) {
	errorDuration := c.backoff.elapsedDuration()

	if !isStructured(err) && errorDuration > c.minErrorDuration {
		err = promoteTooManyRequestsFailed(c.uri, errorDuration, err)
	}

	c.log.Error().Err(err).Str("uri", c.uri.String()).Dur("error_duration", errorDuration).
		Msg("pagebuffer: DELETE failed")

	c.handleFailure(err)
}

// handleFailure is the shared tail of both failure continuations. It
// always counts the failure and clears inFlight. When err is one of the
// package's structured errors (a transient error that got promoted
// above is, by construction, already structured by the time it reaches
// here), it signals ClientFailed and stops there: the backoff delay is
// not bumped and RequestComplete is not called. Any other error bumps
// the backoff delay and finishes with RequestComplete.
func (c *Client) handleFailure(err error) {
	c.mu.Lock()
	c.requestsFailed++
	c.requestsCompleted++
	c.mu.Unlock()

	requestsFailedTotal.WithLabelValues(c.uri.String()).Inc()
	requestsCompletedTotal.WithLabelValues(c.uri.String()).Inc()

	if domainErr, ok := AsError(err); ok {
		clientFailedTotal.WithLabelValues(c.uri.String(), string(domainErr.Kind)).Inc()
		c.mu.Lock()
		c.inFlight = false
		c.cancel = nil
		c.lastUpdate = time.Now()
		c.mu.Unlock()
		c.callback.ClientFailed(c, err)
		return
	}

	c.backoff.noteError()
	errorBackoffMillis.WithLabelValues(c.uri.String()).Observe(float64(c.backoff.delay().Milliseconds()))

	c.mu.Lock()
	c.inFlight = false
	c.cancel = nil
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	c.callback.RequestComplete(c)
}

// Close idempotently tears the client down: it flips the closed flag,
// cancels any in-flight request, and fires a best-effort DELETE whose
// response is ignored. Safe to call from any goroutine, any number of
// times; only the first call has any effect.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	c.cancel = nil
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.transport.Delete(ctx, c.uri); err != nil {
			c.log.Debug().Err(err).Str("uri", c.uri.String()).
				Msg("pagebuffer: best-effort close DELETE failed")
		}
	}()
}

func isResponseTooLarge(err error) bool {
	return errors.Is(err, ErrResponseTooLarge)
}

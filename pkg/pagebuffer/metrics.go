package pagebuffer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for page-buffer clients: package-level promauto
// vars, labeled by endpoint so a process running many Clients (one per
// upstream peer) gets per-peer breakdowns for free.
var (
	pagesReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagebuffer_pages_received_total",
		Help: "Total pages delivered to callback sinks, by endpoint",
	}, []string{"endpoint"})

	requestsScheduledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagebuffer_requests_scheduled_total",
		Help: "Total requests armed via scheduleRequest, by endpoint",
	}, []string{"endpoint"})

	requestsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagebuffer_requests_completed_total",
		Help: "Total GET/DELETE attempts that finished, successfully or not, by endpoint",
	}, []string{"endpoint"})

	requestsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagebuffer_requests_failed_total",
		Help: "Total GET/DELETE attempts that failed, by endpoint",
	}, []string{"endpoint"})

	errorBackoffMillis = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pagebuffer_error_backoff_ms",
		Help:    "Retry delay chosen after a failure, in milliseconds, by endpoint",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 100},
	}, []string{"endpoint"})

	clientFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagebuffer_client_failed_total",
		Help: "Total fatal ClientFailed notifications, by endpoint and error kind",
	}, []string{"endpoint", "kind"})
)

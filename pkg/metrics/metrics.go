// Package metrics provides a centralized Prometheus registry reference
// and documentation for the metrics this module exposes. All metrics
// are defined in their respective packages (pagebuffer, dedupcache) via
// promauto to maintain modularity and avoid circular dependencies; this
// package exists purely so there's one place that lists them all.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry this module's metrics
// register against.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Page Buffer Client Metrics (pkg/pagebuffer):
//   - pagebuffer_pages_received_total{endpoint} (Counter): pages delivered to callback sinks
//   - pagebuffer_requests_scheduled_total{endpoint} (Counter): requests armed via ScheduleRequest
//   - pagebuffer_requests_completed_total{endpoint} (Counter): GET/DELETE attempts finished
//   - pagebuffer_requests_failed_total{endpoint} (Counter): GET/DELETE attempts failed
//   - pagebuffer_error_backoff_ms{endpoint} (Histogram): retry delay chosen after a failure
//   - pagebuffer_client_failed_total{endpoint,kind} (Counter): fatal ClientFailed notifications
//
// Dedup Cache Metrics (pkg/dedupcache):
//   - pagebuffer_dedup_claims_held (Gauge): in-flight window claims currently held in Redis
//   - pagebuffer_dedup_claim_conflicts_total (Counter): Claim calls that found a window already claimed
//   - pagebuffer_dedup_errors_total{operation} (Counter): dedupcache operation errors
//
// Example Prometheus Queries:
//
//   # Client failure rate by kind
//   rate(pagebuffer_client_failed_total[5m])
//
//   # P95 retry backoff
//   histogram_quantile(0.95, rate(pagebuffer_error_backoff_ms_bucket[5m]))
//
//   # Requests currently failing vs completing
//   rate(pagebuffer_requests_failed_total[5m]) / rate(pagebuffer_requests_completed_total[5m])
//
//   # Dedup claim contention
//   rate(pagebuffer_dedup_claim_conflicts_total[5m])

// Package pagebuffer implements a long-polling client for a single remote
// page buffer: it repeatedly issues GET requests against an endpoint that
// streams ordered, tokened windows of opaque binary pages, hands pages to
// an owner-supplied callback sink, and tears the remote buffer down with a
// DELETE once the owner is finished consuming it.
//
// A Client is the per-peer building block of a fan-out exchange layer; it
// does not itself schedule work across multiple endpoints, reorder pages,
// or deduplicate page contents. Its only flow control is the per-request
// maximum response size. No owner that runs several Clients concurrently
// is included in this module.
//
// Metrics registered by this package, all via promauto against the default
// Prometheus registerer:
//
//	pagebuffer_pages_received_total{endpoint}
//	pagebuffer_requests_scheduled_total{endpoint}
//	pagebuffer_requests_completed_total{endpoint}
//	pagebuffer_requests_failed_total{endpoint}
//	pagebuffer_error_backoff_ms{endpoint} (histogram)
//	pagebuffer_client_failed_total{endpoint,kind}
package pagebuffer

// Package dedupcache is an optional, Redis-backed guard against issuing
// a duplicate in-flight GET to the same page-buffer window from two
// supervisory goroutines at once — for example during a fan-out owner's
// failover handoff, where a new pagebuffer.Client might be armed for an
// endpoint/token pair a previous owner's Client hasn't finished polling
// yet.
//
// This is an enrichment beyond the core pagebuffer.Client, which works
// fully without it: a nil *Manager, or simply never consulting one, is a
// legal way to run a Client.
package dedupcache

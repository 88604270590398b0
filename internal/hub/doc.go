// Package hub implements the realtime connection hub: an authoritative
// registry of live connections, topic-addressed best-effort broadcast, a
// periodic liveness supervisor, a bounded debug trace, and the bridge that
// turns external job progress into broadcast events.
//
// The registry is guarded by a single reader-writer lock. The lock is only
// held to look up queue handles and mutate subscription sets, never across a
// network write; per-connection counters and activity timestamps are atomics
// so broadcast iteration can run under the read lock. Each connection owns a
// bounded outbound queue drained by its transport; enqueueing never blocks,
// so one stalled client cannot delay delivery to the rest.
package hub

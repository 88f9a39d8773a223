// Package hosttest is a complete in-memory stand-in for the DOME host:
// a core engine with module registries and a capturable log, a slot-array
// interpreter honoring every value kind, and an audio engine whose mix
// callbacks can be driven from a separate goroutine.
//
// It exists so the SDK's full contract — capability negotiation,
// registration ordering and rejection, slot traffic, fiber aborts,
// cross-thread audio failure deferral — can be exercised end to end without
// a running engine. cmd/run mounts a real plugin on it interactively.
package hosttest

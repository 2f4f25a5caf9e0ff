// Package gate implements the per-backend reliability gate: a four-state
// failure-isolation machine interposed in front of every outbound call to a
// backend-hosted tool.
//
// # States
//
// A gate starts CLOSED and moves through OPEN, HALF_OPEN, and DECONSTRUCTED
// as calls succeed or fail:
//
//	CLOSED --failures>=threshold--> OPEN
//	OPEN --backoff elapsed--> HALF_OPEN
//	OPEN --failures>=deconstruction threshold--> DECONSTRUCTED
//	HALF_OPEN --successes>=threshold--> CLOSED
//	HALF_OPEN --any failure--> OPEN
//	DECONSTRUCTED --consecutive successes>=2*threshold--> HALF_OPEN
//
// OPEN (until its backoff elapses) and DECONSTRUCTED both reject live calls
// and run a caller-supplied fallback instead when one is given; without a
// fallback, OPEN returns CircuitOpenError and DECONSTRUCTED returns
// ServiceDegradedError, signalling that the backend is degraded rather than
// merely unavailable. OPEN is the only state IsAvailable reports as
// unavailable.
//
// # Concurrency
//
// ReliabilityGate is safe for concurrent Call/IsAvailable/Metrics/Reset from
// many goroutines. State transitions and counter mutation happen under a
// single per-gate mutex so that two concurrent failures cannot double-count
// across the failure threshold.
//
// # Registry
//
// Registry maps backend identifiers to gates, creating them lazily with
// a shared default Config. Lookup is the hot path; creation is rare.
package gate

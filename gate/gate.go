package gate

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/aperturegate/observe"
)

// Op is an asynchronous operation guarded by a gate. Both the primary
// invocation and its optional fallback share this signature (design note:
// "Callable-plus-fallback parameter... pass both into call() as an explicit
// pair").
type Op func(ctx context.Context) (any, error)

// ErrorRecord is a bounded-retention entry in a gate's error log.
type ErrorRecord struct {
	Err       error
	Class     ErrorClass
	Timestamp time.Time
}

// BackendOutcomeRecord is the minimum history entry retained per backend for
// scoring (§3).
type BackendOutcomeRecord struct {
	Success   bool
	LatencyMS float64
	Timestamp time.Time
}

// ClassifyError reports whether err belongs to the programming-error class
// (invalid argument, missing attribute/key, type mismatch, unimplemented) or
// should be treated as retryable. Classification never affects transitions.
type ClassifyError func(err error) ErrorClass

// ReliabilityGate is a per-backend failure-isolation state machine. Safe for
// concurrent use.
type ReliabilityGate struct {
	backendID string
	config    Config
	classify  ClassifyError

	mu sync.Mutex

	state            State
	stateEnteredAt   time.Time
	failureCount     int
	successInHalf    int
	consecutiveOK    int
	halfOpenAttempts int
	halfOpenInFlight int

	lastFailureAt time.Time
	lastSuccessAt time.Time

	totalCalls     int64
	totalSuccesses int64
	totalFailures  int64

	errorLog []ErrorRecord
	history  []BackendOutcomeRecord
}

// New creates a ReliabilityGate for the given backend. A nil classify
// defaults every error to Retryable.
func New(backendID string, config Config, classify ClassifyError) *ReliabilityGate {
	if classify == nil {
		classify = func(error) ErrorClass { return Retryable }
	}
	now := time.Now()
	return &ReliabilityGate{
		backendID:      backendID,
		config:         config.withDefaults(),
		classify:       classify,
		state:          Closed,
		stateEnteredAt: now,
	}
}

// BackendID returns the backend this gate guards.
func (g *ReliabilityGate) BackendID() string {
	return g.backendID
}

// IsAvailable reports whether the gate currently admits live calls. OPEN is
// the only state from which the caller's perspective is unavailable.
func (g *ReliabilityGate) IsAvailable() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	state := g.currentStateLocked()
	return state != Open
}

// Call submits invoke through the gate. fallback, when non-nil, is invoked
// only when the gate pre-empts the call (OPEN backoff not yet elapsed, or
// DECONSTRUCTED) — never on a live failure of invoke itself.
func (g *ReliabilityGate) Call(ctx context.Context, invoke Op, fallback Op) (any, error) {
	g.mu.Lock()
	g.totalCalls++
	state := g.currentStateLocked()

	switch state {
	case Open:
		if fallback != nil {
			g.mu.Unlock()
			return fallback(ctx)
		}
		g.mu.Unlock()
		return nil, &CircuitOpenError{BackendID: g.backendID}

	case Deconstructed:
		if fallback != nil {
			g.mu.Unlock()
			return fallback(ctx)
		}
		g.mu.Unlock()
		return nil, &ServiceDegradedError{BackendID: g.backendID, FallbackAvailable: false}

	case HalfOpen:
		if g.halfOpenInFlight >= g.config.HalfOpenLimit {
			g.mu.Unlock()
			if fallback != nil {
				return fallback(ctx)
			}
			return nil, &CircuitOpenError{BackendID: g.backendID}
		}
		g.halfOpenInFlight++
	}
	g.mu.Unlock()

	result, err := g.execute(ctx, invoke)

	g.mu.Lock()
	if state == HalfOpen {
		g.halfOpenInFlight--
	}
	g.mu.Unlock()

	return result, err
}

func (g *ReliabilityGate) execute(ctx context.Context, invoke Op) (any, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.config.CallTimeout)
	defer cancel()

	start := time.Now()
	type outcome struct {
		val any
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		val, err := invoke(callCtx)
		done <- outcome{val: val, err: err}
	}()

	select {
	case o := <-done:
		latency := time.Since(start)
		if o.err != nil {
			g.onFailure(o.err, latency)
			return o.val, o.err
		}
		g.onSuccess(latency)
		return o.val, nil

	case <-callCtx.Done():
		latency := time.Since(start)
		err := &TimeoutError{BackendID: g.backendID}
		g.onFailure(err, latency)
		return nil, err
	}
}

func (g *ReliabilityGate) onSuccess(latency time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	g.totalSuccesses++
	g.lastSuccessAt = now
	g.consecutiveOK++
	g.appendHistoryLocked(BackendOutcomeRecord{Success: true, LatencyMS: float64(latency.Milliseconds()), Timestamp: now})

	switch g.state {
	case HalfOpen:
		g.successInHalf++
		if g.successInHalf >= g.config.SuccessThreshold {
			g.transitionLocked(Closed)
		}

	case Deconstructed:
		if g.consecutiveOK >= g.config.SuccessThreshold*g.config.DeconstructionRecoveryMultiplier {
			g.transitionLocked(HalfOpen)
		}

	case Closed:
		g.failureCount = 0
	}
}

func (g *ReliabilityGate) onFailure(err error, latency time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	g.totalFailures++
	g.failureCount++
	g.consecutiveOK = 0
	g.lastFailureAt = now

	g.appendHistoryLocked(BackendOutcomeRecord{Success: false, LatencyMS: float64(latency.Milliseconds()), Timestamp: now})
	g.appendErrorLocked(ErrorRecord{Err: err, Class: g.classify(err), Timestamp: now})

	switch g.state {
	case Closed:
		if g.failureCount >= g.config.FailureThreshold {
			g.transitionLocked(Open)
		}

	case HalfOpen:
		g.transitionLocked(Open)

	case Open:
		if g.failureCount >= g.config.DeconstructionThreshold {
			g.transitionLocked(Deconstructed)
		}
	}
}

// currentStateLocked resolves OPEN→HALF_OPEN backoff expiry before
// returning the current state. Caller must hold g.mu.
func (g *ReliabilityGate) currentStateLocked() State {
	if g.state == Open {
		backoff := g.config.ResetTimeout * time.Duration(1<<minInt(g.halfOpenAttempts, 5))
		if !g.lastFailureAt.IsZero() && time.Since(g.lastFailureAt) >= backoff {
			g.halfOpenAttempts++
			g.transitionLocked(HalfOpen)
		}
	}
	return g.state
}

// transitionLocked moves to the new state and resets per-state counters.
// Caller must hold g.mu.
func (g *ReliabilityGate) transitionLocked(to State) {
	from := g.state
	g.state = to
	g.stateEnteredAt = time.Now()

	if from != to {
		if g.config.Logger != nil {
			g.config.Logger.Info(context.Background(), "gate state transition",
				observe.Field{Key: "backend_id", Value: g.backendID},
				observe.Field{Key: "from_state", Value: from.String()},
				observe.Field{Key: "to_state", Value: to.String()},
			)
		}
		if g.config.Metrics != nil {
			g.config.Metrics.RecordGateTransition(context.Background(), g.backendID, from.String(), to.String())
		}
	}

	switch to {
	case Closed:
		g.failureCount = 0
		g.successInHalf = 0
		g.halfOpenAttempts = 0
	case Open:
		g.successInHalf = 0
	case HalfOpen:
		g.successInHalf = 0
		g.failureCount = 0
	case Deconstructed:
		// counters left as-is; consecutive successes keep accruing toward
		// recovery.
	}
}

func (g *ReliabilityGate) appendErrorLocked(rec ErrorRecord) {
	g.errorLog = append(g.errorLog, rec)
	if over := len(g.errorLog) - g.config.MaxErrorLog; over > 0 {
		g.errorLog = g.errorLog[over:]
	}
}

func (g *ReliabilityGate) appendHistoryLocked(rec BackendOutcomeRecord) {
	g.history = append(g.history, rec)
	if over := len(g.history) - g.config.MaxHistory; over > 0 {
		g.history = g.history[over:]
	}
}

// History returns a copy of the retained outcome history, oldest first.
func (g *ReliabilityGate) History() []BackendOutcomeRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]BackendOutcomeRecord, len(g.history))
	copy(out, g.history)
	return out
}

// Reset administratively transitions the gate to CLOSED, clearing
// per-state counters. Always safe.
func (g *ReliabilityGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transitionLocked(Closed)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CallT is a generic convenience wrapper around Call for callers with a
// concrete result type, avoiding any at call sites.
func CallT[T any](ctx context.Context, g *ReliabilityGate, invoke func(context.Context) (T, error), fallback func(context.Context) (T, error)) (T, error) {
	var zero T

	wrap := func(fn func(context.Context) (T, error)) Op {
		if fn == nil {
			return nil
		}
		return func(ctx context.Context) (any, error) {
			return fn(ctx)
		}
	}

	result, err := g.Call(ctx, wrap(invoke), wrap(fallback))
	if result == nil {
		if err != nil {
			return zero, err
		}
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, err
	}
	return typed, err
}

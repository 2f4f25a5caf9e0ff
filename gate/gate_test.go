package gate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func failingOp(err error) Op {
	return func(ctx context.Context) (any, error) { return nil, err }
}

func succeedingOp(val any) Op {
	return func(ctx context.Context) (any, error) { return val, nil }
}

func TestNew_DefaultsClosed(t *testing.T) {
	g := New("backend-a", Config{}, nil)
	if g.Metrics().State != Closed {
		t.Fatalf("initial state = %v, want Closed", g.Metrics().State)
	}
}

func TestGate_OpensAfterFailureThreshold(t *testing.T) {
	g := New("backend-a", Config{FailureThreshold: 3, CallTimeout: time.Second}, nil)
	testErr := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := g.Call(context.Background(), failingOp(testErr), nil)
		if !errors.Is(err, testErr) {
			t.Fatalf("call %d error = %v, want %v", i, err, testErr)
		}
		if g.Metrics().State != Closed {
			t.Fatalf("after %d failures, state = %v, want Closed", i+1, g.Metrics().State)
		}
	}

	if _, err := g.Call(context.Background(), failingOp(testErr), nil); !errors.Is(err, testErr) {
		t.Fatalf("3rd failure error = %v, want %v", err, testErr)
	}
	if g.Metrics().State != Open {
		t.Fatalf("after 3 failures, state = %v, want Open", g.Metrics().State)
	}

	// 4th call without fallback: CircuitOpen.
	_, err := g.Call(context.Background(), failingOp(testErr), nil)
	var openErr *CircuitOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("4th call error = %v, want *CircuitOpenError", err)
	}

	// 5th call with fallback: returns fallback value, doesn't touch backend
	// success counters.
	before := g.Metrics().TotalSuccesses
	val, err := g.Call(context.Background(), failingOp(testErr), succeedingOp("f"))
	if err != nil {
		t.Fatalf("fallback call error = %v, want nil", err)
	}
	if val != "f" {
		t.Fatalf("fallback call value = %v, want %q", val, "f")
	}
	if g.Metrics().TotalSuccesses != before {
		t.Fatalf("TotalSuccesses changed from fallback: %d -> %d", before, g.Metrics().TotalSuccesses)
	}
}

func TestGate_SuccessResetsFailureCountInClosed(t *testing.T) {
	g := New("backend-a", Config{FailureThreshold: 3}, nil)
	testErr := errors.New("boom")

	g.Call(context.Background(), failingOp(testErr), nil)
	g.Call(context.Background(), failingOp(testErr), nil)
	if g.Metrics().FailureCount != 2 {
		t.Fatalf("FailureCount = %d, want 2", g.Metrics().FailureCount)
	}

	g.Call(context.Background(), succeedingOp("ok"), nil)
	if g.Metrics().FailureCount != 0 {
		t.Fatalf("FailureCount after success = %d, want 0", g.Metrics().FailureCount)
	}
	if g.Metrics().State != Closed {
		t.Fatalf("state after success = %v, want Closed", g.Metrics().State)
	}
}

func TestGate_HalfOpenProbeRecoversOrReopens(t *testing.T) {
	g := New("backend-a", Config{
		FailureThreshold: 1,
		ResetTimeout:     10 * time.Millisecond,
		SuccessThreshold: 2,
	}, nil)
	testErr := errors.New("boom")

	// Open the circuit.
	g.Call(context.Background(), failingOp(testErr), nil)
	if g.Metrics().State != Open {
		t.Fatalf("state = %v, want Open", g.Metrics().State)
	}

	time.Sleep(15 * time.Millisecond)

	// First probe succeeds -> still HalfOpen (need 2).
	g.Call(context.Background(), succeedingOp("ok"), nil)
	if g.Metrics().State != HalfOpen {
		t.Fatalf("state after 1 probe success = %v, want HalfOpen", g.Metrics().State)
	}

	// A failure mid-probe sends it back to Open; half_open_attempts was
	// bumped when the gate entered HalfOpen.
	g.Call(context.Background(), failingOp(testErr), nil)
	if g.Metrics().State != Open {
		t.Fatalf("state after probe failure = %v, want Open", g.Metrics().State)
	}
	if g.halfOpenAttempts != 1 {
		t.Fatalf("halfOpenAttempts = %d, want 1", g.halfOpenAttempts)
	}

	time.Sleep(25 * time.Millisecond) // backoff is now doubled (2^1)

	g.Call(context.Background(), succeedingOp("ok"), nil)
	g.Call(context.Background(), succeedingOp("ok"), nil)
	if g.Metrics().State != Closed {
		t.Fatalf("state after 2 successful probes = %v, want Closed", g.Metrics().State)
	}
	if g.halfOpenAttempts != 0 {
		t.Fatalf("halfOpenAttempts after close = %d, want 0", g.halfOpenAttempts)
	}
}

func TestGate_DeconstructsAfterThreshold(t *testing.T) {
	g := New("backend-a", Config{
		FailureThreshold:        1,
		DeconstructionThreshold: 3,
		ResetTimeout:            time.Hour, // never auto half-open during this test
	}, nil)
	testErr := errors.New("boom")

	g.Call(context.Background(), failingOp(testErr), nil) // -> Open, failureCount=1
	for g.Metrics().FailureCount < 3 {
		g.onFailure(testErr, time.Millisecond) // direct, still Open state
	}

	if g.Metrics().State != Deconstructed {
		t.Fatalf("state = %v, want Deconstructed", g.Metrics().State)
	}

	// No fallback -> ServiceDegraded.
	_, err := g.Call(context.Background(), failingOp(testErr), nil)
	var degraded *ServiceDegradedError
	if !errors.As(err, &degraded) {
		t.Fatalf("error = %v, want *ServiceDegradedError", err)
	}
	if degraded.FallbackAvailable {
		t.Fatalf("FallbackAvailable = true, want false")
	}

	// With fallback -> fallback's value.
	val, err := g.Call(context.Background(), failingOp(testErr), succeedingOp("f"))
	if err != nil || val != "f" {
		t.Fatalf("fallback call = (%v, %v), want (f, nil)", val, err)
	}
}

func TestGate_IsAvailable(t *testing.T) {
	g := New("backend-a", Config{FailureThreshold: 1, ResetTimeout: time.Hour}, nil)
	if !g.IsAvailable() {
		t.Fatalf("new gate should be available")
	}
	g.Call(context.Background(), failingOp(errors.New("boom")), nil)
	if g.IsAvailable() {
		t.Fatalf("open gate should be unavailable")
	}
}

func TestGate_Reset(t *testing.T) {
	g := New("backend-a", Config{FailureThreshold: 1}, nil)
	g.Call(context.Background(), failingOp(errors.New("boom")), nil)
	if g.Metrics().State != Open {
		t.Fatalf("precondition: state should be Open")
	}
	g.Reset()
	if g.Metrics().State != Closed {
		t.Fatalf("state after Reset = %v, want Closed", g.Metrics().State)
	}
	if g.Metrics().FailureCount != 0 {
		t.Fatalf("FailureCount after Reset = %d, want 0", g.Metrics().FailureCount)
	}
}

func TestGate_TimeoutIsFailure(t *testing.T) {
	g := New("backend-a", Config{FailureThreshold: 1, CallTimeout: 10 * time.Millisecond}, nil)
	slow := func(ctx context.Context) (any, error) {
		select {
		case <-time.After(100 * time.Millisecond):
			return "too slow", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	_, err := g.Call(context.Background(), slow, nil)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *TimeoutError", err)
	}
	if g.Metrics().State != Open {
		t.Fatalf("state after timeout = %v, want Open", g.Metrics().State)
	}
}

func TestGate_HistoryBounded(t *testing.T) {
	g := New("backend-a", Config{MaxHistory: 3}, nil)
	for i := 0; i < 10; i++ {
		g.Call(context.Background(), succeedingOp("ok"), nil)
	}
	if len(g.History()) != 3 {
		t.Fatalf("len(History()) = %d, want 3", len(g.History()))
	}
}

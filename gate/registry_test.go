package gate

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry_GetIsLazyAndStable(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil)
	g1 := r.Get("backend-a")
	g2 := r.Get("backend-a")
	if g1 != g2 {
		t.Fatalf("Get returned distinct gates for the same backend id")
	}
	if len(r.BackendIDs()) != 1 {
		t.Fatalf("BackendIDs() = %v, want 1 entry", r.BackendIDs())
	}
}

func TestRegistry_IsAvailableUnknownBackend(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil)
	if !r.IsAvailable("never-seen") {
		t.Fatalf("unknown backend should be reported available")
	}
	if len(r.BackendIDs()) != 0 {
		t.Fatalf("IsAvailable on unknown backend must not force creation, got %v", r.BackendIDs())
	}
}

func TestRegistry_MetricsAndResetAll(t *testing.T) {
	r := NewRegistry(Config{FailureThreshold: 1}, nil)
	g := r.Get("backend-a")
	g.Call(context.Background(), failingOp(errors.New("boom")), nil)

	metrics := r.Metrics()
	if metrics["backend-a"].State != Open {
		t.Fatalf("Metrics()[backend-a].State = %v, want Open", metrics["backend-a"].State)
	}

	r.ResetAll()
	if g.Metrics().State != Closed {
		t.Fatalf("state after ResetAll = %v, want Closed", g.Metrics().State)
	}
}

package gate

import "time"

// Snapshot is a read-only view of a gate's counters and derived rates (§6
// "Metrics surface").
type Snapshot struct {
	BackendID            string
	State                State
	TotalCalls           int64
	TotalSuccesses       int64
	TotalFailures        int64
	SuccessRate          float64
	FailureCount         int
	ConsecutiveSuccesses int
	TimeInState          time.Duration
	RecentErrorsCount    int
}

// Metrics returns a point-in-time snapshot of the gate's counters.
func (g *ReliabilityGate) Metrics() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.currentStateLocked()

	var successRate float64
	if g.totalCalls > 0 {
		successRate = float64(g.totalSuccesses) / float64(g.totalCalls)
	}

	return Snapshot{
		BackendID:            g.backendID,
		State:                state,
		TotalCalls:           g.totalCalls,
		TotalSuccesses:       g.totalSuccesses,
		TotalFailures:        g.totalFailures,
		SuccessRate:          successRate,
		FailureCount:         g.failureCount,
		ConsecutiveSuccesses: g.consecutiveOK,
		TimeInState:          time.Since(g.stateEnteredAt),
		RecentErrorsCount:    len(g.errorLog),
	}
}

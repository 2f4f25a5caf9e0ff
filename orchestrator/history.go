package orchestrator

import (
	"sync"
	"time"

	"github.com/jonwraymond/aperturegate/gate"
)

// maxOutcomeHistory bounds the per-backend outcome window used for server
// scoring (§3 "recommend ≤ 256 entries per backend").
const maxOutcomeHistory = 256

// history is the orchestrator-owned tool-latency/session-history store
// (§4.4, §4.5) feeding server-score and context-relevance calculations and
// the planner's duration estimate. It is distinct from a gate's own
// outcome history: gates track call-level success/latency for circuit
// transitions, this store tracks tool-level latency for planning and
// backend-level outcome for ranking.
type history struct {
	mu sync.RWMutex

	backendOutcomes map[string][]gate.BackendOutcomeRecord
	toolLatency     map[string][]time.Duration
	sessionToolUses map[string]map[string]int
}

func newHistory() *history {
	return &history{
		backendOutcomes: make(map[string][]gate.BackendOutcomeRecord),
		toolLatency:     make(map[string][]time.Duration),
		sessionToolUses: make(map[string]map[string]int),
	}
}

// recordOutcome appends a backend-level outcome (for server scoring) and a
// tool-level latency sample (for planning).
func (h *history) recordOutcome(backendID, toolID string, success bool, latency time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	recs := append(h.backendOutcomes[backendID], gate.BackendOutcomeRecord{
		Success:   success,
		LatencyMS: float64(latency.Milliseconds()),
		Timestamp: time.Now(),
	})
	if over := len(recs) - maxOutcomeHistory; over > 0 {
		recs = recs[over:]
	}
	h.backendOutcomes[backendID] = recs

	lat := append(h.toolLatency[toolID], latency)
	if over := len(lat) - maxOutcomeHistory; over > 0 {
		lat = lat[over:]
	}
	h.toolLatency[toolID] = lat
}

// recordToolUse records a successful tool invocation within a session for
// the context-relevance bonus. Failed uses are not recorded — only
// "prior successful use" counts per §4.4.
func (h *history) recordToolUse(sessionID, toolID string, success bool) {
	if !success || sessionID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	uses, ok := h.sessionToolUses[sessionID]
	if !ok {
		uses = make(map[string]int)
		h.sessionToolUses[sessionID] = uses
	}
	uses[toolID]++
}

func (h *history) backendHistory(backendID string) []gate.BackendOutcomeRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	recs := h.backendOutcomes[backendID]
	out := make([]gate.BackendOutcomeRecord, len(recs))
	copy(out, recs)
	return out
}

func (h *history) priorSuccessfulUses(sessionID, toolID string) int {
	if sessionID == "" {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessionToolUses[sessionID][toolID]
}

// meanToolLatency returns the tool's mean recorded latency and whether any
// samples exist, for the planner's LatencyLookup.
func (h *history) meanToolLatency(toolID string) (time.Duration, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	samples := h.toolLatency[toolID]
	if len(samples) == 0 {
		return 0, false
	}
	var total time.Duration
	for _, s := range samples {
		total += s
	}
	return total / time.Duration(len(samples)), true
}

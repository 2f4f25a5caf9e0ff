package gate

import (
	"time"

	"github.com/jonwraymond/aperturegate/observe"
)

// Config configures a ReliabilityGate's state-machine thresholds.
type Config struct {
	// FailureThreshold is the number of consecutive failures in CLOSED
	// before the gate opens. Default: 5
	FailureThreshold int

	// CallTimeout bounds the wall-clock duration of a single invocation.
	// Default: 30s
	CallTimeout time.Duration

	// HalfOpenLimit is the maximum number of probe calls admitted while
	// HALF_OPEN. Default: 3
	HalfOpenLimit int

	// SuccessThreshold is the number of successful probes required in
	// HALF_OPEN before the gate closes. Default: 2
	SuccessThreshold int

	// DeconstructionThreshold is the failure count, accumulated while OPEN,
	// at which the gate moves to DECONSTRUCTED. Default: 10
	DeconstructionThreshold int

	// ResetTimeout is the base backoff before the first HALF_OPEN probe
	// after opening. Default: 60s
	ResetTimeout time.Duration

	// DeconstructionRecoveryMultiplier scales SuccessThreshold to determine
	// how many consecutive successes while DECONSTRUCTED are required
	// before probing resumes in HALF_OPEN. Default: 2 (see DESIGN.md Open
	// Questions).
	DeconstructionRecoveryMultiplier int

	// MaxErrorLog bounds the retained error log. Default: 100
	MaxErrorLog int

	// MaxHistory bounds the retained outcome history. Default: 256
	MaxHistory int

	// Logger, when set, receives a log line on every state transition. Nil
	// is a valid no-op default.
	Logger observe.Logger

	// Metrics, when set, receives a gate.transitions.total increment on
	// every state transition, tagged by backend id and from/to state. Nil
	// is a valid no-op default.
	Metrics observe.Metrics
}

// DefaultConfig returns the policy defaults from the specification.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:                 5,
		CallTimeout:                      30 * time.Second,
		HalfOpenLimit:                    3,
		SuccessThreshold:                 2,
		DeconstructionThreshold:          10,
		ResetTimeout:                     60 * time.Second,
		DeconstructionRecoveryMultiplier: 2,
		MaxErrorLog:                      100,
		MaxHistory:                       256,
	}
}

// withDefaults fills zero-valued fields with DefaultConfig values.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = d.CallTimeout
	}
	if c.HalfOpenLimit <= 0 {
		c.HalfOpenLimit = d.HalfOpenLimit
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = d.SuccessThreshold
	}
	if c.DeconstructionThreshold <= 0 {
		c.DeconstructionThreshold = d.DeconstructionThreshold
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = d.ResetTimeout
	}
	if c.DeconstructionRecoveryMultiplier <= 0 {
		c.DeconstructionRecoveryMultiplier = d.DeconstructionRecoveryMultiplier
	}
	if c.MaxErrorLog <= 0 {
		c.MaxErrorLog = d.MaxErrorLog
	}
	if c.MaxHistory <= 0 {
		c.MaxHistory = d.MaxHistory
	}
	return c
}

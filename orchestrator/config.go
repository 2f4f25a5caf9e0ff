package orchestrator

import (
	"fmt"
	"time"
)

// Config tunes discovery and caching behavior.
type Config struct {
	// TopK is the number of ranked tools returned by Discover. Default: 5
	TopK int

	// CacheTTL bounds how long a discovery result is cached. Default: 300s
	CacheTTL time.Duration

	// MaxParallel is forwarded to the planner for execution planning.
	// Default: 5
	MaxParallel int

	// CollapseConcurrentMisses, when true, uses singleflight to collapse
	// concurrent identical-key cache misses into one embed+search+score
	// computation. The specification's baseline behavior (§5 "two
	// concurrent identical discoveries may both miss and both compute") is
	// the default (false); see DESIGN.md Open Question.
	CollapseConcurrentMisses bool
}

// DefaultConfig returns the policy defaults from the specification.
func DefaultConfig() Config {
	return Config{
		TopK:        5,
		CacheTTL:    300 * time.Second,
		MaxParallel: 5,
	}
}

// Validate checks the configuration for obviously invalid values, in the
// style of observe.Config.Validate.
func (c Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("orchestrator: TopK must be positive, got %d", c.TopK)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("orchestrator: CacheTTL must not be negative, got %v", c.CacheTTL)
	}
	if c.MaxParallel <= 0 {
		return fmt.Errorf("orchestrator: MaxParallel must be positive, got %d", c.MaxParallel)
	}
	return nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.MaxParallel <= 0 {
		c.MaxParallel = d.MaxParallel
	}
	return c
}

package planner

import (
	"context"
	"time"
)

// ExecutionPlan is the planner's output: stages preserve the guarantee
// that every dependency appears in an earlier stage than any dependent.
// Dependencies is carried alongside Stages so callers can inspect the raw
// edges without re-deriving them (supplemental to the core value object,
// mirrored from the original implementation's ExecutionPlan.dependencies).
type ExecutionPlan struct {
	Stages            [][]string
	Dependencies      map[string][]string
	EstimatedDuration time.Duration
}

// Plan builds a dependency-respecting, resource-bounded ExecutionPlan for
// calls. lookup supplies historical per-call latency for duration
// estimation; a nil lookup always falls back to the configured default.
func Plan(ctx context.Context, calls []CallDescriptor, cfg Config, lookup LatencyLookup) (ExecutionPlan, error) {
	cfg = cfg.withDefaults()

	normalized := normalizeIDs(calls)
	order := make([]string, len(normalized))
	for i, c := range normalized {
		order[i] = c.ID
	}

	deps := DetectDependencies(normalized)
	if hasCycle(order, deps) {
		return ExecutionPlan{}, ErrCyclicDependency
	}

	groups := GroupParallel(deps, order)
	stages := ApplyResourceLimit(groups, cfg.MaxParallel)
	duration := EstimateDuration(stages, lookup, time.Duration(cfg.DefaultLatencyMS)*time.Millisecond)

	return ExecutionPlan{
		Stages:            stages,
		Dependencies:      deps,
		EstimatedDuration: duration,
	}, nil
}

func hasCycle(order []string, deps map[string][]string) bool {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(order))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case visiting:
			return true
		case done:
			return false
		}
		state[id] = visiting
		for _, dep := range deps[id] {
			if visit(dep) {
				return true
			}
		}
		state[id] = done
		return false
	}

	for _, id := range order {
		if visit(id) {
			return true
		}
	}
	return false
}

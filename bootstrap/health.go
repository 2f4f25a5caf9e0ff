package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/aperturegate/gate"
	"github.com/jonwraymond/aperturegate/health"
	"github.com/jonwraymond/aperturegate/orchestrator"
)

var errBackendsDeconstructed = errors.New("bootstrap: one or more backends are deconstructed")

// gateChecker adapts a gate.Registry snapshot into a health.Checker: any
// DECONSTRUCTED backend makes the gateway unhealthy, any OPEN or HALF_OPEN
// backend makes it degraded.
type gateChecker struct {
	gates *gate.Registry
}

var _ health.Checker = gateChecker{}

func (gateChecker) Name() string { return "backend-gates" }

func (c gateChecker) Check(_ context.Context) health.Result {
	snapshots := c.gates.Metrics()
	if len(snapshots) == 0 {
		return health.Healthy("no backends registered yet")
	}

	var deconstructed, degraded []string
	perBackend := make([]health.Result, 0, len(snapshots))
	for id, snap := range snapshots {
		switch snap.State {
		case gate.Deconstructed:
			deconstructed = append(deconstructed, id)
			perBackend = append(perBackend, health.Unhealthy(id, errBackendsDeconstructed))
		case gate.Open, gate.HalfOpen:
			degraded = append(degraded, id)
			perBackend = append(perBackend, health.Degraded(id))
		default:
			perBackend = append(perBackend, health.Healthy(id))
		}
	}

	details := map[string]any{
		"backend_count": len(snapshots),
		"by_status":     health.CountByStatus(perBackend),
	}
	if len(deconstructed) > 0 {
		details["deconstructed"] = deconstructed
		return health.Unhealthy(
			fmt.Sprintf("%d backend(s) deconstructed", len(deconstructed)),
			errBackendsDeconstructed,
		).WithDetails(details)
	}
	if len(degraded) > 0 {
		details["degraded"] = degraded
		return health.Degraded(fmt.Sprintf("%d backend(s) open or probing", len(degraded))).WithDetails(details)
	}
	return health.Healthy("all backends closed").WithDetails(details)
}

// orchestratorChecker reports unhealthy until the tool index has been
// built at least once.
type orchestratorChecker struct {
	gw *Gateway
}

var _ health.Checker = orchestratorChecker{}

func (orchestratorChecker) Name() string { return "orchestrator-index" }

func (c orchestratorChecker) Check(ctx context.Context) health.Result {
	if _, err := c.gw.Orchestrator.Discover(ctx, "", orchestrator.Context{}); err == orchestrator.ErrNotInitialized {
		return health.Unhealthy("tool index has not been built", err)
	}
	return health.Healthy("tool index is built")
}

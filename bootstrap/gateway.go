package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/aperturegate/auth"
	"github.com/jonwraymond/aperturegate/cache"
	"github.com/jonwraymond/aperturegate/capgraph"
	"github.com/jonwraymond/aperturegate/embedding"
	"github.com/jonwraymond/aperturegate/gate"
	"github.com/jonwraymond/aperturegate/health"
	"github.com/jonwraymond/aperturegate/observe"
	"github.com/jonwraymond/aperturegate/orchestrator"
	"github.com/jonwraymond/aperturegate/resilience"
	"github.com/jonwraymond/aperturegate/secret"
	"github.com/jonwraymond/aperturegate/semindex"
	"github.com/jonwraymond/aperturegate/toolcat"
)

// Gateway is the fully wired tool orchestration gateway: a tool catalog,
// an embedding-backed semantic orchestrator, a per-backend reliability
// gate registry, a capability graph, secret resolution and a health
// aggregator, composed the way a deployment's main package would wire
// them.
type Gateway struct {
	Registry     toolcat.Registry
	Gates        *gate.Registry
	Graph        *capgraph.CapabilityGraph
	Orchestrator *orchestrator.SemanticOrchestrator
	Secrets      *secret.Resolver
	Health       *health.Aggregator

	executor      *resilience.Executor
	authenticator auth.Authenticator
	authorizer    auth.Authorizer
}

// New assembles a Gateway from cfg, a tool registry and an embedding
// model. Optional collaborators come from opts: the vector index defaults
// to an in-memory semindex.FlatIndex; the authorizer defaults to one built
// from cfg.RBAC, or auth.AllowAllAuthorizer when that is nil; an observer
// is forwarded to the orchestrator and also supplies the gate logger and
// metrics that cfg.Gate leaves nil.
func New(
	cfg Config,
	registry toolcat.Registry,
	model embedding.Model,
	opts ...Option,
) (*Gateway, error) {
	cfg = withConfigDefaults(cfg)

	settings := &gatewaySettings{config: cfg}
	for _, opt := range opts {
		opt(settings)
	}

	if settings.observer != nil {
		if cfg.Gate.Logger == nil {
			cfg.Gate.Logger = settings.observer.Logger()
		}
		if cfg.Gate.Metrics == nil {
			if m, err := observe.NewMetricsFromObserver(settings.observer); err == nil {
				cfg.Gate.Metrics = m
			}
		}
	}

	gw := &Gateway{
		Registry: registry,
		Gates:    gate.NewRegistry(cfg.Gate, nil),
		Graph:    capgraph.New(),
		Secrets:  secret.NewResolver(true, envProvider{}),
		Health:   health.NewAggregator(),
	}

	index := settings.index
	if index == nil {
		index = semindex.NewFlatIndex()
	}

	var cacheStore cache.Cache
	if settings.disableCache {
		cacheStore = nil
	} else {
		cacheStore = cache.NewMemoryCache(cfg.CachePolicy)
	}

	authorizer := resolveAuthorizer(cfg, settings.authorizer)

	var orchOpts []orchestrator.Option
	if settings.observer != nil {
		orchOpts = append(orchOpts, orchestrator.WithObserver(settings.observer))
	}
	orchOpts = append(orchOpts, orchestrator.WithAuthorizer(authorizer))

	gw.Orchestrator = orchestrator.New(
		registry, model, index, cacheStore, gw.Gates, gw.Graph, cfg.Orchestrator, orchOpts...,
	)

	gw.executor = buildExecutor(cfg)
	gw.authenticator = buildAuthenticator(cfg)
	gw.authorizer = authorizer

	gw.Health.Register("backend-gates", gateChecker{gates: gw.Gates})
	gw.Health.Register("orchestrator-index", orchestratorChecker{gw: gw})

	return gw, nil
}

// gatewaySettings collects the optional collaborators Option values set.
type gatewaySettings struct {
	config       Config
	observer     observe.Observer
	authorizer   auth.Authorizer
	index        semindex.Index
	disableCache bool
}

// Option configures optional Gateway collaborators.
type Option func(*gatewaySettings)

// WithObserver attaches tracing/metrics/logging to the orchestrator.
func WithObserver(o observe.Observer) Option {
	return func(s *gatewaySettings) { s.observer = o }
}

// WithAuthorizer overrides the RBAC-derived authorizer built from
// Config.RBAC.
func WithAuthorizer(a auth.Authorizer) Option {
	return func(s *gatewaySettings) { s.authorizer = a }
}

// WithVectorIndex swaps the default flat index for another semindex.Index
// implementation (e.g. a sharded or ANN-backed one).
func WithVectorIndex(index semindex.Index) Option {
	return func(s *gatewaySettings) { s.index = index }
}

// WithoutCache disables the discovery result cache entirely.
func WithoutCache() Option {
	return func(s *gatewaySettings) { s.disableCache = true }
}

func resolveAuthorizer(cfg Config, override auth.Authorizer) auth.Authorizer {
	if override != nil {
		return override
	}
	if cfg.RBAC != nil {
		return auth.NewSimpleRBACAuthorizer(*cfg.RBAC)
	}
	return auth.AllowAllAuthorizer{}
}

func buildExecutor(cfg Config) *resilience.Executor {
	var opts []resilience.ExecutorOption
	if cfg.BackendTimeout > 0 {
		opts = append(opts, resilience.WithTimeout(cfg.BackendTimeout))
	}
	if cfg.BackendRetry != nil {
		opts = append(opts, resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  cfg.BackendRetry.MaxAttempts,
			InitialDelay: cfg.BackendRetry.InitialDelay,
			MaxDelay:     cfg.BackendRetry.MaxDelay,
			// A canceled or already-timed-out call will never succeed on
			// retry; retrying just burns another attempt against the
			// backend for nothing.
			RetryIf: resilience.RetryIfNot(context.Canceled, context.DeadlineExceeded),
		})))
	}
	if cfg.BackendRateLimit != nil {
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:  cfg.BackendRateLimit.Rate,
			Burst: cfg.BackendRateLimit.Burst,
		})))
	}
	if cfg.BackendBulkhead != nil {
		opts = append(opts, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: cfg.BackendBulkhead.MaxConcurrent,
			MaxWait:       cfg.BackendBulkhead.MaxWait,
		})))
	}
	// Deliberately no WithCircuitBreaker: the gate package is this
	// gateway's circuit breaker. Layering resilience.CircuitBreaker inside
	// gate.Call would duplicate open/closed bookkeeping against a second,
	// uncoordinated state machine.
	return resilience.NewExecutor(opts...)
}

// Invoke calls a backend tool through both layers of reliability: the
// per-backend gate (state machine, fallback routing) wraps the resilience
// executor (timeout/retry/bulkhead/rate-limit), which wraps op. The
// identity attached to ctx (via auth.WithIdentity) is checked against
// ActionInvokeTool before op ever runs. Outcomes feed the orchestrator's
// ranking history via RecordOutcome.
func (gw *Gateway) Invoke(
	ctx context.Context,
	backendID, toolID string,
	op func(context.Context) (any, error),
	fallback func(context.Context) (any, error),
) (any, error) {
	if gw.authorizer != nil {
		if identity := auth.IdentityFromContext(ctx); identity != nil {
			req := &auth.AuthzRequest{
				Subject:      identity,
				Resource:     "tool:" + toolID,
				Action:       auth.ActionInvokeTool,
				ResourceType: "tool",
			}
			if err := gw.authorizer.Authorize(ctx, req); err != nil {
				return nil, fmt.Errorf("bootstrap: invoke: %w", err)
			}
		}
	}

	start := time.Now()

	wrapped := func(ctx context.Context) (any, error) {
		var result any
		err := gw.executor.Execute(ctx, func(ctx context.Context) error {
			r, err := op(ctx)
			result = r
			return err
		})
		return result, err
	}

	var fallbackOp gate.Op
	if fallback != nil {
		fallbackOp = func(ctx context.Context) (any, error) { return fallback(ctx) }
	}

	result, err := gw.Gates.Get(backendID).Call(ctx, wrapped, fallbackOp)
	gw.Orchestrator.RecordOutcome(backendID, toolID, err == nil, time.Since(start))
	return result, err
}

func withConfigDefaults(cfg Config) Config {
	d := DefaultConfig()
	if cfg.Gate == (gate.Config{}) {
		cfg.Gate = d.Gate
	}
	if cfg.Orchestrator.TopK == 0 && cfg.Orchestrator.MaxParallel == 0 {
		cfg.Orchestrator = d.Orchestrator
	}
	if cfg.CachePolicy == (cache.Policy{}) {
		cfg.CachePolicy = d.CachePolicy
	}
	if cfg.BackendTimeout == 0 {
		cfg.BackendTimeout = d.BackendTimeout
	}
	return cfg
}

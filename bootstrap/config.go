package bootstrap

import (
	"time"

	"github.com/jonwraymond/aperturegate/auth"
	"github.com/jonwraymond/aperturegate/cache"
	"github.com/jonwraymond/aperturegate/gate"
	"github.com/jonwraymond/aperturegate/orchestrator"
)

// Config describes how to assemble a Gateway. Zero values fall back to the
// same defaults the individual packages use (gate.DefaultConfig,
// orchestrator.DefaultConfig, cache.DiscoveryPolicy).
type Config struct {
	// Gate is the default reliability-gate config new backends are lazily
	// created with.
	Gate gate.Config

	// Orchestrator tunes discovery and caching.
	Orchestrator orchestrator.Config

	// CachePolicy bounds the discovery cache's TTLs.
	CachePolicy cache.Policy

	// RBAC, if non-nil, is used to build a SimpleRBACAuthorizer for the
	// orchestrator's context filter. A nil value means every identity may
	// discover every tool (auth.AllowAllAuthorizer).
	RBAC *auth.RBACConfig

	// BackendTimeout bounds a single backend call beneath a reliability
	// gate, independent of the gate's own CallTimeout (the resilience
	// executor wraps the live call the gate invokes, not the fallback).
	BackendTimeout time.Duration

	// BackendRetry configures retries for transient backend failures.
	// Zero value disables retrying (a single attempt).
	BackendRetry *ResilienceRetryConfig

	// BackendRateLimit, if non-nil, caps the aggregate call rate across all
	// backends sharing this Gateway.
	BackendRateLimit *ResilienceRateLimitConfig

	// BackendBulkhead, if non-nil, caps in-flight backend calls.
	BackendBulkhead *ResilienceBulkheadConfig

	// JWT, if non-nil, adds a JWT authenticator to the Gateway's
	// authenticator chain, validated against JWTSigningKey.
	JWT           *auth.JWTConfig
	JWTSigningKey []byte

	// APIKeys, if non-nil, adds an already-configured API key authenticator
	// to the Gateway's authenticator chain.
	APIKeys *auth.APIKeyAuthenticator

	// OAuth2, if non-nil, adds a token-introspection authenticator to the
	// Gateway's authenticator chain.
	OAuth2 *auth.OAuth2Config
}

// ResilienceRetryConfig mirrors resilience.RetryConfig's tunables the
// gateway exposes; it is kept separate so bootstrap.Config doesn't force
// callers to import resilience just to leave retry disabled (nil).
type ResilienceRetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// ResilienceRateLimitConfig mirrors resilience.RateLimiterConfig's tunables.
type ResilienceRateLimitConfig struct {
	Rate  float64
	Burst int
}

// ResilienceBulkheadConfig mirrors resilience.BulkheadConfig's tunables.
type ResilienceBulkheadConfig struct {
	MaxConcurrent int
	MaxWait       time.Duration
}

// DefaultConfig returns a Gateway config using every package's own
// defaults and an allow-all authorizer.
func DefaultConfig() Config {
	return Config{
		Gate:           gate.DefaultConfig(),
		Orchestrator:   orchestrator.DefaultConfig(),
		CachePolicy:    cache.DiscoveryPolicy(),
		BackendTimeout: 30 * time.Second,
	}
}

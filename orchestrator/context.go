package orchestrator

import "github.com/jonwraymond/aperturegate/auth"

// Context is the structured discovery context. Recognized fields are
// enumerated below; Extra carries forward-compatible keys the core
// ignores for behavior (§4.3 design note "Dynamic context map").
type Context struct {
	// RequiredCapabilities: a tool survives filtering iff its capability
	// set is a superset of this list.
	RequiredCapabilities []string

	// AuthRequired: if true, only tools declaring RequiresAuth survive.
	AuthRequired bool

	// SessionID scopes the historical-use bonus for context relevance.
	SessionID string

	// WorkflowType names a workflow in the CapabilityGraph; membership
	// yields a context-relevance bonus.
	WorkflowType string

	// Identity, when set, is checked against an optional auth.Authorizer
	// as a supplemental filter beyond the core's capability/auth
	// predicates. Never required by the base specification.
	Identity *auth.Identity

	// Extra carries unrecognized keys for forward compatibility. Ignored
	// for ranking and filtering.
	Extra map[string]any
}

// Package bootstrap wires the gateway's building blocks — tool catalog,
// embedding model, vector index, cache, per-backend reliability gates,
// the capability graph, the semantic orchestrator, auth, secrets and
// health — into a single Gateway, the way a deployment's main package
// would.
package bootstrap

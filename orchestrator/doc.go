// Package orchestrator implements semantic tool discovery and
// dependency-aware execution planning over a catalog of backend-hosted
// tools: vector search for candidate retrieval, context-aware filtering,
// multi-factor scoring, and caching of the ranked result.
package orchestrator

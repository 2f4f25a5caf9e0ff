// Package capgraph tracks typed relationships between tools (e.g.
// "produces-input-for", "alternative-of") and named multi-tool workflows,
// so the orchestrator can fold related-tool context into discovery
// ranking. Mutation is rare (catalog rebuilds); reads happen on every
// discovery call, so the graph is optimized for concurrent readers.
package capgraph

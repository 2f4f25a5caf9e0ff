// Package toolcat defines the external tool-catalog contract the
// orchestrator builds its index from. Tool is a deliberately thin data
// model; Registry is a single method (GetAllTools) so the orchestrator
// never invents tool identities of its own (§6 "no tool ids invented by
// the core").
package toolcat

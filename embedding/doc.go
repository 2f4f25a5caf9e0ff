// Package embedding defines the external contract for turning text into
// dense vectors for semantic tool discovery. The only bundled model is
// HashingModel, a deterministic hash-based reference for tests and
// examples; callers inject a Model backed by whatever embedding provider
// they run.
package embedding

// Package semindex defines the external contract for nearest-neighbor
// vector search over tool embeddings, plus a brute-force reference
// implementation. Production deployments inject a real ANN-backed Index;
// FlatIndex exists for tests and the bootstrap example where the corpus is
// small enough that exhaustive search is fine.
package semindex

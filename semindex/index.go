package semindex

import (
	"context"
	"errors"
)

// ErrEmptyIndex is returned by Search when the index has no vectors.
var ErrEmptyIndex = errors.New("semindex: index is empty")

// Index is a nearest-neighbor vector search contract over L2 distance.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Add returns the handle assigned to each vector, in the same order
//     the vectors were passed; handles are stable for the lifetime of the
//     index and are what callers store to map back to a Tool.
//   - Search returns ids and parallel distances ordered ascending by
//     distance (closest first); len(ids) <= k.
type Index interface {
	Add(ctx context.Context, vectors [][]float32) ([]int, error)
	Search(ctx context.Context, query []float32, k int) (ids []int, distances []float32, err error)
}

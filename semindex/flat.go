package semindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// FlatIndex is a brute-force L2 reference implementation. Search is O(n)
// per query; fine for the catalog sizes exercised in tests and the
// bootstrap example, not meant for production-scale tool counts.
type FlatIndex struct {
	mu      sync.RWMutex
	vectors [][]float32
}

// NewFlatIndex creates an empty FlatIndex.
func NewFlatIndex() *FlatIndex {
	return &FlatIndex{}
}

// Add appends vectors and returns their assigned handles.
func (f *FlatIndex) Add(_ context.Context, vectors [][]float32) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]int, len(vectors))
	for i, v := range vectors {
		id := len(f.vectors)
		cp := make([]float32, len(v))
		copy(cp, v)
		f.vectors = append(f.vectors, cp)
		ids[i] = id
	}
	return ids, nil
}

// Search returns the k nearest handles to query by ascending L2 distance.
func (f *FlatIndex) Search(_ context.Context, query []float32, k int) ([]int, []float32, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.vectors) == 0 {
		return nil, nil, ErrEmptyIndex
	}
	if k <= 0 || k > len(f.vectors) {
		k = len(f.vectors)
	}

	type candidate struct {
		id   int
		dist float32
	}
	candidates := make([]candidate, len(f.vectors))
	for id, v := range f.vectors {
		candidates[id] = candidate{id: id, dist: l2(query, v)}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})

	ids := make([]int, k)
	distances := make([]float32, k)
	for i := 0; i < k; i++ {
		ids[i] = candidates[i].id
		distances[i] = candidates[i].dist
	}
	return ids, distances, nil
}

func l2(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}

var _ Index = (*FlatIndex)(nil)

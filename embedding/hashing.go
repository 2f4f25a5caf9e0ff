package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// HashingModel is a deterministic, dependency-free reference Model for
// tests and the bootstrap example. It derives a fixed-dimension vector from
// the SHA-256 digest of the input text, grounded on the teacher's
// DefaultKeyer canonical-hash approach (cache/keyer.go) rather than on any
// real semantic model. Production deployments inject a real embedding
// provider.
type HashingModel struct {
	Dims int
}

// NewHashingModel creates a HashingModel producing vectors of the given
// dimensionality. dims<=0 defaults to 32.
func NewHashingModel(dims int) *HashingModel {
	if dims <= 0 {
		dims = 32
	}
	return &HashingModel{Dims: dims}
}

// Encode implements Model.
func (m *HashingModel) Encode(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vector(text)
	}
	return out, nil
}

func (m *HashingModel) vector(text string) []float32 {
	vec := make([]float32, m.Dims)
	seed := []byte(text)
	for i := 0; i < m.Dims; i++ {
		h := sha256.Sum256(append(seed, byte(i), byte(i>>8)))
		bits := binary.BigEndian.Uint32(h[:4])
		vec[i] = (float32(bits) / float32(math.MaxUint32)) * 2 - 1
	}
	normalize(vec)
	return vec
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
}

var _ Model = (*HashingModel)(nil)

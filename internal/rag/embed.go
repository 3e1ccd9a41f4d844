// ABOUTME: Deterministic hash embedder used when no embeddings API is configured
// ABOUTME: Byte values accumulate into dim buckets, then the vector is L2-normalized

package rag

import (
	"context"
	"math"

	"github.com/mauromedda/medsupport-go/pkg/ai"
)

// DefaultEmbeddingDim is the hash embedder's vector length.
const DefaultEmbeddingDim = 128

// HashEmbedder produces stable vectors without any network call. The vectors carry
// no semantics beyond byte composition; they let retrieval work offline.
type HashEmbedder struct {
	Dim int
}

var _ ai.Embedder = HashEmbedder{}

// Embed returns one unit vector per input.
func (h HashEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	dim := h.Dim
	if dim <= 0 {
		dim = DefaultEmbeddingDim
	}
	out := make([][]float32, len(inputs))
	for i, text := range inputs {
		out[i] = hashVector(text, dim)
	}
	return out, nil
}

func hashVector(text string, dim int) []float32 {
	acc := make([]float64, dim)
	for i := 0; i < len(text); i++ {
		acc[i%dim] += float64(text[i]) / 255.0
	}
	var sum float64
	for _, x := range acc {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}
	v := make([]float32, dim)
	for i, x := range acc {
		v[i] = float32(x / norm)
	}
	return v
}

// cosine returns the cosine similarity of a and b, or 0 when either is zero or
// the lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Package semantic provides sentence embeddings and the novelty classifier
// used to diff two competing summaries.
package semantic

import (
	"context"
	"math"
)

// Embedder turns strings into fixed-dimension vectors, one per input, in
// input order. Implementations are injected so tests can supply
// deterministic stubs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Cosine returns the cosine similarity of a and b. It is 0.0 when either
// vector has zero magnitude.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		magA += v * v
	}
	for _, v := range b {
		magB += v * v
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

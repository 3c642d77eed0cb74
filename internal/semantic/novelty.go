package semantic

import (
	"context"
	"fmt"
)

// DefaultThreshold is the similarity below which a sentence counts as novel.
// A tuning constant, not an invariant.
const DefaultThreshold = 0.82

// NoveltyResult holds parallel masks over two sentence sequences. true means
// the sentence has no sufficiently similar counterpart on the other side.
type NoveltyResult struct {
	NovelA []bool
	NovelB []bool
}

// Classifier flags which sentences in two summaries are semantically novel
// relative to each other.
type Classifier struct {
	Embedder  Embedder
	Threshold float64
}

// Classify embeds both sentence sets (one call per side) and marks each
// sentence novel when its best cosine similarity against the other side
// falls below the threshold. An empty side yields a maximum of 0.0, so every
// sentence on the opposite side is novel.
func (c *Classifier) Classify(ctx context.Context, a, b []string) (NoveltyResult, error) {
	threshold := c.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	result := NoveltyResult{
		NovelA: make([]bool, len(a)),
		NovelB: make([]bool, len(b)),
	}

	var vecA, vecB [][]float64
	var err error
	if len(a) > 0 {
		if vecA, err = c.Embedder.Embed(ctx, a); err != nil {
			return NoveltyResult{}, fmt.Errorf("embed side A: %w", err)
		}
		if len(vecA) != len(a) {
			return NoveltyResult{}, fmt.Errorf("embedder returned %d vectors for %d sentences", len(vecA), len(a))
		}
	}
	if len(b) > 0 {
		if vecB, err = c.Embedder.Embed(ctx, b); err != nil {
			return NoveltyResult{}, fmt.Errorf("embed side B: %w", err)
		}
		if len(vecB) != len(b) {
			return NoveltyResult{}, fmt.Errorf("embedder returned %d vectors for %d sentences", len(vecB), len(b))
		}
	}

	for i, v := range vecA {
		result.NovelA[i] = maxSimilarity(v, vecB) < threshold
	}
	for i, v := range vecB {
		result.NovelB[i] = maxSimilarity(v, vecA) < threshold
	}
	return result, nil
}

// maxSimilarity is the best cosine similarity of v against others, 0.0 when
// others is empty.
func maxSimilarity(v []float64, others [][]float64) float64 {
	if len(others) == 0 {
		return 0.0
	}
	best := -1.0
	for _, o := range others {
		if s := Cosine(v, o); s > best {
			best = s
		}
	}
	return best
}

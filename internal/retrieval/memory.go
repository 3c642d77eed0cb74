package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgallion1/fnstitch/internal/semantic"
)

// Index is an in-memory vector store over a fixed set of chunks. Vectors are
// computed once at construction; Search embeds only the query.
type Index struct {
	embedder semantic.Embedder
	chunks   []string
	vectors  [][]float64
}

// NewIndex embeds every chunk in a single call and builds the index.
func NewIndex(ctx context.Context, embedder semantic.Embedder, chunks []string) (*Index, error) {
	idx := &Index{embedder: embedder, chunks: chunks}
	if len(chunks) == 0 {
		return idx, nil
	}

	vectors, err := embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("expected %d chunk vectors, got %d", len(chunks), len(vectors))
	}
	idx.vectors = vectors
	return idx, nil
}

// Len reports the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Search returns up to k chunks ranked by cosine similarity to the query.
// Ties keep chunk order, so results are deterministic for a fixed index.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 || len(idx.chunks) == 0 {
		return nil, nil
	}

	vectors, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query vector, got %d", len(vectors))
	}
	queryVec := vectors[0]

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(idx.chunks))
	for i, vec := range idx.vectors {
		ranked[i] = scored{index: i, score: semantic.Cosine(queryVec, vec)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	results := make([]string, k)
	for i := 0; i < k; i++ {
		results[i] = idx.chunks[ranked[i].index]
	}
	return results, nil
}

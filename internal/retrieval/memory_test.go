package retrieval

import (
	"context"
	"testing"
)

// axisEmbedder maps each known text to a fixed vector.
type axisEmbedder struct {
	vectors map[string][]float64
}

func (a *axisEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, ok := a.vectors[t]
		if !ok {
			v = []float64{0, 0, 0}
		}
		out[i] = v
	}
	return out, nil
}

func TestIndexSearch_RanksBySimilarity(t *testing.T) {
	emb := &axisEmbedder{vectors: map[string][]float64{
		"revenue chunk": {1, 0, 0},
		"ops chunk":     {0, 1, 0},
		"risk chunk":    {0, 0, 1},
		"mixed chunk":   {0.7, 0.7, 0},
		"revenue query": {1, 0.1, 0},
	}}

	idx, err := NewIndex(context.Background(), emb, []string{"ops chunk", "risk chunk", "revenue chunk", "mixed chunk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 4 {
		t.Fatalf("expected 4 indexed chunks, got %d", idx.Len())
	}

	results, err := idx.Search(context.Background(), "revenue query", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0] != "revenue chunk" {
		t.Errorf("expected revenue chunk first, got %q", results[0])
	}
	if results[1] != "mixed chunk" {
		t.Errorf("expected mixed chunk second, got %q", results[1])
	}
}

func TestIndexSearch_KLargerThanIndex(t *testing.T) {
	emb := &axisEmbedder{vectors: map[string][]float64{
		"only": {1, 0, 0},
		"q":    {1, 0, 0},
	}}
	idx, err := NewIndex(context.Background(), emb, []string{"only"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := idx.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestIndexSearch_EmptyIndex(t *testing.T) {
	idx, err := NewIndex(context.Background(), &axisEmbedder{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results, err := idx.Search(context.Background(), "anything", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results from empty index, got %v", results)
	}
}

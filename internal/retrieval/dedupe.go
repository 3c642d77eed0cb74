package retrieval

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PrefixLen is the number of leading runes used as the dedup identity of a
// retrieved chunk. Chunks sharing a prefix this long are treated as the same
// passage even if overlap made their tails differ.
const PrefixLen = 200

// Candidate is a retrieved chunk tagged with the query that surfaced it first.
type Candidate struct {
	Content     string
	SourceQuery string
}

// MergeQueries runs every query against the retriever in parallel, then merges
// the result lists in query order, dropping chunks whose leading PrefixLen
// runes were already seen. The first query to surface a passage owns it.
func MergeQueries(ctx context.Context, r Retriever, queries []string, k int) ([]Candidate, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	results := make([][]string, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.Go(func() error {
			chunks, err := r.Search(gctx, query, k)
			if err != nil {
				return err
			}
			results[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var merged []Candidate
	for i, query := range queries {
		for _, chunk := range results[i] {
			key := prefixKey(chunk)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, Candidate{Content: chunk, SourceQuery: query})
		}
	}
	return merged, nil
}

func prefixKey(chunk string) string {
	runes := []rune(chunk)
	if len(runes) > PrefixLen {
		runes = runes[:PrefixLen]
	}
	return string(runes)
}

// Package retrieval provides similarity search over document chunks and the
// multi-query result merging used to build summarization context.
package retrieval

import "context"

// Retriever returns the chunks most similar to a query, best first.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

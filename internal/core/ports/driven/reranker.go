package driven

import "context"

// Reranker scores (query, passage) pairs with a cross-encoder model.
// Scores are order-only: higher means more relevant, no scale is implied.
type Reranker interface {
	// Score returns one relevance score per text, aligned to the
	// input order. Every pair is scored independently.
	Score(ctx context.Context, query string, texts []string) ([]float64, error)

	// Close releases resources.
	Close() error
}

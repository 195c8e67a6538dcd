package driven

import "context"

// SearchEngine provides term-based full-text search over passages.
// Backed by an inverted index over (id, text) fields. The engine is
// opened read-write by the index builder and read-only by the retriever;
// it is optional at query time (retrieval degrades to semantic-only).
type SearchEngine interface {
	// Index adds a passage to the search index.
	Index(ctx context.Context, chunkID, text string) error

	// IndexedIDs returns the set of chunk IDs already present, used by
	// the builder's idempotent catch-up pass.
	IndexedIDs(ctx context.Context) (map[string]bool, error)

	// Search performs a term query against the text field and returns
	// up to limit matches ordered by descending relevance.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)

	// Close releases resources.
	Close() error
}

// SearchHit is a search result from the engine.
type SearchHit struct {
	// ChunkID is the matched passage.
	ChunkID string

	// Text is the stored passage text.
	Text string

	// Score is the BM25 relevance score, higher is better.
	Score float64
}

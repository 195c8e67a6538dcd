package driven

import "context"

// VectorIndex provides inner-product similarity search over vectors
// keyed by integer surrogate keys. Vectors are stored L2-normalised, so
// inner product is equivalent to cosine similarity.
type VectorIndex interface {
	// Add inserts a vector under the given surrogate key.
	// Keys are assigned by the index builder and never reused.
	Add(ctx context.Context, key int64, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector by
	// inner product. Results are ordered by descending score.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// Key is the surrogate key of the matched vector. A negative key
	// is the "no match" sentinel and must be discarded by callers.
	Key int64

	// Score is the inner-product similarity (cosine, for normalised
	// vectors).
	Score float64
}

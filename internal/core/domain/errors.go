package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Indexing and semantic search cannot
	// run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is missing.
	// The vector index is mandatory: queries fail without it.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrSearchUnavailable indicates the lexical index is missing.
	// Retrieval degrades to semantic-only rather than failing.
	ErrSearchUnavailable = errors.New("lexical index unavailable")

	// ErrCompletionFailed indicates every completion provider in the
	// chain errored or returned empty text.
	ErrCompletionFailed = errors.New("completion failed")

	// ErrRerankUnavailable indicates the cross-encoder scoring service
	// is not configured or unreachable.
	ErrRerankUnavailable = errors.New("reranker unavailable")
)

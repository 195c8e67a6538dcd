package domain

// RetrievalPath identifies which index produced a retrieved passage.
type RetrievalPath string

// Available retrieval paths.
const (
	// PathLexical means the passage matched by term overlap (BM25).
	PathLexical RetrievalPath = "lexical"

	// PathSemantic means the passage matched by vector similarity.
	PathSemantic RetrievalPath = "semantic"
)

// RetrievedPassage is a passage returned by the hybrid retriever,
// tagged with the path that produced it.
type RetrievedPassage struct {
	// Passage is the matched passage record, embedded so callers read
	// its fields directly.
	Passage

	// Path is the retrieval path that surfaced this passage.
	Path RetrievalPath

	// Score is the first-pass relevance score from the producing index.
	// Lexical and semantic scores are not comparable to each other.
	Score float64

	// RerankScore is the cross-encoder relevance score, set by the
	// reranker. Zero until reranking has run.
	RerankScore float64
}

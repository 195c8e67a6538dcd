package driven

import "github.com/guidewell-labs/guidewell-cli/internal/core/domain"

// PassageResolver hydrates retrieval results from persisted passage
// metadata. Lookups are read-mostly at query time; implementations cache
// and rebuild lazily when the persisted passage list changes.
type PassageResolver interface {
	// ByChunkID returns the passage with the given chunk ID.
	ByChunkID(id string) (domain.Passage, bool)

	// ByKey returns the passage mapped to the given surrogate key.
	ByKey(key int64) (domain.Passage, bool)
}

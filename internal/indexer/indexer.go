// Package indexer builds the vector and lexical indexes from the
// consolidated passage feed. Builds are incremental: content
// fingerprints decide which passages need embedding, and a catch-up
// pass fills any gap in the lexical index left by an earlier partial
// run.
package indexer

import (
	"context"
	"fmt"
	"math"

	"github.com/guidewell-labs/guidewell-cli/internal/artifacts"
	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driving"
	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

// Ensure Builder implements the interface.
var _ driving.IndexBuilder = (*Builder)(nil)

// DefaultBatchSize is how many passages are embedded per request.
const DefaultBatchSize = 32

// VectorOpener opens the vector index at a path. Injected so the
// builder can recover from a corrupted index file by resetting and
// reopening.
type VectorOpener func(path string) (driven.VectorIndex, error)

// Config holds the builder's collaborators.
type Config struct {
	Store      *artifacts.Store
	Embedder   driven.EmbeddingService
	Lexical    driven.SearchEngine
	OpenVector VectorOpener

	// BatchSize overrides the embedding batch size when positive.
	BatchSize int
}

// Builder runs incremental index builds.
type Builder struct {
	store      *artifacts.Store
	embedder   driven.EmbeddingService
	lexical    driven.SearchEngine
	openVector VectorOpener
	batchSize  int
}

// New creates a Builder. All collaborators are required.
func New(cfg Config) (*Builder, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("indexer: store is required")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("indexer: %w: embedding service is required", domain.ErrEmbeddingUnavailable)
	}
	if cfg.Lexical == nil {
		return nil, fmt.Errorf("indexer: lexical engine is required")
	}
	if cfg.OpenVector == nil {
		return nil, fmt.Errorf("indexer: vector opener is required")
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Builder{
		store:      cfg.Store,
		embedder:   cfg.Embedder,
		lexical:    cfg.Lexical,
		openVector: cfg.OpenVector,
		batchSize:  batch,
	}, nil
}

// Build runs one incremental index build over the current feed.
func (b *Builder) Build(ctx context.Context) (driving.IndexStats, error) {
	var stats driving.IndexStats

	if err := b.embedder.Ping(ctx); err != nil {
		return stats, fmt.Errorf("indexer: %w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	feed, err := b.store.ReadFeed()
	if err != nil {
		return stats, err
	}
	stats.Total = len(feed)
	if len(feed) == 0 {
		logger.Info("Feed is empty, nothing to index")
		return stats, nil
	}

	vec, reset, err := b.openOrReset()
	if err != nil {
		return stats, err
	}
	defer vec.Close()
	stats.Reset = reset

	keyMap, err := b.store.LoadKeyMap()
	if err != nil {
		return stats, err
	}
	fingerprints, err := b.store.LoadFingerprints()
	if err != nil {
		return stats, err
	}
	reverse, err := b.store.LoadReverseMap()
	if err != nil {
		return stats, err
	}

	// Classify feed passages by fingerprint. A chunk whose text changed
	// keeps its surrogate key and gets a replacement vector.
	var pending []domain.Passage
	for _, p := range feed {
		if fp, ok := fingerprints[p.ID]; ok && fp == p.Fingerprint() {
			continue
		}
		pending = append(pending, p)
	}

	logger.Info("Indexing %d passages (%d new or changed)", len(feed), len(pending))

	nextKey := maxKey(reverse) + 1
	for start := 0; start < len(pending); start += b.batchSize {
		end := min(start+b.batchSize, len(pending))
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Text
		}

		embeddings, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return stats, fmt.Errorf("indexer: %w: %v", domain.ErrEmbeddingUnavailable, err)
		}
		if len(embeddings) != len(batch) {
			return stats, fmt.Errorf("indexer: embedder returned %d vectors for %d texts", len(embeddings), len(batch))
		}

		for i, p := range batch {
			key, ok := keyMap[p.ID]
			if !ok {
				key = nextKey
				nextKey++
			}
			if err := vec.Add(ctx, key, normalize(embeddings[i])); err != nil {
				return stats, err
			}
			keyMap[p.ID] = key
			reverse[key] = p.ID
			fingerprints[p.ID] = p.Fingerprint()
			stats.Embedded++
		}
		logger.Debug("Embedded batch %d-%d", start, end-1)
	}

	// Lexical catch-up covers passages embedded in an earlier run that
	// never reached the keyword index.
	indexed, err := b.lexical.IndexedIDs(ctx)
	if err != nil {
		return stats, err
	}
	for _, p := range feed {
		if indexed[p.ID] {
			continue
		}
		if err := b.lexical.Index(ctx, p.ID, p.Text); err != nil {
			return stats, err
		}
		stats.LexicalAdded++
	}

	if err := b.persist(feed, keyMap, fingerprints, reverse); err != nil {
		return stats, err
	}

	logger.Info("Index build complete: %d embedded, %d added to keyword index", stats.Embedded, stats.LexicalAdded)
	return stats, nil
}

// openOrReset opens the vector index, recovering from a corrupted file
// by clearing all derived artifacts and starting fresh. The maps and
// the vector index are reset as a unit; removing only the index would
// leave keys pointing at nothing.
func (b *Builder) openOrReset() (driven.VectorIndex, bool, error) {
	path := b.store.VectorIndexPath()

	vec, err := b.openVector(path)
	if err == nil {
		return vec, false, nil
	}

	logger.Warn("Vector index unreadable (%v), rebuilding from scratch", err)
	// The lexical index survives the reset: it is keyed by chunk ID
	// and carries no surrogate keys, so it stays consistent.
	if err := b.store.ResetDerived(); err != nil {
		return nil, false, err
	}

	vec, err = b.openVector(path)
	if err != nil {
		return nil, false, fmt.Errorf("indexer: %w: reopen after reset: %v", domain.ErrVectorIndexUnavailable, err)
	}
	return vec, true, nil
}

func (b *Builder) persist(feed []domain.Passage, keyMap map[string]int64, fingerprints map[string]string, reverse map[int64]string) error {
	if err := b.store.SavePassages(feed); err != nil {
		return err
	}
	if err := b.store.SaveKeyMap(keyMap); err != nil {
		return err
	}
	if err := b.store.SaveFingerprints(fingerprints); err != nil {
		return err
	}
	return b.store.SaveReverseMap(reverse)
}

func maxKey(reverse map[int64]string) int64 {
	var m int64 = -1
	for k := range reverse {
		if k > m {
			m = k
		}
	}
	return m
}

// normalize scales a vector to unit length so inner product search
// ranks by cosine similarity.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

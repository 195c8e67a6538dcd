package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

// lexicalOverfetch multiplies the candidate budget for the keyword
// path. Keyword hits are deduplicated against the semantic pool, so the
// engine is asked for more than it may keep.
const lexicalOverfetch = 2

// RetrievalService runs the two-path candidate search. The semantic
// path is mandatory; the keyword path degrades silently when its index
// is missing or broken.
type RetrievalService struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorIndex
	lexical  driven.SearchEngine
	resolver driven.PassageResolver
}

// NewRetrievalService creates a retrieval service. The lexical engine
// is optional (can be nil); everything else is required.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	vectors driven.VectorIndex,
	lexical driven.SearchEngine,
	resolver driven.PassageResolver,
) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		vectors:  vectors,
		lexical:  lexical,
		resolver: resolver,
	}
}

// Retrieve returns up to k candidate passages for the query, keyword
// hits first, deduplicated by passage text.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedPassage, error) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return nil, nil
	}

	if s.vectors == nil || s.embedder == nil {
		return nil, fmt.Errorf("retrieve: %w", domain.ErrVectorIndexUnavailable)
	}

	logger.Debug("Retrieve: query=%q, k=%d", query, k)

	semantic, err := s.semanticSearch(ctx, query, k)
	if err != nil {
		return nil, err
	}

	lexical := s.keywordSearch(ctx, query, k*lexicalOverfetch)

	fused := fuse(lexical, semantic, k)
	logger.Debug("Retrieve: %d keyword + %d semantic fused to %d", len(lexical), len(semantic), len(fused))
	return fused, nil
}

// semanticSearch embeds the query and searches the vector index. Any
// failure here fails the request: answering without the semantic path
// would silently degrade quality.
func (s *RetrievalService) semanticSearch(ctx context.Context, query string, k int) ([]domain.RetrievedPassage, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.vectors.Search(ctx, normalizeQuery(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w: %v", domain.ErrVectorIndexUnavailable, err)
	}

	var out []domain.RetrievedPassage
	for _, hit := range hits {
		if hit.Key < 0 {
			continue
		}
		passage, ok := s.resolver.ByKey(hit.Key)
		if !ok {
			logger.Warn("Semantic hit key %d has no passage, skipping", hit.Key)
			continue
		}
		out = append(out, domain.RetrievedPassage{
			Passage: passage,
			Path:    domain.PathSemantic,
			Score:   hit.Score,
		})
	}
	return out, nil
}

// keywordSearch queries the lexical index, returning nil on any
// failure. A broken keyword index narrows the candidate pool but never
// fails the request.
func (s *RetrievalService) keywordSearch(ctx context.Context, query string, limit int) []domain.RetrievedPassage {
	if s.lexical == nil {
		logger.Debug("Keyword path disabled: no lexical engine")
		return nil
	}

	hits, err := s.lexical.Search(ctx, query, limit)
	if err != nil {
		logger.Warn("Keyword search failed, continuing semantic-only: %v", err)
		return nil
	}

	var out []domain.RetrievedPassage
	for _, hit := range hits {
		passage, ok := s.resolver.ByChunkID(hit.ChunkID)
		if !ok {
			// The lexical row carries the text; serve it even when the
			// passage list lags behind.
			passage = domain.Passage{ID: hit.ChunkID, Text: hit.Text}
		}
		out = append(out, domain.RetrievedPassage{
			Passage: passage,
			Path:    domain.PathLexical,
			Score:   hit.Score,
		})
	}
	return out
}

// fuse merges the two candidate lists keyword-first, dropping passages
// whose exact text already appeared, and truncates to k.
func fuse(lexical, semantic []domain.RetrievedPassage, k int) []domain.RetrievedPassage {
	seen := make(map[string]bool, len(lexical)+len(semantic))
	out := make([]domain.RetrievedPassage, 0, k)

	for _, list := range [][]domain.RetrievedPassage{lexical, semantic} {
		for _, rp := range list {
			if seen[rp.Text] {
				continue
			}
			seen[rp.Text] = true
			out = append(out, rp)
			if len(out) == k {
				return out
			}
		}
	}
	return out
}

// normalizeQuery scales the query embedding to unit length to match the
// stored vectors.
func normalizeQuery(v []float32) []float32 {
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

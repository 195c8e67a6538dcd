package services

import (
	"context"
	"sort"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

// RerankService orders retrieval candidates with a cross-encoder and
// keeps the best n. Without a reranker, or when scoring fails, the
// first n candidates pass through in retrieval order.
type RerankService struct {
	reranker driven.Reranker
}

// NewRerankService creates a rerank service. The reranker is optional
// (can be nil).
func NewRerankService(reranker driven.Reranker) *RerankService {
	return &RerankService{reranker: reranker}
}

// Rerank returns the top n candidates. The sort is stable so ties keep
// their retrieval order.
func (s *RerankService) Rerank(ctx context.Context, query string, candidates []domain.RetrievedPassage, n int) []domain.RetrievedPassage {
	if len(candidates) == 0 || n <= 0 {
		return nil
	}

	if s.reranker == nil {
		logger.Debug("Rerank disabled, keeping retrieval order")
		return head(candidates, n)
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	scores, err := s.reranker.Score(ctx, query, texts)
	if err != nil || len(scores) != len(candidates) {
		logger.Warn("Rerank failed (%v), keeping retrieval order", err)
		return head(candidates, n)
	}

	ranked := make([]domain.RetrievedPassage, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].RerankScore = scores[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RerankScore > ranked[j].RerankScore
	})

	return head(ranked, n)
}

func head(list []domain.RetrievedPassage, n int) []domain.RetrievedPassage {
	if len(list) > n {
		list = list[:n]
	}
	out := make([]domain.RetrievedPassage, len(list))
	copy(out, list)
	return out
}

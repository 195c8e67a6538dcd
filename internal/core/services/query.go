package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driving"
	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// Default pipeline parameters.
const (
	DefaultTopK         = 15
	DefaultFinalN       = 5
	DefaultHistoryTurns = 6

	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
)

// failureReply is returned when every completion provider fails. The
// session still records the exchange.
const failureReply = "I could not reach a language model to answer right now. Please try again shortly."

// QueryConfig tunes the query pipeline.
type QueryConfig struct {
	// TopK is the candidate pool size handed to the reranker.
	TopK int

	// FinalN is the number of passages included in the prompt.
	FinalN int

	// HistoryTurns is how many prior turns feed the prompt.
	HistoryTurns int

	// Greetings are inputs answered with GreetingReply, no retrieval.
	Greetings []string

	// GreetingReply is the canned greeting response.
	GreetingReply string

	// Persona is the instruction block prefixed to every prompt.
	Persona string
}

// QueryService orchestrates one question: augment, retrieve, rerank,
// prompt, complete, remember.
type QueryService struct {
	retrieval *RetrievalService
	rerank    *RerankService
	augmenter *Augmenter
	sessions  driven.SessionStore
	providers []driven.CompletionService
	cfg       QueryConfig
}

// NewQueryService creates the query orchestrator. Providers are tried
// in order until one returns a non-empty answer.
func NewQueryService(
	retrieval *RetrievalService,
	rerank *RerankService,
	augmenter *Augmenter,
	sessions driven.SessionStore,
	providers []driven.CompletionService,
	cfg QueryConfig,
) *QueryService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.FinalN <= 0 {
		cfg.FinalN = DefaultFinalN
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = DefaultHistoryTurns
	}
	return &QueryService{
		retrieval: retrieval,
		rerank:    rerank,
		augmenter: augmenter,
		sessions:  sessions,
		providers: providers,
		cfg:       cfg,
	}
}

// Ask answers one question over the indexed corpus.
func (s *QueryService) Ask(ctx context.Context, req driving.AskRequest) (domain.Answer, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return domain.Answer{}, fmt.Errorf("ask: %w: empty query", domain.ErrInvalidInput)
	}

	logger.Section("Query")
	logger.Debug("Session %s: %q", req.SessionID, query)

	if req.VisionDescription == "" && isGreeting(query, s.cfg.Greetings) {
		logger.Debug("Greeting shortcut")
		answer := domain.Answer{Text: s.cfg.GreetingReply, Provider: "canned"}
		s.remember(req.SessionID, query, answer.Text)
		return answer, nil
	}

	// The cleaned description drives retrieval; the prompt later gets
	// the raw description so the model sees its labeled structure.
	cleaned := s.augmenter.CleanDescription(req.VisionDescription)
	retrievalQuery := s.augmenter.Merge(query, cleaned)

	candidates, err := s.retrieval.Retrieve(ctx, retrievalQuery, s.cfg.TopK)
	if err != nil {
		return domain.Answer{}, err
	}

	final := s.rerank.Rerank(ctx, retrievalQuery, candidates, s.cfg.FinalN)
	logger.Info("Context: %d of %d candidates", len(final), len(candidates))

	history := s.sessions.History(req.SessionID, s.cfg.HistoryTurns)
	prompt := buildPrompt(promptInput{
		persona:  s.cfg.Persona,
		history:  history,
		vision:   req.VisionDescription,
		passages: final,
		query:    query,
	})

	answer := s.complete(ctx, prompt)
	answer.Sources = sources(final)

	s.remember(req.SessionID, query, answer.Text)
	return answer, nil
}

// complete walks the provider chain. An empty completion counts as a
// failure and moves to the next provider.
func (s *QueryService) complete(ctx context.Context, prompt string) domain.Answer {
	opts := driven.GenerateOptions{
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}

	for _, provider := range s.providers {
		text, err := provider.Generate(ctx, prompt, opts)
		if err != nil {
			logger.Warn("Provider %s failed: %v", provider.Name(), err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			logger.Warn("Provider %s returned an empty answer", provider.Name())
			continue
		}
		return domain.Answer{Text: text, Provider: provider.Name()}
	}

	logger.Warn("All completion providers failed")
	return domain.Answer{Text: failureReply, Failed: true}
}

func (s *QueryService) remember(sessionID, query, answer string) {
	if sessionID == "" {
		return
	}
	s.sessions.Append(sessionID,
		domain.Turn{Role: domain.RoleUser, Content: query},
		domain.Turn{Role: domain.RoleAssistant, Content: answer},
	)
}

// sources lists the distinct source documents in context order.
func sources(passages []domain.RetrievedPassage) []string {
	seen := make(map[string]bool, len(passages))
	var out []string
	for _, p := range passages {
		if p.DocID == "" || seen[p.DocID] {
			continue
		}
		seen[p.DocID] = true
		out = append(out, p.DocID)
	}
	return out
}

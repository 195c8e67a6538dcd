package services

import (
	"context"
	"errors"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
)

// mockEmbedder returns a fixed vector for any text.
type mockEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(context.Context, string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		vec, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return len(m.vector) }
func (m *mockEmbedder) ModelName() string          { return "mock" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockVectorIndex returns canned hits.
type mockVectorIndex struct {
	hits []driven.VectorHit
	err  error
}

func (m *mockVectorIndex) Add(context.Context, int64, []float32) error { return nil }

func (m *mockVectorIndex) Search(context.Context, []float32, int) ([]driven.VectorHit, error) {
	return m.hits, m.err
}

func (m *mockVectorIndex) Count(context.Context) (int, error) { return len(m.hits), nil }
func (m *mockVectorIndex) Close() error                       { return nil }

// mockLexical returns canned hits.
type mockLexical struct {
	hits      []driven.SearchHit
	err       error
	lastQuery string
	lastLimit int
}

func (m *mockLexical) Index(context.Context, string, string) error { return nil }

func (m *mockLexical) IndexedIDs(context.Context) (map[string]bool, error) {
	return nil, nil
}

func (m *mockLexical) Search(_ context.Context, query string, limit int) ([]driven.SearchHit, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.hits, m.err
}

func (m *mockLexical) Close() error { return nil }

// mockResolver resolves passages from fixed maps.
type mockResolver struct {
	byID  map[string]domain.Passage
	byKey map[int64]domain.Passage
}

func (m *mockResolver) ByChunkID(id string) (domain.Passage, bool) {
	p, ok := m.byID[id]
	return p, ok
}

func (m *mockResolver) ByKey(key int64) (domain.Passage, bool) {
	p, ok := m.byKey[key]
	return p, ok
}

// mockReranker returns canned scores aligned to input order.
type mockReranker struct {
	scores []float64
	err    error
	calls  int
}

func (m *mockReranker) Score(context.Context, string, []string) ([]float64, error) {
	m.calls++
	return m.scores, m.err
}

func (m *mockReranker) Close() error { return nil }

// mockSessions is an in-memory session store without eviction.
type mockSessions struct {
	turns map[string][]domain.Turn
}

func newMockSessions() *mockSessions {
	return &mockSessions{turns: make(map[string][]domain.Turn)}
}

func (m *mockSessions) History(sessionID string, limit int) []domain.Turn {
	turns := m.turns[sessionID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}

func (m *mockSessions) Append(sessionID string, turns ...domain.Turn) {
	m.turns[sessionID] = append(m.turns[sessionID], turns...)
}

// mockProvider is a scriptable completion service.
type mockProvider struct {
	name    string
	reply   string
	err     error
	prompts []string
}

func (m *mockProvider) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockProvider) Name() string { return m.name }
func (m *mockProvider) Close() error { return nil }

var errMock = errors.New("mock failure")

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
)

func passage(id, text string) domain.Passage {
	return domain.Passage{ID: id, DocID: "Doc1", Text: text}
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	svc := NewRetrievalService(&mockEmbedder{}, &mockVectorIndex{}, &mockLexical{}, &mockResolver{})

	got, err := svc.Retrieve(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieve_NoVectorIndex(t *testing.T) {
	svc := NewRetrievalService(&mockEmbedder{}, nil, &mockLexical{}, &mockResolver{})

	_, err := svc.Retrieve(context.Background(), "eczema", 10)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestRetrieve_EmbedFailureIsFatal(t *testing.T) {
	svc := NewRetrievalService(
		&mockEmbedder{err: errMock},
		&mockVectorIndex{},
		&mockLexical{},
		&mockResolver{},
	)

	_, err := svc.Retrieve(context.Background(), "eczema", 10)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetrieve_KeywordFirstFusion(t *testing.T) {
	resolver := &mockResolver{
		byID: map[string]domain.Passage{
			"a": passage("a", "keyword text"),
		},
		byKey: map[int64]domain.Passage{
			1: passage("b", "semantic text"),
		},
	}
	svc := NewRetrievalService(
		&mockEmbedder{vector: []float32{1, 0}},
		&mockVectorIndex{hits: []driven.VectorHit{{Key: 1, Score: 0.8}}},
		&mockLexical{hits: []driven.SearchHit{{ChunkID: "a", Text: "keyword text", Score: 2.5}}},
		resolver,
	)

	got, err := svc.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.PathLexical, got[0].Path)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, domain.PathSemantic, got[1].Path)
	assert.Equal(t, "b", got[1].ID)
}

func TestRetrieve_DeduplicatesByExactText(t *testing.T) {
	shared := "the same passage text"
	resolver := &mockResolver{
		byID:  map[string]domain.Passage{"a": passage("a", shared)},
		byKey: map[int64]domain.Passage{1: passage("a", shared)},
	}
	svc := NewRetrievalService(
		&mockEmbedder{vector: []float32{1, 0}},
		&mockVectorIndex{hits: []driven.VectorHit{{Key: 1, Score: 0.9}}},
		&mockLexical{hits: []driven.SearchHit{{ChunkID: "a", Text: shared, Score: 1.0}}},
		resolver,
	)

	got, err := svc.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.PathLexical, got[0].Path)
}

func TestRetrieve_LexicalFailureDegradesSilently(t *testing.T) {
	resolver := &mockResolver{
		byKey: map[int64]domain.Passage{1: passage("b", "semantic text")},
	}
	svc := NewRetrievalService(
		&mockEmbedder{vector: []float32{1, 0}},
		&mockVectorIndex{hits: []driven.VectorHit{{Key: 1, Score: 0.8}}},
		&mockLexical{err: errMock},
		resolver,
	)

	got, err := svc.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.PathSemantic, got[0].Path)
}

func TestRetrieve_NilLexicalEngine(t *testing.T) {
	resolver := &mockResolver{
		byKey: map[int64]domain.Passage{1: passage("b", "semantic text")},
	}
	svc := NewRetrievalService(
		&mockEmbedder{vector: []float32{1, 0}},
		&mockVectorIndex{hits: []driven.VectorHit{{Key: 1, Score: 0.8}}},
		nil,
		resolver,
	)

	got, err := svc.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRetrieve_LexicalOverfetch(t *testing.T) {
	lexical := &mockLexical{}
	svc := NewRetrievalService(
		&mockEmbedder{vector: []float32{1, 0}},
		&mockVectorIndex{},
		lexical,
		&mockResolver{},
	)

	_, err := svc.Retrieve(context.Background(), "query", 15)
	require.NoError(t, err)
	assert.Equal(t, 30, lexical.lastLimit)
}

func TestRetrieve_TruncatesToK(t *testing.T) {
	resolver := &mockResolver{
		byID: map[string]domain.Passage{
			"a": passage("a", "text one"),
			"b": passage("b", "text two"),
			"c": passage("c", "text three"),
		},
	}
	svc := NewRetrievalService(
		&mockEmbedder{vector: []float32{1, 0}},
		&mockVectorIndex{},
		&mockLexical{hits: []driven.SearchHit{
			{ChunkID: "a", Text: "text one"},
			{ChunkID: "b", Text: "text two"},
			{ChunkID: "c", Text: "text three"},
		}},
		resolver,
	)

	got, err := svc.Retrieve(context.Background(), "query", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRetrieve_NegativeKeySkipped(t *testing.T) {
	svc := NewRetrievalService(
		&mockEmbedder{vector: []float32{1, 0}},
		&mockVectorIndex{hits: []driven.VectorHit{{Key: -1, Score: 0.9}}},
		&mockLexical{},
		&mockResolver{},
	)

	got, err := svc.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieve_UnresolvedLexicalHitKeepsText(t *testing.T) {
	svc := NewRetrievalService(
		&mockEmbedder{vector: []float32{1, 0}},
		&mockVectorIndex{},
		&mockLexical{hits: []driven.SearchHit{{ChunkID: "ghost", Text: "orphan text", Score: 1.0}}},
		&mockResolver{},
	)

	got, err := svc.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "orphan text", got[0].Text)
}

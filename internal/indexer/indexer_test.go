package indexer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidewell-labs/guidewell-cli/internal/artifacts"
	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
)

// fakeEmbedder counts embed calls and returns fixed-size vectors.
type fakeEmbedder struct {
	calls    int
	embedded []string
	pingErr  error
	batchErr error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		f.embedded = append(f.embedded, text)
		out[i] = []float32{float32(len(text)), 3, 4}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return 3 }
func (f *fakeEmbedder) ModelName() string            { return "fake" }
func (f *fakeEmbedder) Ping(context.Context) error   { return f.pingErr }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeLexical is an in-memory keyword index.
type fakeLexical struct {
	docs map[string]string
}

func newFakeLexical() *fakeLexical { return &fakeLexical{docs: make(map[string]string)} }

func (f *fakeLexical) Index(_ context.Context, id, text string) error {
	f.docs[id] = text
	return nil
}

func (f *fakeLexical) IndexedIDs(context.Context) (map[string]bool, error) {
	ids := make(map[string]bool, len(f.docs))
	for id := range f.docs {
		ids[id] = true
	}
	return ids, nil
}

func (f *fakeLexical) Search(context.Context, string, int) ([]driven.SearchHit, error) {
	return nil, nil
}

func (f *fakeLexical) Close() error { return nil }

// fakeVectorIndex records vectors by key.
type fakeVectorIndex struct {
	vectors map[int64][]float32
}

func (f *fakeVectorIndex) Add(_ context.Context, key int64, embedding []float32) error {
	f.vectors[key] = embedding
	return nil
}

func (f *fakeVectorIndex) Search(context.Context, []float32, int) ([]driven.VectorHit, error) {
	return nil, nil
}

func (f *fakeVectorIndex) Count(context.Context) (int, error) { return len(f.vectors), nil }
func (f *fakeVectorIndex) Close() error                       { return nil }

// fakeOpener hands out the same in-memory index, optionally failing the
// first n open attempts.
type fakeOpener struct {
	index    *fakeVectorIndex
	failures int
}

func (f *fakeOpener) open(string) (driven.VectorIndex, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("file is not a database")
	}
	return f.index, nil
}

type testRig struct {
	store    *artifacts.Store
	embedder *fakeEmbedder
	lexical  *fakeLexical
	vectors  *fakeVectorIndex
	opener   *fakeOpener
	builder  *Builder
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	store, err := artifacts.NewStore(t.TempDir())
	require.NoError(t, err)

	rig := &testRig{
		store:    store,
		embedder: &fakeEmbedder{},
		lexical:  newFakeLexical(),
		vectors:  &fakeVectorIndex{vectors: make(map[int64][]float32)},
	}
	rig.opener = &fakeOpener{index: rig.vectors}

	rig.builder, err = New(Config{
		Store:      store,
		Embedder:   rig.embedder,
		Lexical:    rig.lexical,
		OpenVector: rig.opener.open,
		BatchSize:  2,
	})
	require.NoError(t, err)
	return rig
}

func feedPassage(docID string, i int, text string) domain.Passage {
	return domain.Passage{
		ID:        fmt.Sprintf("%s_c%d", docID, i),
		DocID:     docID,
		Text:      text,
		WordCount: len(text) / 5,
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestBuilder_EmptyFeed(t *testing.T) {
	rig := newTestRig(t)

	stats, err := rig.builder.Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Embedded)
}

func TestBuilder_Build(t *testing.T) {
	rig := newTestRig(t)
	require.NoError(t, rig.store.AppendFeed([]domain.Passage{
		feedPassage("Doc1", 0, "[Doc1 - Treatment] topical corticosteroids"),
		feedPassage("Doc1", 1, "[Doc1 - Diagnosis] KOH preparation"),
		feedPassage("Doc2", 0, "[Doc2 - General] overview of psoriasis"),
	}))

	stats, err := rig.builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Embedded)
	assert.Equal(t, 3, stats.LexicalAdded)
	assert.False(t, stats.Reset)

	keyMap, err := rig.store.LoadKeyMap()
	require.NoError(t, err)
	assert.Len(t, keyMap, 3)

	reverse, err := rig.store.LoadReverseMap()
	require.NoError(t, err)
	assert.Equal(t, "Doc1_c0", reverse[keyMap["Doc1_c0"]])

	passages, err := rig.store.LoadPassages()
	require.NoError(t, err)
	assert.Len(t, passages, 3)
}

func TestBuilder_SecondRunEmbedsNothing(t *testing.T) {
	rig := newTestRig(t)
	require.NoError(t, rig.store.AppendFeed([]domain.Passage{
		feedPassage("Doc1", 0, "[Doc1 - Treatment] topical corticosteroids"),
	}))

	_, err := rig.builder.Build(context.Background())
	require.NoError(t, err)

	stats, err := rig.builder.Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Embedded)
	assert.Zero(t, stats.LexicalAdded)
}

func TestBuilder_ChangedTextReembedsOnlyThatChunk(t *testing.T) {
	rig := newTestRig(t)
	require.NoError(t, rig.store.AppendFeed([]domain.Passage{
		feedPassage("Doc1", 0, "[Doc1 - Treatment] stable text"),
		feedPassage("Doc1", 1, "[Doc1 - Diagnosis] original text"),
	}))
	_, err := rig.builder.Build(context.Background())
	require.NoError(t, err)

	keyBefore, err := rig.store.LoadKeyMap()
	require.NoError(t, err)

	// Simulate re-extraction changing one chunk: drop its fingerprint
	// so the next run sees it as changed.
	fps, err := rig.store.LoadFingerprints()
	require.NoError(t, err)
	delete(fps, "Doc1_c1")
	require.NoError(t, rig.store.SaveFingerprints(fps))

	rig.embedder.embedded = nil
	stats, err := rig.builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Embedded)
	assert.Equal(t, []string{"[Doc1 - Diagnosis] original text"}, rig.embedder.embedded)

	keyAfter, err := rig.store.LoadKeyMap()
	require.NoError(t, err)
	assert.Equal(t, keyBefore["Doc1_c1"], keyAfter["Doc1_c1"])
}

func TestBuilder_MonotonicKeys(t *testing.T) {
	rig := newTestRig(t)
	require.NoError(t, rig.store.AppendFeed([]domain.Passage{
		feedPassage("Doc1", 0, "first"),
	}))
	_, err := rig.builder.Build(context.Background())
	require.NoError(t, err)

	require.NoError(t, rig.store.AppendFeed([]domain.Passage{
		feedPassage("Doc2", 0, "second"),
	}))
	_, err = rig.builder.Build(context.Background())
	require.NoError(t, err)

	keyMap, err := rig.store.LoadKeyMap()
	require.NoError(t, err)
	assert.Greater(t, keyMap["Doc2_c0"], keyMap["Doc1_c0"])
}

func TestBuilder_VectorsAreNormalized(t *testing.T) {
	rig := newTestRig(t)
	require.NoError(t, rig.store.AppendFeed([]domain.Passage{
		feedPassage("Doc1", 0, "some text"),
	}))
	_, err := rig.builder.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, rig.vectors.vectors, 1)
	for _, vec := range rig.vectors.vectors {
		var sum float64
		for _, x := range vec {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestBuilder_CorruptIndexResetsAsUnit(t *testing.T) {
	rig := newTestRig(t)
	require.NoError(t, rig.store.AppendFeed([]domain.Passage{
		feedPassage("Doc1", 0, "some text"),
	}))
	_, err := rig.builder.Build(context.Background())
	require.NoError(t, err)

	// Fail the next open once; the builder must reset derived state and
	// re-embed everything.
	rig.opener.failures = 1
	rig.embedder.embedded = nil

	stats, err := rig.builder.Build(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.Reset)
	assert.Equal(t, 1, stats.Embedded)
}

func TestBuilder_EmbedderUnreachable(t *testing.T) {
	rig := newTestRig(t)
	rig.embedder.pingErr = errors.New("connection refused")

	_, err := rig.builder.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestBuilder_BatchSizeRespected(t *testing.T) {
	rig := newTestRig(t)
	var feed []domain.Passage
	for i := 0; i < 5; i++ {
		feed = append(feed, feedPassage("Doc1", i, fmt.Sprintf("chunk number %d", i)))
	}
	require.NoError(t, rig.store.AppendFeed(feed))

	stats, err := rig.builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Embedded)
	// Batch size 2 over 5 passages means 3 batch calls.
	assert.Equal(t, 3, rig.embedder.calls)
}

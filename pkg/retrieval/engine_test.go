package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeywordSearcher struct {
	hits  []*KeywordHit
	err   error
	calls int
}

func (f *fakeKeywordSearcher) Search(ctx context.Context, query string, requirements []string, limit int) ([]*KeywordHit, error) {
	f.calls++
	return f.hits, f.err
}

type fakeVectorSearcher struct {
	hits      []*VectorHit
	err       error
	calls     int
	gotLimit  int
}

func (f *fakeVectorSearcher) Search(ctx context.Context, query string, limit int) ([]*VectorHit, error) {
	f.calls++
	f.gotLimit = limit
	return f.hits, f.err
}

type fakeDocStore struct {
	docs map[string]*DocRecord
}

func (f *fakeDocStore) FetchDoc(ctx context.Context, docID string) (*DocRecord, error) {
	if doc, ok := f.docs[docID]; ok {
		return doc, nil
	}
	return nil, errors.New("not found")
}

func TestFuse_MergesOverlappingHits(t *testing.T) {
	keyword := &fakeKeywordSearcher{hits: []*KeywordHit{
		{DocID: "a", Title: "Paper A", Content: "full text a", RankingScore: 0.9},
		{DocID: "b", Title: "Paper B", Content: "full text b", RankingScore: 0.5},
	}}
	vector := &fakeVectorSearcher{hits: []*VectorHit{
		{DocID: "a", Content: "chunk a", Similarity: 0.8},
	}}

	engine := NewEngine(keyword, vector, nil, nil)
	hits, err := engine.Fuse(context.Background(), "query", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	byID := map[string]*Hit{}
	for _, h := range hits {
		byID[h.DocID] = h
	}

	a := byID["a"]
	require.NotNil(t, a)
	assert.Equal(t, SourceBoth, a.Source)
	assert.InDelta(t, 90.0, a.KeywordScore, 1e-9)
	assert.InDelta(t, 80.0, a.VectorScore, 1e-9)
	// Keyword title and content win over the vector chunk
	assert.Equal(t, "Paper A", a.Title)
	assert.Equal(t, "full text a", a.Content)

	b := byID["b"]
	require.NotNil(t, b)
	assert.Equal(t, SourceKeyword, b.Source)
	assert.Zero(t, b.VectorScore)
}

func TestFuse_FinalScoreFormula(t *testing.T) {
	keyword := &fakeKeywordSearcher{hits: []*KeywordHit{
		{DocID: "a", RankingScore: 0.5},
	}}
	vector := &fakeVectorSearcher{hits: []*VectorHit{
		{DocID: "a", Similarity: 0.8},
	}}

	engine := NewEngine(keyword, vector, nil, nil)
	hits, err := engine.Fuse(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// vector 80 * 0.7 + (keyword 50 / 10) * 0.3 = 56 + 1.5
	assert.InDelta(t, 57.5, hits[0].FinalScore, 1e-9)
}

func TestFuse_KeywordScoreCappedAt100(t *testing.T) {
	// Ranking scores above 10 cannot occur from a real 0..1 source but the
	// normalization must still clamp.
	keyword := &fakeKeywordSearcher{hits: []*KeywordHit{
		{DocID: "a", RankingScore: 20},
	}}
	vector := &fakeVectorSearcher{}

	engine := NewEngine(keyword, vector, nil, nil)
	hits, err := engine.Fuse(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// keyword 2000 / 10 clamps to 100, weighted by 0.3
	assert.InDelta(t, 30.0, hits[0].FinalScore, 1e-9)
}

func TestFuse_VectorFailureDegradesToKeywordOnly(t *testing.T) {
	keyword := &fakeKeywordSearcher{hits: []*KeywordHit{
		{DocID: "a", RankingScore: 0.9},
		{DocID: "b", RankingScore: 0.4},
	}}
	vector := &fakeVectorSearcher{err: errors.New("embedding backend down")}

	engine := NewEngine(keyword, vector, nil, nil)
	hits, err := engine.Fuse(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	for _, h := range hits {
		assert.Equal(t, SourceKeyword, h.Source)
		assert.Zero(t, h.VectorScore)
		assert.Equal(t, h.KeywordScore, h.FinalScore)
	}
}

func TestFuse_VectorOnlyHitEnrichedFromDocStore(t *testing.T) {
	keyword := &fakeKeywordSearcher{}
	vector := &fakeVectorSearcher{hits: []*VectorHit{
		{DocID: "v1", Content: "chunk text", Similarity: 0.75},
		{DocID: "v2", Content: "orphan chunk", Similarity: 0.6},
	}}
	docs := &fakeDocStore{docs: map[string]*DocRecord{
		"v1": {DocID: "v1", Title: "Stored Paper", Content: "stored full text"},
	}}

	engine := NewEngine(keyword, vector, docs, nil)
	hits, err := engine.Fuse(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	byID := map[string]*Hit{}
	for _, h := range hits {
		byID[h.DocID] = h
	}

	enriched := byID["v1"]
	assert.Equal(t, "Stored Paper", enriched.Title)
	assert.Equal(t, "stored full text", enriched.Content)
	assert.Equal(t, SourceVector, enriched.Source)

	// Lookup failure keeps the minimal chunk data
	orphan := byID["v2"]
	assert.Empty(t, orphan.Title)
	assert.Equal(t, "orphan chunk", orphan.Content)
}

func TestFuse_SortsByFinalScoreAndTruncates(t *testing.T) {
	keyword := &fakeKeywordSearcher{}
	vector := &fakeVectorSearcher{hits: []*VectorHit{
		{DocID: "low", Similarity: 0.2},
		{DocID: "high", Similarity: 0.9},
		{DocID: "mid", Similarity: 0.5},
	}}

	engine := NewEngine(keyword, vector, nil, nil)
	hits, err := engine.Fuse(context.Background(), "q", nil, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "high", hits[0].DocID)
	assert.Equal(t, "mid", hits[1].DocID)
}

func TestFuse_EqualScoresKeepFirstSeenOrder(t *testing.T) {
	// Three hits with identical ranking scores fuse to identical final
	// scores; the sort must not reorder them.
	keyword := &fakeKeywordSearcher{hits: []*KeywordHit{
		{DocID: "first", RankingScore: 0.5},
		{DocID: "second", RankingScore: 0.5},
		{DocID: "third", RankingScore: 0.5},
	}}
	vector := &fakeVectorSearcher{}

	engine := NewEngine(keyword, vector, nil, nil)
	hits, err := engine.Fuse(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, hits[0].FinalScore, hits[1].FinalScore)
	assert.Equal(t, hits[1].FinalScore, hits[2].FinalScore)
	assert.Equal(t, "first", hits[0].DocID)
	assert.Equal(t, "second", hits[1].DocID)
	assert.Equal(t, "third", hits[2].DocID)
}

func TestFuse_DuplicateDocIDsCollapseWithinSource(t *testing.T) {
	keyword := &fakeKeywordSearcher{hits: []*KeywordHit{
		{DocID: "a", Title: "First", RankingScore: 0.9},
		{DocID: "a", Title: "Second", RankingScore: 0.4},
	}}
	// Two chunks of the same document arrive ordered by similarity; only
	// the first (highest) may count.
	vector := &fakeVectorSearcher{hits: []*VectorHit{
		{DocID: "v", Similarity: 0.9},
		{DocID: "v", Similarity: 0.4},
	}}

	engine := NewEngine(keyword, vector, nil, nil)
	hits, err := engine.Fuse(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	byID := map[string]*Hit{}
	for _, h := range hits {
		byID[h.DocID] = h
	}

	a := byID["a"]
	require.NotNil(t, a)
	assert.Equal(t, "First", a.Title)
	assert.InDelta(t, 90.0, a.KeywordScore, 1e-9)

	v := byID["v"]
	require.NotNil(t, v)
	assert.Equal(t, SourceVector, v.Source)
	assert.InDelta(t, 90.0, v.VectorScore, 1e-9)
}

func TestFuse_ZeroScoreHitsAreKept(t *testing.T) {
	keyword := &fakeKeywordSearcher{hits: []*KeywordHit{
		{DocID: "zero", RankingScore: 0},
	}}
	vector := &fakeVectorSearcher{}

	engine := NewEngine(keyword, vector, nil, nil)
	hits, err := engine.Fuse(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Zero(t, hits[0].FinalScore)
}

func TestFuse_VectorSideOverfetches(t *testing.T) {
	keyword := &fakeKeywordSearcher{}
	vector := &fakeVectorSearcher{}

	engine := NewEngine(keyword, vector, nil, nil)
	_, err := engine.Fuse(context.Background(), "q", nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 14, vector.gotLimit)
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *recordingLogger) Info(module, message string, details map[string]interface{})  {}
func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.warnings = append(l.warnings, message)
}
func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {}
func (l *recordingLogger) Sync() error                                                  { return nil }

func TestFuse_KeywordFailureIsLogged(t *testing.T) {
	keyword := &fakeKeywordSearcher{err: errors.New("index unreachable")}
	vector := &fakeVectorSearcher{hits: []*VectorHit{
		{DocID: "a", Similarity: 0.8},
	}}
	log := &recordingLogger{}

	engine := NewEngine(keyword, vector, nil, log)
	hits, err := engine.Fuse(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "keyword search failed")
}

func TestFuse_VectorFailureIsLogged(t *testing.T) {
	keyword := &fakeKeywordSearcher{hits: []*KeywordHit{
		{DocID: "a", RankingScore: 0.9},
	}}
	vector := &fakeVectorSearcher{err: errors.New("embedding backend down")}
	log := &recordingLogger{}

	engine := NewEngine(keyword, vector, nil, log)
	hits, err := engine.Fuse(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "vector search failed")
}

func TestFuse_CachesResults(t *testing.T) {
	keyword := &fakeKeywordSearcher{hits: []*KeywordHit{
		{DocID: "a", RankingScore: 0.5},
	}}
	vector := &fakeVectorSearcher{}

	engine := NewEngine(keyword, vector, nil, nil)
	_, err := engine.Fuse(context.Background(), "q", []string{"req"}, 10)
	require.NoError(t, err)
	_, err = engine.Fuse(context.Background(), "q", []string{"req"}, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, keyword.calls)
	assert.Equal(t, 1, vector.calls)
}

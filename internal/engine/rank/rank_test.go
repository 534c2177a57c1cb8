package rank

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaphScript0/mini-engine/internal/engine/index"
)

func buildIndex(docs map[string]map[string]int) *index.Index {
	ix := index.New()
	for docID, freqs := range docs {
		ix.AddDocument(docID, freqs, nil)
	}
	return ix
}

func ctxFor(ix *index.Index, lengths map[string]int) Context {
	return Context{Index: ix, Stats: ix.Stats(), DocLengths: lengths}
}

func TestIDFFormula(t *testing.T) {
	// Single term in a single doc: idf = ln((1+1)/(1+1)) + 1 = 1, so the
	// raw score is exactly tf.
	ix := buildIndex(map[string]map[string]int{
		"d1": {"cat": 3},
	})
	hits := Rank([]string{"cat"}, ctxFor(ix, nil), Options{})
	require.Len(t, hits, 1)
	assert.InDelta(t, 3.0, hits[0].Score, 1e-12)
}

func TestIDFSmoothing(t *testing.T) {
	ix := buildIndex(map[string]map[string]int{
		"d1": {"cat": 1},
		"d2": {"dog": 1},
	})
	// s=3: idf = ln((2+3)/(1+3)) + 1.
	hits := Rank([]string{"cat"}, ctxFor(ix, nil), Options{IDFSmoothing: 3})
	require.Len(t, hits, 1)
	assert.InDelta(t, math.Log(5.0/4.0)+1, hits[0].Score, 1e-12)
}

func TestUnionScoringOrder(t *testing.T) {
	// d1 has both terms, d2 one, d3 neither relevant term.
	ix := buildIndex(map[string]map[string]int{
		"d1": {"hello": 1, "world": 2},
		"d2": {"hello": 1, "there": 1},
		"d3": {"unrelated": 1},
	})
	hits := Rank([]string{"hello", "world"}, ctxFor(ix, nil), Options{})
	require.Len(t, hits, 2)
	assert.Equal(t, "d1", hits[0].DocID)
	assert.Equal(t, "d2", hits[1].DocID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestDuplicateQueryTermsContributeTwice(t *testing.T) {
	ix := buildIndex(map[string]map[string]int{
		"d1": {"cat": 2},
	})
	once := Rank([]string{"cat"}, ctxFor(ix, nil), Options{})
	twice := Rank([]string{"cat", "cat"}, ctxFor(ix, nil), Options{})
	require.Len(t, once, 1)
	require.Len(t, twice, 1)
	assert.InDelta(t, once[0].Score*2, twice[0].Score, 1e-12)
}

func TestUnknownTermsContributeNothing(t *testing.T) {
	ix := buildIndex(map[string]map[string]int{
		"d1": {"cat": 1},
	})
	hits := Rank([]string{"cat", "ghost"}, ctxFor(ix, nil), Options{})
	require.Len(t, hits, 1)

	only := Rank([]string{"ghost"}, ctxFor(ix, nil), Options{})
	assert.Empty(t, only)
}

func TestEmptyQueryAndEmptyIndex(t *testing.T) {
	ix := buildIndex(map[string]map[string]int{"d1": {"cat": 1}})
	assert.Empty(t, Rank(nil, ctxFor(ix, nil), Options{}))

	empty := index.New()
	assert.Empty(t, Rank([]string{"cat"}, ctxFor(empty, nil), Options{}))
}

func TestLengthNormalization(t *testing.T) {
	ix := buildIndex(map[string]map[string]int{
		"long":  {"cat": 2},
		"short": {"cat": 2},
	})
	lengths := map[string]int{"long": 100, "short": 4}
	hits := Rank([]string{"cat"}, ctxFor(ix, lengths), Options{})
	require.Len(t, hits, 2)
	assert.Equal(t, "short", hits[0].DocID)
	// score/sqrt(L): both docs share the raw score, lengths split them.
	assert.InDelta(t, hits[1].Score*math.Sqrt(100.0/4.0), hits[0].Score, 1e-9)
}

func TestZeroLengthLeavesScoreUnchanged(t *testing.T) {
	ix := buildIndex(map[string]map[string]int{
		"d1": {"cat": 3},
	})
	withLens := Rank([]string{"cat"}, ctxFor(ix, map[string]int{"d1": 0}), Options{})
	without := Rank([]string{"cat"}, ctxFor(ix, nil), Options{})
	require.Len(t, withLens, 1)
	assert.Equal(t, without[0].Score, withLens[0].Score)
}

func TestTieBreakByDocID(t *testing.T) {
	ix := buildIndex(map[string]map[string]int{
		"zulu":  {"cat": 1},
		"alpha": {"cat": 1},
		"mike":  {"cat": 1},
	})
	hits := Rank([]string{"cat"}, ctxFor(ix, nil), Options{})
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"alpha", "mike", "zulu"}, ids(hits))
}

func TestCandidateLimitKeepsHighestRawScores(t *testing.T) {
	docs := make(map[string]map[string]int, 100)
	for i := 0; i < 100; i++ {
		docs[fmt.Sprintf("doc-%03d", i)] = map[string]int{"common": i + 1}
	}
	ix := buildIndex(docs)
	hits := Rank([]string{"common"}, ctxFor(ix, nil), Options{CandidateLimit: 10})
	require.Len(t, hits, 10)
	// The survivors are the 10 highest raw tf values, 91..100.
	for _, h := range hits {
		var n int
		fmt.Sscanf(h.DocID, "doc-%d", &n)
		assert.GreaterOrEqual(t, n, 90)
	}
}

func TestCandidateLimitPrunesBeforeNormalization(t *testing.T) {
	// "big" wins the raw-score prune even though "tiny" would out-rank it
	// after normalization. The prune deliberately works on raw scores.
	ix := buildIndex(map[string]map[string]int{
		"big":  {"cat": 10},
		"tiny": {"cat": 9},
	})
	lengths := map[string]int{"big": 10000, "tiny": 1}
	hits := Rank([]string{"cat"}, ctxFor(ix, lengths), Options{CandidateLimit: 1})
	require.Len(t, hits, 1)
	assert.Equal(t, "big", hits[0].DocID)
}

func TestDeterminism(t *testing.T) {
	ix := buildIndex(map[string]map[string]int{
		"d1": {"cat": 2, "dog": 1},
		"d2": {"cat": 1, "dog": 3},
		"d3": {"dog": 1},
	})
	lengths := map[string]int{"d1": 3, "d2": 4, "d3": 1}
	first := Rank([]string{"cat", "dog"}, ctxFor(ix, lengths), Options{})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Rank([]string{"cat", "dog"}, ctxFor(ix, lengths), Options{}))
	}
}

func ids(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.DocID
	}
	return out
}

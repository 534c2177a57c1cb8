package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaphScript0/mini-engine/internal/engine/rank"
)

func newEngine(t *testing.T, docs ...Document) *Engine {
	t.Helper()
	e := New()
	e.UpsertDocuments(docs)
	return e
}

func fulltext(limit int) SearchOptions {
	return SearchOptions{Limit: limit}
}

func TestBasicTFIDFOrder(t *testing.T) {
	e := newEngine(t,
		Document{ID: "d1", Text: "hello world world"},
		Document{ID: "d2", Text: "hello there"},
		Document{ID: "d3", Text: "unrelated"},
	)

	res := e.Search("hello world", fulltext(10))
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "d1", res.Hits[0].DocID)
	assert.Equal(t, "d2", res.Hits[1].DocID)
	assert.Greater(t, res.Hits[0].Score, res.Hits[1].Score)
	assert.Empty(t, res.NextCursor)
}

func TestPrefixCompletionContributes(t *testing.T) {
	e := newEngine(t,
		Document{ID: "d1", Text: "typescript"},
		Document{ID: "d2", Text: "type theory"},
		Document{ID: "d3", Text: "python"},
	)

	res := e.Search("typ", SearchOptions{Limit: 10, EnablePrefix: true, PrefixLimit: 10})
	got := hitIDs(res.Hits)
	assert.Contains(t, got, "d1")
	assert.Contains(t, got, "d2")
	assert.NotContains(t, got, "d3")
}

func TestPrefixExpansionRequiresTwoChars(t *testing.T) {
	e := newEngine(t, Document{ID: "d1", Text: "typescript"})
	res := e.Search("t", SearchOptions{Limit: 10, EnablePrefix: true})
	assert.Empty(t, res.Hits)
}

func TestPrefixDisabled(t *testing.T) {
	e := newEngine(t, Document{ID: "d1", Text: "typescript"})
	res := e.Search("typ", fulltext(10))
	assert.Empty(t, res.Hits)
}

func TestCursorPagination(t *testing.T) {
	e := newEngine(t,
		Document{ID: "a", Text: "cat"},
		Document{ID: "b", Text: "cat cat"},
		Document{ID: "c", Text: "cat cat cat"},
	)

	first := e.Search("cat", fulltext(2))
	require.Equal(t, []string{"c", "b"}, hitIDs(first.Hits))
	require.Equal(t, "b", first.NextCursor)

	second := e.Search("cat", SearchOptions{Limit: 2, Cursor: first.NextCursor})
	assert.Equal(t, []string{"a"}, hitIDs(second.Hits))
	assert.Empty(t, second.NextCursor)
}

func TestCursorRoundTripVisitsEveryHitOnce(t *testing.T) {
	var docs []Document
	for i := 0; i < 23; i++ {
		docs = append(docs, Document{
			ID:   fmt.Sprintf("doc-%02d", i),
			Text: strings.Repeat("needle ", i+1) + fmt.Sprintf("filler%d", i),
		})
	}
	e := newEngine(t, docs...)

	full := e.Search("needle", fulltext(100))
	require.Len(t, full.Hits, 23)

	var paged []string
	cursor := ""
	for {
		res := e.Search("needle", SearchOptions{Limit: 5, Cursor: cursor})
		paged = append(paged, hitIDs(res.Hits)...)
		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}
	assert.Equal(t, hitIDs(full.Hits), paged)
}

func TestUnknownCursorResets(t *testing.T) {
	e := newEngine(t,
		Document{ID: "a", Text: "cat"},
		Document{ID: "b", Text: "cat cat"},
	)
	res := e.Search("cat", SearchOptions{Limit: 10, Cursor: "vanished"})
	assert.Equal(t, []string{"b", "a"}, hitIDs(res.Hits))
}

func TestStopWordAsymmetry(t *testing.T) {
	e := newEngine(t, Document{ID: "d1", Text: "the quick fox"})

	// Query-side stop words are stripped, leaving no terms at all.
	res := e.Search("the", fulltext(10))
	assert.Empty(t, res.Hits)
	assert.Empty(t, res.NextCursor)

	// But stop words are indexed: the document's length counts them.
	res = e.Search("quick", fulltext(10))
	require.Len(t, res.Hits, 1)
}

func TestCandidateLimit(t *testing.T) {
	var docs []Document
	for i := 0; i < 100; i++ {
		docs = append(docs, Document{
			ID:   fmt.Sprintf("doc-%03d", i),
			Text: strings.Repeat("common ", i+1),
		})
	}
	e := newEngine(t, docs...)

	res := e.Search("common", SearchOptions{Limit: 100, CandidateLimit: 10})
	require.Len(t, res.Hits, 10)
	for _, h := range res.Hits {
		var n int
		fmt.Sscanf(h.DocID, "doc-%d", &n)
		assert.GreaterOrEqual(t, n, 90)
	}
}

func TestReUpsertIsIdempotent(t *testing.T) {
	doc := Document{ID: "d1", Text: "repeat me twice"}
	once := newEngine(t, doc)
	twice := newEngine(t, doc, doc)

	a := once.Search("repeat twice", fulltext(10))
	b := twice.Search("repeat twice", fulltext(10))
	assert.Equal(t, a.Hits, b.Hits)
	assert.Equal(t, once.Stats(), twice.Stats())
}

func TestUpsertLaterDocumentWinsOnSharedID(t *testing.T) {
	e := newEngine(t,
		Document{ID: "d1", Text: "first version"},
		Document{ID: "d1", Text: "second version"},
	)
	assert.Equal(t, 1, e.Stats().DocCount)
	assert.Empty(t, e.Search("first", fulltext(10)).Hits)
	assert.Len(t, e.Search("second", fulltext(10)).Hits, 1)

	doc, ok := e.Document("d1")
	require.True(t, ok)
	assert.Equal(t, "second version", doc.Text)
}

func TestRemoveDocument(t *testing.T) {
	e := newEngine(t,
		Document{ID: "d1", Text: "cat dog"},
		Document{ID: "d2", Text: "cat"},
	)
	e.RemoveDocument("d1")

	assert.False(t, e.Has("d1"))
	assert.Equal(t, 1, e.Stats().DocCount)
	assert.Equal(t, []string{"d2"}, hitIDs(e.Search("cat", fulltext(10)).Hits))
	assert.Empty(t, e.Search("dog", fulltext(10)).Hits)
}

func TestRemovedTermStillCompletes(t *testing.T) {
	// The trie is not pruned on removal, so prefix expansion can still
	// suggest the dead term; ranking then finds no postings for it.
	e := newEngine(t, Document{ID: "d1", Text: "zebra"})
	e.RemoveDocument("d1")

	res := e.Search("zeb", SearchOptions{Limit: 10, EnablePrefix: true})
	assert.Empty(t, res.Hits)
	assert.Equal(t, 1, e.DictionarySize())
}

func TestEmptyQuery(t *testing.T) {
	e := newEngine(t, Document{ID: "d1", Text: "anything"})
	res := e.Search("", DefaultSearchOptions())
	assert.Empty(t, res.Hits)
	assert.Empty(t, res.NextCursor)

	res = e.Search("   ", DefaultSearchOptions())
	assert.Empty(t, res.Hits)
}

func TestMetadataPreserved(t *testing.T) {
	e := newEngine(t, Document{
		ID:       "d1",
		Text:     "cat",
		Metadata: map[string]any{"lang": "en"},
	})
	doc, ok := e.Document("d1")
	require.True(t, ok)
	assert.Equal(t, "en", doc.Metadata["lang"])
}

func TestSearchDeterminism(t *testing.T) {
	e := newEngine(t,
		Document{ID: "d1", Text: "alpha beta gamma"},
		Document{ID: "d2", Text: "beta gamma delta"},
		Document{ID: "d3", Text: "gamma delta epsilon"},
	)
	first := e.Search("beta gamma", fulltext(10))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Search("beta gamma", fulltext(10)))
	}
}

func hitIDs(hits []rank.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.DocID
	}
	return out
}

func BenchmarkSearch(b *testing.B) {
	e := New()
	var docs []Document
	for i := 0; i < 1000; i++ {
		docs = append(docs, Document{
			ID:   fmt.Sprintf("doc-%04d", i),
			Text: fmt.Sprintf("shared term%d corpus document body %d", i%50, i),
		})
	}
	e.UpsertDocuments(docs)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Search("shared corpus", SearchOptions{Limit: 10})
	}
}

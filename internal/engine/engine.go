// Package engine wires the tokenizer, inverted index, term trie, ranker,
// and top-K selector into the search pipeline: document upsert/removal,
// full-text and prefix queries, and cursor pagination. The engine carries
// no internal locking; callers serialise writers against readers.
package engine

import (
	"strings"

	"github.com/RaphScript0/mini-engine/internal/engine/index"
	"github.com/RaphScript0/mini-engine/internal/engine/rank"
	"github.com/RaphScript0/mini-engine/internal/engine/tokenizer"
	"github.com/RaphScript0/mini-engine/internal/engine/topk"
	"github.com/RaphScript0/mini-engine/internal/engine/trie"
)

const (
	defaultLimit       = 10
	defaultPrefixLimit = 5
	// minPrefixLen is the shortest trailing query fragment that triggers
	// autocomplete expansion.
	minPrefixLen = 2
)

// Document is the unit of ingest: an opaque identifier, raw text, and
// caller-defined metadata passed through untouched.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchOptions control one Search call. Zero Limit and PrefixLimit fall
// back to 10 and 5; Cursor is the raw DocID token of the last hit of the
// previous page.
type SearchOptions struct {
	Limit          int
	Cursor         string
	EnablePrefix   bool
	PrefixLimit    int
	CandidateLimit int
}

// DefaultSearchOptions matches the documented defaults, prefix expansion
// included.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:        defaultLimit,
		EnablePrefix: true,
		PrefixLimit:  defaultPrefixLimit,
	}
}

// Result is one page of hits. NextCursor is empty when the logical result
// set is exhausted.
type Result struct {
	Hits       []rank.Hit
	NextCursor string
}

// Engine owns the document registry and the index structures built from it.
type Engine struct {
	docs       map[string]Document
	docLengths map[string]int
	idx        *index.Index
	dict       *trie.Trie
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{
		docs:       make(map[string]Document),
		docLengths: make(map[string]int),
		idx:        index.New(),
		dict:       trie.New(),
	}
}

// UpsertDocuments indexes docs in input order; when two share an ID the
// later wins. Stop words are indexed (queries strip them instead), and
// every token occurrence feeds the trie so completion weights track corpus
// term frequency.
func (e *Engine) UpsertDocuments(docs []Document) {
	for _, doc := range docs {
		e.docs[doc.ID] = doc

		termFreqs := make(map[string]int)
		positions := make(map[string][]int)
		length := 0
		it := tokenizer.Tokenize(doc.Text, tokenizer.Options{NormalizeCase: true})
		for {
			tok, ok := it.Next()
			if !ok {
				break
			}
			termFreqs[tok.Term]++
			positions[tok.Term] = append(positions[tok.Term], tok.Position)
			length++
			e.dict.Insert(tok.Term, true)
		}
		e.docLengths[doc.ID] = length
		e.idx.AddDocument(doc.ID, termFreqs, positions)
	}
}

// RemoveDocument drops id from the registry, the length table, and the
// index. The trie is left untouched: completions may keep suggesting terms
// no document contains. Absent ids are a no-op.
func (e *Engine) RemoveDocument(id string) {
	delete(e.docs, id)
	delete(e.docLengths, id)
	e.idx.RemoveDocument(id)
}

// Has reports whether id is currently registered.
func (e *Engine) Has(id string) bool {
	_, ok := e.docs[id]
	return ok
}

// Document returns the registered document for id.
func (e *Engine) Document(id string) (Document, bool) {
	doc, ok := e.docs[id]
	return doc, ok
}

// Documents returns a snapshot of every registered document, in no
// particular order.
func (e *Engine) Documents() []Document {
	out := make([]Document, 0, len(e.docs))
	for _, doc := range e.docs {
		out = append(out, doc)
	}
	return out
}

// Stats returns the index statistics.
func (e *Engine) Stats() index.Stats {
	return e.idx.Stats()
}

// DictionarySize returns the number of live terms in the trie.
func (e *Engine) DictionarySize() int {
	return e.dict.Len()
}

// Search runs the query pipeline: tokenize with stop-word removal, expand
// the trailing fragment through the trie when prefix mode is on, rank,
// apply the cursor, slice the page, and re-sort the page through the top-K
// selector so the ordering contract holds no matter what the ranker did.
func (e *Engine) Search(rawQuery string, opts SearchOptions) Result {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	prefixLimit := opts.PrefixLimit
	if prefixLimit <= 0 {
		prefixLimit = defaultPrefixLimit
	}

	queryTerms := tokenizer.Terms(rawQuery, tokenizer.Options{
		NormalizeCase:   true,
		RemoveStopWords: true,
	})

	if opts.EnablePrefix {
		if fields := strings.Fields(rawQuery); len(fields) > 0 {
			last := fields[len(fields)-1]
			if len(last) >= minPrefixLen {
				for _, c := range e.dict.Complete(strings.ToLower(last), prefixLimit) {
					queryTerms = append(queryTerms, c.Term)
				}
			}
		}
	}

	all := rank.Rank(queryTerms, rank.Context{
		Index:      e.idx,
		Stats:      e.idx.Stats(),
		DocLengths: e.docLengths,
	}, rank.Options{CandidateLimit: opts.CandidateLimit})

	// An unknown cursor resets to the first page rather than erroring: the
	// corpus may have changed since the cursor was handed out.
	start := 0
	if opts.Cursor != "" {
		for i, hit := range all {
			if hit.DocID == opts.Cursor {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]

	nextCursor := ""
	if start+limit < len(all) && len(page) > 0 {
		nextCursor = page[len(page)-1].DocID
	}

	page = topk.Select(page, limit, compareHits)
	return Result{Hits: page, NextCursor: nextCursor}
}

// compareHits is the canonical hit ordering: score descending, DocID
// ascending.
func compareHits(a, b rank.Hit) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	case a.DocID < b.DocID:
		return -1
	default:
		return 1
	}
}

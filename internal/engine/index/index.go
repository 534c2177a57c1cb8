// Package index implements the in-memory inverted index: a map from term
// to postings carrying document frequency, term frequency, and token
// positions. The index is single-writer; callers serialise access.
package index

import "sort"

// Index maps terms to per-document postings. Operations on absent
// identifiers are no-ops, never errors.
type Index struct {
	terms map[string]map[string]*Posting
	// docTerms remembers which terms each document contributed so a
	// remove or reindex can find its postings without a full scan.
	docTerms map[string]map[string]struct{}
}

// New returns an empty index.
func New() *Index {
	return &Index{
		terms:    make(map[string]map[string]*Posting),
		docTerms: make(map[string]map[string]struct{}),
	}
}

// AddDocument registers docID with the given term frequencies and optional
// per-term positions. If docID is already indexed its previous postings are
// replaced wholesale, so a reindex is always a fresh start. Terms with a
// non-positive frequency are ignored.
func (ix *Index) AddDocument(docID string, termFreqs map[string]int, positions map[string][]int) {
	if _, exists := ix.docTerms[docID]; exists {
		ix.RemoveDocument(docID)
	}
	seen := make(map[string]struct{}, len(termFreqs))
	for term, tf := range termFreqs {
		if tf <= 0 {
			continue
		}
		docs, ok := ix.terms[term]
		if !ok {
			docs = make(map[string]*Posting)
			ix.terms[term] = docs
		}
		p := &Posting{DocID: docID, TF: tf}
		if pos, ok := positions[term]; ok {
			p.Positions = append([]int(nil), pos...)
		}
		docs[docID] = p
		seen[term] = struct{}{}
	}
	ix.docTerms[docID] = seen
}

// RemoveDocument deletes every posting for docID. Terms left with no
// postings are dropped so HasTerm never reports an empty term.
func (ix *Index) RemoveDocument(docID string) {
	terms, ok := ix.docTerms[docID]
	if !ok {
		return
	}
	for term := range terms {
		docs := ix.terms[term]
		delete(docs, docID)
		if len(docs) == 0 {
			delete(ix.terms, term)
		}
	}
	delete(ix.docTerms, docID)
}

// GetPostings returns the postings list for term in canonical DocID-ascending
// order. ok is false when no document contains the term.
func (ix *Index) GetPostings(term string) (PostingsList, bool) {
	docs, ok := ix.terms[term]
	if !ok || len(docs) == 0 {
		return PostingsList{}, false
	}
	postings := make([]Posting, 0, len(docs))
	for _, p := range docs {
		postings = append(postings, *p)
	}
	sort.Slice(postings, func(i, j int) bool {
		return postings[i].DocID < postings[j].DocID
	})
	return PostingsList{Term: term, DF: len(postings), Postings: postings}, true
}

// HasTerm reports whether at least one document contains term.
func (ix *Index) HasTerm(term string) bool {
	return len(ix.terms[term]) > 0
}

// HasDocument reports whether docID is currently indexed.
func (ix *Index) HasDocument(docID string) bool {
	_, ok := ix.docTerms[docID]
	return ok
}

// Stats returns the count of distinct indexed documents.
func (ix *Index) Stats() Stats {
	return Stats{DocCount: len(ix.docTerms)}
}

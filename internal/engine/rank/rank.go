// Package rank scores candidate documents with TF-IDF union scoring. The
// index is borrowed per call; the ranker keeps no state between calls.
package rank

import (
	"math"
	"sort"

	"github.com/RaphScript0/mini-engine/internal/engine/index"
)

// Hit is one scored document.
type Hit struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Context carries the structures the ranker reads for a single call.
// DocLengths is optional; when present, scores are divided by sqrt(length).
type Context struct {
	Index      *index.Index
	Stats      index.Stats
	DocLengths map[string]int
}

// Options tune scoring. IDFSmoothing of zero means the default of 1.
// CandidateLimit of zero disables pruning.
type Options struct {
	IDFSmoothing   float64
	CandidateLimit int
}

type termList struct {
	idf      float64
	postings index.PostingsList
}

// Rank scores the union of postings for queryTerms and returns hits ordered
// by score descending, DocID ascending. A term appearing twice in the query
// contributes twice. Unknown terms contribute nothing; an empty query or an
// empty index yields no hits.
func Rank(queryTerms []string, ctx Context, opts Options) []Hit {
	n := ctx.Stats.DocCount
	if len(queryTerms) == 0 || n == 0 {
		return nil
	}
	s := opts.IDFSmoothing
	if s == 0 {
		s = 1
	}

	lists := make([]termList, 0, len(queryTerms))
	for _, term := range queryTerms {
		pl, ok := ctx.Index.GetPostings(term)
		if !ok || pl.DF == 0 {
			continue
		}
		idf := math.Log((float64(n)+s)/(float64(pl.DF)+s)) + 1
		lists = append(lists, termList{idf: idf, postings: pl})
	}
	// Shortest lists first. Stable so equal-df lists keep query order and
	// partial sums stay reproducible.
	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].postings.DF < lists[j].postings.DF
	})

	scores := make(map[string]float64)
	for _, tl := range lists {
		for _, p := range tl.postings.Postings {
			scores[p.DocID] += float64(p.TF) * tl.idf
		}
	}

	hits := make([]Hit, 0, len(scores))
	for docID, score := range scores {
		hits = append(hits, Hit{DocID: docID, Score: score})
	}

	// Prune on the raw accumulated score, before length normalization.
	if opts.CandidateLimit > 0 && len(hits) > opts.CandidateLimit {
		sortHits(hits)
		hits = hits[:opts.CandidateLimit]
	}

	if ctx.DocLengths != nil {
		for i := range hits {
			if l := ctx.DocLengths[hits[i].DocID]; l > 0 {
				hits[i].Score /= math.Sqrt(float64(l))
			}
		}
	}

	sortHits(hits)
	return hits
}

// sortHits orders by score descending, breaking ties by DocID ascending.
func sortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
}

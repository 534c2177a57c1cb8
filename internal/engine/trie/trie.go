// Package trie implements the term dictionary: a byte-keyed prefix trie
// with weighted autocomplete. Terms are normalized lowercase ASCII, so
// single-byte child keys cover the full alphabet.
package trie

import "sort"

// defaultCompleteLimit caps Complete results when the caller passes no limit.
const defaultCompleteLimit = 10

// Completion is one autocomplete candidate. Weight is the number of
// tracked insertions of the term since it was last removed.
type Completion struct {
	Term   string `json:"term"`
	Weight int    `json:"weight"`
}

type node struct {
	children map[byte]*node
	terminal bool
	weight   int
}

// Trie holds every term ever inserted. Removal is lazy: it clears the
// terminal marker and weight but leaves structural nodes in place.
type Trie struct {
	root *node
	live int
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

// Insert creates the path for term and marks its terminal node. When
// trackFrequency is set the terminal's weight is incremented by one, so
// repeated tracked inserts accumulate corpus frequency.
func (t *Trie) Insert(term string, trackFrequency bool) {
	n := t.root
	for i := 0; i < len(term); i++ {
		c := term[i]
		if n.children == nil {
			n.children = make(map[byte]*node)
		}
		child, ok := n.children[c]
		if !ok {
			child = &node{}
			n.children[c] = child
		}
		n = child
	}
	if !n.terminal {
		n.terminal = true
		t.live++
	}
	if trackFrequency {
		n.weight++
	}
}

// Remove clears the terminal marker and weight for term. The path itself
// is retained; absent terms are a no-op.
func (t *Trie) Remove(term string) {
	n := t.lookup(term)
	if n == nil || !n.terminal {
		return
	}
	n.terminal = false
	n.weight = 0
	t.live--
}

// Has reports whether the exact term has a live terminal.
func (t *Trie) Has(term string) bool {
	n := t.lookup(term)
	return n != nil && n.terminal
}

// Len returns the number of live terms.
func (t *Trie) Len() int {
	return t.live
}

// Complete returns at most limit terms beginning with prefix, ordered by
// weight descending then term ascending. A limit of zero or less falls
// back to the default. Output never depends on insertion order.
func (t *Trie) Complete(prefix string, limit int) []Completion {
	if limit <= 0 {
		limit = defaultCompleteLimit
	}
	start := t.lookup(prefix)
	if start == nil {
		return nil
	}
	var out []Completion
	collect(start, prefix, &out)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (t *Trie) lookup(term string) *node {
	n := t.root
	for i := 0; i < len(term); i++ {
		child, ok := n.children[term[i]]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

func collect(n *node, term string, out *[]Completion) {
	if n.terminal {
		*out = append(*out, Completion{Term: term, Weight: n.weight})
	}
	for c, child := range n.children {
		collect(child, term+string(c), out)
	}
}

// Package tokenizer splits raw text into positioned terms. A term is a
// maximal run of ASCII alphanumerics; every other byte is a separator.
// Tokens are produced lazily so callers can consume arbitrarily large
// inputs without materializing the full token list.
package tokenizer

import "strings"

// stopWords is the built-in English stop list. The set is fixed: query-side
// filtering and index-side behaviour both depend on it staying stable.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "such": {}, "that": {}, "the": {}, "their": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"to": {}, "was": {}, "will": {}, "with": {},
}

// IsStopWord reports whether term is in the built-in stop list.
func IsStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

// Options control normalization during tokenization.
type Options struct {
	NormalizeCase   bool
	RemoveStopWords bool
}

// DefaultOptions lower-cases terms and keeps stop words.
func DefaultOptions() Options {
	return Options{NormalizeCase: true}
}

// Token is a single term together with its token index and the byte range
// it was sliced from. Position counts raw tokens in the source text, so a
// filtered stop word still consumes a position.
type Token struct {
	Term     string
	Position int
	Start    int
	End      int
}

// Iterator yields tokens one at a time. It is finite and non-restartable;
// obtain a fresh one from Tokenize for each pass.
type Iterator struct {
	text string
	opts Options
	off  int
	pos  int
}

// Tokenize returns a lazy iterator over the tokens of text. Identical
// (text, opts) inputs always produce the identical token sequence.
func Tokenize(text string, opts Options) *Iterator {
	return &Iterator{text: text, opts: opts}
}

// Next returns the next token, or ok=false when the input is exhausted.
func (it *Iterator) Next() (Token, bool) {
	for {
		for it.off < len(it.text) && !isAlnum(it.text[it.off]) {
			it.off++
		}
		if it.off >= len(it.text) {
			return Token{}, false
		}
		start := it.off
		for it.off < len(it.text) && isAlnum(it.text[it.off]) {
			it.off++
		}
		term := it.text[start:it.off]
		if it.opts.NormalizeCase {
			term = strings.ToLower(term)
		}
		pos := it.pos
		it.pos++
		if it.opts.RemoveStopWords {
			if _, stop := stopWords[term]; stop {
				continue
			}
		}
		return Token{Term: term, Position: pos, Start: start, End: it.off}, true
	}
}

// Terms drains a fresh iterator and returns just the emitted terms, in
// order, duplicates preserved.
func Terms(text string, opts Options) []string {
	var terms []string
	it := Tokenize(text, opts)
	for {
		tok, ok := it.Next()
		if !ok {
			return terms
		}
		terms = append(terms, tok.Term)
	}
}

func isAlnum(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

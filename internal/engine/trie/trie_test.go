package trie

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndHas(t *testing.T) {
	tr := New()
	tr.Insert("cat", false)

	assert.True(t, tr.Has("cat"))
	assert.False(t, tr.Has("ca"))
	assert.False(t, tr.Has("cats"))
	assert.Equal(t, 1, tr.Len())
}

func TestTrackFrequencyAccumulates(t *testing.T) {
	tr := New()
	tr.Insert("cat", true)
	tr.Insert("cat", true)
	tr.Insert("cat", true)
	tr.Insert("car", true)

	out := tr.Complete("ca", 10)
	require.Len(t, out, 2)
	assert.Equal(t, Completion{Term: "cat", Weight: 3}, out[0])
	assert.Equal(t, Completion{Term: "car", Weight: 1}, out[1])
}

func TestUntrackedInsertKeepsZeroWeight(t *testing.T) {
	tr := New()
	tr.Insert("cat", false)
	tr.Insert("cat", false)

	out := tr.Complete("cat", 10)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Weight)
}

func TestCompleteOrdering(t *testing.T) {
	// Primary key weight descending, ties broken by term ascending.
	tr := New()
	tr.Insert("typewriter", true)
	tr.Insert("typescript", true)
	tr.Insert("type", true)
	tr.Insert("type", true)
	tr.Insert("typhoon", true)
	tr.Insert("typhoon", true)

	out := tr.Complete("typ", 10)
	require.Len(t, out, 4)
	assert.Equal(t, "type", out[0].Term)
	assert.Equal(t, "typhoon", out[1].Term)
	assert.Equal(t, "typescript", out[2].Term)
	assert.Equal(t, "typewriter", out[3].Term)
}

func TestCompleteOrderIndependentOfInsertion(t *testing.T) {
	terms := []string{"alpha", "alps", "already", "also", "altitude"}
	forward := New()
	for _, term := range terms {
		forward.Insert(term, true)
	}
	backward := New()
	for i := len(terms) - 1; i >= 0; i-- {
		backward.Insert(terms[i], true)
	}
	assert.Equal(t, forward.Complete("al", 10), backward.Complete("al", 10))
}

func TestCompleteLimit(t *testing.T) {
	tr := New()
	for _, s := range []string{"aa", "ab", "ac", "ad", "ae"} {
		tr.Insert(s, true)
	}
	out := tr.Complete("a", 3)
	require.Len(t, out, 3)
	for _, c := range out {
		assert.True(t, strings.HasPrefix(c.Term, "a"))
	}
}

func TestCompleteDefaultLimit(t *testing.T) {
	tr := New()
	for c := byte('a'); c <= 'z'; c++ {
		tr.Insert("x"+string(c), true)
	}
	assert.Len(t, tr.Complete("x", 0), 10)
}

func TestCompleteUnknownPrefix(t *testing.T) {
	tr := New()
	tr.Insert("cat", true)
	assert.Empty(t, tr.Complete("dog", 10))
}

func TestCompletePrefixIsItsOwnMatch(t *testing.T) {
	tr := New()
	tr.Insert("type", true)
	tr.Insert("typescript", true)

	out := tr.Complete("type", 10)
	require.Len(t, out, 2)
	assert.Equal(t, "type", out[0].Term)
	assert.Equal(t, "typescript", out[1].Term)
}

func TestRemove(t *testing.T) {
	tr := New()
	tr.Insert("cat", true)
	tr.Insert("cats", true)

	tr.Remove("cat")

	assert.False(t, tr.Has("cat"))
	assert.True(t, tr.Has("cats"))
	assert.Equal(t, 1, tr.Len())

	// Lazy deletion keeps structural nodes; only "cats" completes now.
	out := tr.Complete("cat", 10)
	require.Len(t, out, 1)
	assert.Equal(t, "cats", out[0].Term)
}

func TestRemoveZeroesWeight(t *testing.T) {
	tr := New()
	tr.Insert("cat", true)
	tr.Insert("cat", true)
	tr.Remove("cat")
	tr.Insert("cat", true)

	out := tr.Complete("cat", 10)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Weight)
}

func TestRemoveAbsentTermIsNoop(t *testing.T) {
	tr := New()
	tr.Insert("cat", true)
	tr.Remove("ghost")
	tr.Remove("ca")
	assert.Equal(t, 1, tr.Len())
}

// Package topk selects the best K items under a caller-supplied comparator
// using a bounded min-heap, so selection is O(n log k) regardless of input
// size.
package topk

import (
	"container/heap"
	"sort"
)

// Comparator orders items: a negative result places a before b.
type Comparator[T any] func(a, b T) int

// Select returns the k items the comparator ranks first, sorted by the
// comparator. Duplicates are preserved; k <= 0 returns nil.
func Select[T any](items []T, k int, cmp Comparator[T]) []T {
	if k <= 0 {
		return nil
	}
	h := &boundedHeap[T]{cmp: cmp}
	for _, item := range items {
		if h.Len() < k {
			heap.Push(h, item)
			continue
		}
		// The heap root is the worst of the current best; replace it when
		// the incoming item ranks ahead of it.
		if cmp(item, h.items[0]) < 0 {
			h.items[0] = item
			heap.Fix(h, 0)
		}
	}
	out := make([]T, len(h.items))
	copy(out, h.items)
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j]) < 0
	})
	return out
}

// boundedHeap inverts the comparator so the worst retained item sits at
// the root.
type boundedHeap[T any] struct {
	items []T
	cmp   Comparator[T]
}

func (h *boundedHeap[T]) Len() int            { return len(h.items) }
func (h *boundedHeap[T]) Less(i, j int) bool  { return h.cmp(h.items[i], h.items[j]) > 0 }
func (h *boundedHeap[T]) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *boundedHeap[T]) Push(x any)          { h.items = append(h.items, x.(T)) }
func (h *boundedHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

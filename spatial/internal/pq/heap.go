// Package pq implements a generic binary min-heap shared by the grid
// pathfinder (A*) and the conveyor router (Dijkstra) in package spatial.
// Both need the same shape — pop the lowest-priority pending cell/entity —
// so the heap lives once here rather than being duplicated per algorithm.
package pq

import "golang.org/x/exp/constraints"

type entry[K constraints.Ordered, V any] struct {
	priority K
	value    V
}

// Heap is a binary min-heap keyed by priority K, carrying an arbitrary
// payload V. The zero value is not usable; use New.
type Heap[K constraints.Ordered, V any] struct {
	items []entry[K, V]
}

// New constructs an empty Heap.
func New[K constraints.Ordered, V any]() *Heap[K, V] {
	return &Heap[K, V]{}
}

// Len returns the number of pending items.
func (h *Heap[K, V]) Len() int { return len(h.items) }

// Push inserts value with the given priority.
func (h *Heap[K, V]) Push(priority K, value V) {
	h.items = append(h.items, entry[K, V]{priority: priority, value: value})
	h.siftUp(len(h.items) - 1)
}

// Pop removes and returns the lowest-priority item. ok is false if the
// heap is empty.
func (h *Heap[K, V]) Pop() (value V, priority K, ok bool) {
	if len(h.items) == 0 {
		return value, priority, false
	}
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top.value, top.priority, true
}

func (h *Heap[K, V]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].priority <= h.items[i].priority {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *Heap[K, V]) siftDown(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.items[left].priority < h.items[smallest].priority {
			smallest = left
		}
		if right < n && h.items[right].priority < h.items[smallest].priority {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

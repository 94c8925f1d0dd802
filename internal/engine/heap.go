// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package engine

import "container/heap"

// rankItem is one entry in the scheduler's min-heap: a node name ordered by
// (rank, id). id breaks ties deterministically in registration order, so two
// nodes enqueued at the same rank in the same pass always pop in a stable
// order — useful for reproducible traces and tests.
type rankItem struct {
	name string
	rank int
	id   int
}

// rankHeap is a container/heap.Interface min-heap keyed by rank, grounded on
// the same container/heap pattern the teacher's cache/precompute.go uses for
// its own priority queue.
type rankHeap []rankItem

func (h rankHeap) Len() int { return len(h) }
func (h rankHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank < h[j].rank
	}
	return h[i].id < h[j].id
}
func (h rankHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankHeap) Push(x any) {
	*h = append(*h, x.(rankItem))
}

func (h *rankHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// scheduler wraps rankHeap with the parallel "in-heap" set spec.md §4.6
// requires: at most one pending entry per node name, so a node enqueued by
// two different settling dependencies in the same pass is still recomputed
// exactly once.
type scheduler struct {
	h      rankHeap
	inHeap map[string]bool
}

func newScheduler() *scheduler {
	return &scheduler{inHeap: make(map[string]bool)}
}

func (s *scheduler) enqueue(n *node) {
	if s.inHeap[n.name] {
		return
	}
	s.inHeap[n.name] = true
	heap.Push(&s.h, rankItem{name: n.name, rank: n.rank, id: n.id})
}

func (s *scheduler) empty() bool { return s.h.Len() == 0 }

func (s *scheduler) pop() string {
	item := heap.Pop(&s.h).(rankItem)
	delete(s.inHeap, item.name)
	return item.name
}

// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package analysis

import (
	"sort"

	"github.com/Melchoirr/Ripple/internal/diag"
)

// CheckCycles runs depth-first search with a recursion stack over the
// dependency graph (self-edges already removed by the caller — a
// self-referential pre(self, init) is resolved against temporal state, not a
// graph edge) and reports one cycle, with its full path, for each back edge
// it meets to a node still on the stack. Each node is expanded once, so a
// cycle that is only reachable through an already finished node is not
// reported separately.
//
// This generalizes the teacher's services/trace/dag Builder.detectCycles,
// which returns on the first cycle found; here every back-edge to a node
// still on the stack yields one more reported cycle, and the walk continues
// instead of returning early.
func CheckCycles(deps map[string][]string) diag.Diagnostics {
	var out diag.Diagnostics

	names := make([]string, 0, len(deps))
	for n := range deps {
		names = append(names, n)
	}
	sort.Strings(names) // deterministic diagnostic order

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var dfs func(node string)
	dfs = func(node string) {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		// Sort successors too, so two runs over the same graph always
		// report cycles (and their rotations) in the same order.
		succ := append([]string(nil), deps[node]...)
		sort.Strings(succ)

		for _, next := range succ {
			if onStack[next] {
				out = append(out, diag.Cycle(cyclePath(path, next)))
				continue
			}
			if !visited[next] {
				dfs(next)
			}
			// Returning to a fully-visited (but not on-stack) node is not a
			// cycle — it's a DAG diamond, already settled.
		}

		path = path[:len(path)-1]
		onStack[node] = false
	}

	for _, n := range names {
		if !visited[n] {
			dfs(n)
		}
	}

	return out
}

// cyclePath returns the suffix of path starting at start, with start
// appended again to close the loop: e.g. path=[A,B,C], start=A ->
// [A,B,C,A].
func cyclePath(path []string, start string) []string {
	idx := 0
	for i, n := range path {
		if n == start {
			idx = i
			break
		}
	}
	cycle := append([]string(nil), path[idx:]...)
	return append(cycle, start)
}

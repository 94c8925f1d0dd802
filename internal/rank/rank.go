// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package rank assigns each node its scheduling rank (spec.md §4.4): sources
// are rank 0, and every other node is one more than the deepest dependency it
// reads. Ranks drive the engine's min-heap scheduler (internal/engine) so a
// diamond's join point is never evaluated against a stale sibling.
package rank

import "fmt"

// Assign computes rank(n) for every node in deps by memoized DFS longest
// path. deps maps a node name to the names of the nodes it reads (self-edges
// must already be removed by the caller, internal/compiler). A dependency
// with no entry of its own in deps, such as a source, is treated as rank 0.
//
// Assign panics if it detects a cycle: static analysis (internal/analysis's
// CheckCycles) must have already rejected any program reaching this phase,
// so a cycle here is a compiler bug, not a user error (spec.md §4.4).
func Assign(deps map[string][]string) map[string]int {
	ranks := make(map[string]int, len(deps))
	state := make(map[string]int) // 0=unvisited, 1=in-progress, 2=done

	var visit func(name string) int
	visit = func(name string) int {
		switch state[name] {
		case 2:
			return ranks[name]
		case 1:
			panic(fmt.Sprintf("rank.Assign: cycle involving %q (static cycle detection should have rejected this program)", name))
		}
		state[name] = 1

		d, ok := deps[name]
		if !ok || len(d) == 0 {
			state[name] = 2
			ranks[name] = 0
			return 0
		}

		max := 0
		for _, dep := range d {
			if r := visit(dep); r+1 > max {
				max = r + 1
			}
		}
		state[name] = 2
		ranks[name] = max
		return max
	}

	for name := range deps {
		if state[name] == 0 {
			visit(name)
		}
	}
	return ranks
}

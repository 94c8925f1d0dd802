// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package engine

import "github.com/Melchoirr/Ripple/internal/value"

// NodeSnapshot is a read-only view of one node's current state, returned by
// Dump. It exists so a CLI `--dump` flag or a debugging sink can print the
// graph without reaching into engine internals — the Go equivalent of the
// original implementation's print_graph helper (spec.md's supplemented
// features: see DESIGN.md).
type NodeSnapshot struct {
	Name    string
	Kind    string
	Rank    int
	Value   value.Value
	Trigger string
	Failed  bool
}

// Dump returns every node's current snapshot in registration order,
// deterministic across calls for a given sequence of PushEvent calls.
func (e *Engine) Dump() []NodeSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]NodeSnapshot, 0, len(e.order))
	for _, name := range e.order {
		n := e.nodes[name]
		out = append(out, NodeSnapshot{
			Name:    n.name,
			Kind:    n.kind.String(),
			Rank:    n.rank,
			Value:   n.cached,
			Trigger: n.trigger,
			Failed:  n.lastErr != nil,
		})
	}
	return out
}

// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package engine implements the graph engine: node registry, rank-ordered
// min-heap scheduler, and propagation loop (spec.md §4.6). It is the only
// package that mutates a node's cached value or temporal state outside of a
// single eval.EvalNode call.
package engine

import (
	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/eval"
	"github.com/Melchoirr/Ripple/internal/value"
)

// Kind distinguishes the three node roles spec.md §2 defines.
type Kind int

const (
	Source Kind = iota
	Stream
	Sink
)

func (k Kind) String() string {
	switch k {
	case Source:
		return "source"
	case Stream:
		return "stream"
	case Sink:
		return "sink"
	default:
		return "unknown"
	}
}

// node is the engine's internal representation of one graph node. Field
// names are unexported: callers interact through Engine's methods and the
// read-only NodeSnapshot returned by Dump.
type node struct {
	id   int
	name string
	kind Kind
	rank int

	// expr and readDeps are nil/empty for Source nodes, which have no
	// formula — their value only ever changes via PushEvent.
	expr     ast.Expr
	readDeps []string

	// trigger, when non-empty, names the single dependency this node is
	// subscribed to (spec.md §4.6's "on X" clause); readDeps may still list
	// other names the formula reads as plain values.
	trigger string

	stateful bool
	temporal *eval.State

	cached value.Value

	// lastErr records the most recent runtime evaluation failure against
	// this node (spec.md §7): the node keeps its previous cached value and
	// is not re-enqueued for the failed step, but the engine remembers the
	// failure for Dump/diagnostics.
	lastErr error
}

// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package eval implements the pure expression evaluator and the temporal
// state machine threaded through it (spec.md §4.5). Eval itself never
// touches the graph; internal/engine owns node registration, scheduling, and
// committing a node's freshly computed value back into its cache.
package eval

import "github.com/Melchoirr/Ripple/internal/value"

// PreCell is the per-`pre` cell spec.md §4.5 describes, needed only for a
// self-referential pre(self, init): a non-self pre reads its dependency's
// current cached value directly (see Context.Deps), since dependency nodes
// have already settled earlier in the same rank-ordered pass. A
// self-reference is deliberately excluded from the dependency edge set
// (spec.md §4.1), so the only way to recover "my own previous value" is this
// cell, committed by EvalNode after the enclosing formula returns.
type PreCell struct {
	Last    value.Value
	HasLast bool
}

// FoldCell is the fold accumulator cell. The first evaluation seeds Acc with
// the fold's Initial expression and returns it unmodified; every later
// evaluation applies the accumulator lambda once.
type FoldCell struct {
	Acc         value.Value
	Initialized bool
}

// State is one stateful node's temporal_state record (spec.md §4.5): at most
// one self-pre cell (a node only ever pre-references itself under one name —
// its own) and at most one fold cell. Stateless nodes need no State at all;
// internal/engine only allocates one when ast.IsStateful reports true.
type State struct {
	SelfPre *PreCell
	Fold    *FoldCell

	pendingSelfCommit bool
}

// NewState allocates an empty temporal record for a stateful node.
func NewState() *State {
	return &State{}
}

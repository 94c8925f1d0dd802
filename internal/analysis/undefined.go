// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package analysis

import (
	"strings"

	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/diag"
)

// CheckUndefined verifies that every dependency extracted from a stream or
// sink's expression resolves against known — the set of declared
// source/stream/sink names augmented with each struct source's expanded
// field paths ("name.field"). Resolution (spec.md §4.2):
//
//  1. exact match against known, or
//  2. if the symbol is dotted, its first segment matches a name in known
//     (the validity of subsequent segments is left to type inference).
//
// known is built by the caller (internal/compiler), since only the
// orchestrator has run type inference and therefore knows which sources are
// struct-typed.
func CheckUndefined(streams []ast.StreamDecl, sinks []ast.SinkDecl, known map[string]struct{}) diag.Diagnostics {
	var out diag.Diagnostics
	for _, s := range streams {
		out = append(out, checkExprRefs(s.Name, s.Expression, s.Trigger, known)...)
	}
	for _, s := range sinks {
		out = append(out, checkExprRefs(s.Name, s.Expression, "", known)...)
	}
	return out
}

func checkExprRefs(context string, expr ast.Expr, trigger string, known map[string]struct{}) diag.Diagnostics {
	var out diag.Diagnostics
	deps := ast.Dependencies(expr)
	if trigger != "" {
		deps[trigger] = struct{}{}
	}
	// A stream's own name may legitimately appear in its dependency set via
	// a self-referential pre(self, init); that is resolved against temporal
	// state, not the node table, so it is never undefined.
	delete(deps, context)

	for d := range deps {
		if resolves(d, known) {
			continue
		}
		out = append(out, diag.Undefined(d, context))
	}
	return out
}

func resolves(symbol string, known map[string]struct{}) bool {
	if _, ok := known[symbol]; ok {
		return true
	}
	if idx := strings.IndexByte(symbol, '.'); idx > 0 {
		root := symbol[:idx]
		_, ok := known[root]
		return ok
	}
	return false
}

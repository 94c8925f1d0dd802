// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package analysis implements the three static checks spec.md §4.2 runs in
// fixed order: duplicate definition, undefined reference, and cycle
// detection. Each function collects every diagnostic for its phase before
// returning — the orchestrator (internal/compiler) decides whether to abort
// after each phase.
package analysis

import (
	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/diag"
)

// CheckDuplicates reports every name declared more than once within its
// namespace (source/stream/sink share one namespace since they all produce
// graph nodes; func and type each have their own). Each redefinition is
// reported with the name and the redefining declaration's Pos; the location
// of the first definition is not part of the diagnostic.
func CheckDuplicates(p ast.Program) diag.Diagnostics {
	var out diag.Diagnostics
	out = append(out, duplicatesIn(nodeNames(p))...)
	out = append(out, duplicatesIn(funcNames(p))...)
	out = append(out, duplicatesIn(typeNames(p))...)
	return out
}

type namedPos struct {
	name string
	pos  ast.Pos
}

func nodeNames(p ast.Program) []namedPos {
	var names []namedPos
	for _, s := range p.Sources() {
		names = append(names, namedPos{s.Name, s.Pos})
	}
	for _, s := range p.Streams() {
		names = append(names, namedPos{s.Name, s.Pos})
	}
	for _, s := range p.Sinks() {
		names = append(names, namedPos{s.Name, s.Pos})
	}
	return names
}

func funcNames(p ast.Program) []namedPos {
	var names []namedPos
	for _, f := range p.Funcs() {
		names = append(names, namedPos{f.Name, f.Pos})
	}
	return names
}

func typeNames(p ast.Program) []namedPos {
	var names []namedPos
	for _, t := range p.Types() {
		names = append(names, namedPos{t.Name, t.Pos})
	}
	return names
}

func duplicatesIn(names []namedPos) diag.Diagnostics {
	var out diag.Diagnostics
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n.name] {
			out = append(out, diag.Duplicate(n.name, n.pos))
			continue
		}
		seen[n.name] = true
	}
	return out
}

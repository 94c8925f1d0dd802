// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package compiler implements the fixed eleven-step orchestration spec.md
// §4.7 describes: it is the only package that calls internal/analysis,
// internal/types, internal/rank, and internal/engine together, and the only
// place that decides whether a diagnostic batch is fatal.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Melchoirr/Ripple/internal/analysis"
	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/diag"
	"github.com/Melchoirr/Ripple/internal/engine"
	"github.com/Melchoirr/Ripple/internal/eval"
	"github.com/Melchoirr/Ripple/internal/rank"
	"github.com/Melchoirr/Ripple/internal/types"
	"github.com/Melchoirr/Ripple/internal/value"
)

// Options configures a Compile call. Logger and CSV may be left zero; New
// engine.New already tolerates a nil logger, and a nil CSVProvider simply
// makes the CSV builtins fail if the program calls them.
type Options struct {
	Logger *slog.Logger
	CSV    eval.CSVProvider
}

// Compile runs spec.md §4.7's fixed phase order over a parsed program and
// returns a ready-to-drive Engine. A non-nil error means a blocking static
// check failed; diags always carries every diagnostic collected, including
// the non-fatal TypeMismatch warnings from phase 3, for the caller to print
// regardless of outcome.
func Compile(p ast.Program, opts Options) (*engine.Engine, diag.Diagnostics, error) {
	var diags diag.Diagnostics

	// Phases 1-2 (collect type aliases, collect user functions) happen
	// inside types.Infer, which needs both before it can resolve annotations
	// and function return types.
	typeResult, typeDiags := types.Infer(p) // phase 3: type inferencer (warnings only)
	diags = append(diags, typeDiags...)

	if d := analysis.CheckDuplicates(p); len(d) > 0 { // phase 4
		diags = append(diags, d...)
		return nil, diags, fmt.Errorf("compile aborted: %w", diag.Diagnostics(d))
	}

	known := knownNames(p)
	if d := analysis.CheckUndefined(p.Streams(), p.Sinks(), known); len(d) > 0 { // phase 5
		diags = append(diags, d...)
		return nil, diags, fmt.Errorf("compile aborted: %w", diag.Diagnostics(d))
	}

	// A struct-typed source's assembly ("p" reads "p.x"/"p.y" back together)
	// is never written by the user: the compiler synthesizes it here, the
	// same StructLit-of-field-identifiers formula spec.md §3 describes, so
	// it can be scheduled and ranked exactly like any other stream.
	assembly := synthesizeAssemblyStreams(p)

	allStreams := append(append([]ast.StreamDecl(nil), p.Streams()...), assembly...)
	depGraph := buildDependencyGraph(allStreams, p.Sinks(), known)
	if d := analysis.CheckCycles(depGraph); len(d) > 0 { // phase 6
		diags = append(diags, d...)
		return nil, diags, fmt.Errorf("compile aborted: %w", diag.Diagnostics(d))
	}

	eng := engine.New(opts.Logger, opts.CSV)

	funcs := make(map[string]ast.FuncDecl, len(p.Funcs()))
	for _, f := range p.Funcs() {
		funcs[f.Name] = f
	}
	eng.SetFuncs(funcs)

	if err := registerSources(eng, p, typeResult, funcs, opts.CSV); err != nil { // phase 7
		return nil, diags, fmt.Errorf("registering sources: %w", err)
	}

	ranks := rank.Assign(depGraph) // phase 8

	if err := registerStreams(eng, allStreams, typeResult, depGraph, ranks); err != nil { // phase 9
		return nil, diags, fmt.Errorf("registering streams: %w", err)
	}
	if err := registerSinks(eng, p, depGraph, ranks); err != nil { // phase 10
		return nil, diags, fmt.Errorf("registering sinks: %w", err)
	}

	initDiags := eng.Initialize(context.Background()) // phase 11
	diags = append(diags, initDiags...)

	return eng, diags, nil
}

// knownNames is the set internal/analysis.CheckUndefined resolves against:
// every declared source/stream/sink name, plus the "root.field" path of each
// field node a struct-typed source expands into. Field paths of struct values
// that are not expanded (struct-typed streams) are left out, so they resolve
// and normalize to their root node.
func knownNames(p ast.Program) map[string]struct{} {
	known := make(map[string]struct{})
	for _, s := range p.Sources() {
		known[s.Name] = struct{}{}
	}
	for _, s := range p.Streams() {
		known[s.Name] = struct{}{}
	}
	for _, s := range p.Sinks() {
		known[s.Name] = struct{}{}
	}
	for _, s := range p.Sources() {
		for _, f := range structFieldNames(s) {
			known[s.Name+"."+f] = struct{}{}
		}
	}
	return known
}

// synthesizeAssemblyStreams builds one stream per struct-typed source that
// reassembles its expanded field nodes, e.g. source "p" with fields x,y
// becomes stream "p" = {x: p.x, y: p.y}. It never runs against a node that
// already has its own user-declared stream/sink of the same name — that
// would already have been caught as a duplicate in phase 4.
func synthesizeAssemblyStreams(p ast.Program) []ast.StreamDecl {
	var out []ast.StreamDecl
	for _, s := range p.Sources() {
		fields := structFieldNames(s)
		if fields == nil {
			continue
		}
		lit := ast.StructLit{Fields: make([]ast.StructField, len(fields))}
		for i, f := range fields {
			lit.Fields[i] = ast.StructField{Name: f, Value: ast.Identifier{Name: s.Name + "." + f}}
		}
		out = append(out, ast.StreamDecl{Name: s.Name, Expression: lit})
	}
	return out
}

// buildDependencyGraph extracts and normalizes every stream/sink's
// dependency set: self-edges are dropped (pre's self-reference is resolved
// through temporal state, not a graph edge — spec.md §4.2), and a dotted
// symbol that doesn't name a registered node itself (e.g. a struct whose
// field-level nodes weren't expanded) is normalized to its root segment, per
// the same resolution rule internal/analysis.CheckUndefined applies.
func buildDependencyGraph(streams []ast.StreamDecl, sinks []ast.SinkDecl, known map[string]struct{}) map[string][]string {
	graph := make(map[string][]string)
	for _, s := range streams {
		graph[s.Name] = normalizedDeps(s.Name, s.Expression, s.Trigger, known)
	}
	for _, s := range sinks {
		graph[s.Name] = normalizedDeps(s.Name, s.Expression, "", known)
	}
	return graph
}

func normalizedDeps(self string, expr ast.Expr, trigger string, known map[string]struct{}) []string {
	raw := ast.Dependencies(expr)
	if trigger != "" {
		raw[trigger] = struct{}{}
	}
	delete(raw, self)

	seen := make(map[string]struct{}, len(raw))
	var out []string
	for d := range raw {
		norm := normalizeSymbol(d, known)
		if norm == self {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	sort.Strings(out) // deterministic registration/rank-tie order
	return out
}

func normalizeSymbol(symbol string, known map[string]struct{}) string {
	if _, ok := known[symbol]; ok {
		return symbol
	}
	if idx := strings.IndexByte(symbol, '.'); idx > 0 {
		root := symbol[:idx]
		if _, ok := known[root]; ok {
			return root
		}
	}
	return symbol
}

func registerSources(eng *engine.Engine, p ast.Program, tr *types.Result, funcs map[string]ast.FuncDecl, csv eval.CSVProvider) error {
	for _, s := range p.Sources() {
		fields := structFieldNames(s)
		if fields != nil {
			initial, err := evalStructInitial(s, fields, funcs, csv)
			if err != nil {
				return err
			}
			if err := eng.RegisterStructSource(s.Name, fields, initial); err != nil {
				return err
			}
			continue
		}

		initial, err := evalScalarInitial(s, tr, funcs, csv)
		if err != nil {
			return err
		}
		if err := eng.RegisterSource(s.Name, initial); err != nil {
			return err
		}
	}
	return nil
}

// structFieldNames returns field names in declaration order if s is
// struct-typed (via an explicit StructTypeNode annotation, or inferred from
// a struct-literal Initial), else nil.
func structFieldNames(s ast.SourceDecl) []string {
	if st, ok := s.TypeSig.(ast.StructTypeNode); ok {
		return st.Names()
	}
	if lit, ok := s.Initial.(ast.StructLit); ok {
		names := make([]string, len(lit.Fields))
		for i, f := range lit.Fields {
			names[i] = f.Name
		}
		return names
	}
	return nil
}

func evalStructInitial(s ast.SourceDecl, fields []string, funcs map[string]ast.FuncDecl, csv eval.CSVProvider) (value.Struct, error) {
	if s.Initial == nil {
		values := make([]value.Value, len(fields))
		for i := range values {
			values[i] = value.Unit{}
		}
		return value.NewStruct(fields, values), nil
	}
	v, err := eval.EvalNode(s.Initial, "", nil, funcs, nil, csv)
	if err != nil {
		return value.Struct{}, fmt.Errorf("evaluating initial value of source %q: %w", s.Name, err)
	}
	sv, ok := v.(value.Struct)
	if !ok {
		return value.Struct{}, fmt.Errorf("source %q: initial expression did not evaluate to a struct", s.Name)
	}
	return sv, nil
}

func evalScalarInitial(s ast.SourceDecl, tr *types.Result, funcs map[string]ast.FuncDecl, csv eval.CSVProvider) (value.Value, error) {
	if s.Initial == nil {
		return zeroValue(tr.NodeTypes[s.Name]), nil
	}
	v, err := eval.EvalNode(s.Initial, "", nil, funcs, nil, csv)
	if err != nil {
		return nil, fmt.Errorf("evaluating initial value of source %q: %w", s.Name, err)
	}
	return v, nil
}

func zeroValue(t types.Type) value.Value {
	switch tt := t.(type) {
	case types.Basic:
		switch tt {
		case types.Int:
			return value.Int(0)
		case types.Float:
			return value.Float(0)
		case types.Bool:
			return value.Bool(false)
		case types.String:
			return value.String("")
		default:
			return value.Unit{}
		}
	case types.Array:
		return value.Array{}
	case types.Struct:
		names := make([]string, 0, len(tt.Fields))
		for n := range tt.Fields {
			names = append(names, n)
		}
		sort.Strings(names)
		values := make([]value.Value, len(names))
		for i, n := range names {
			values[i] = zeroValue(tt.Fields[n])
		}
		return value.NewStruct(names, values)
	default:
		return value.Unit{}
	}
}

func registerStreams(eng *engine.Engine, streams []ast.StreamDecl, tr *types.Result, depGraph map[string][]string, ranks map[string]int) error {
	sort.SliceStable(streams, func(i, j int) bool { return ranks[streams[i].Name] < ranks[streams[j].Name] })

	for _, s := range streams {
		var def value.Value
		if s.Trigger != "" {
			def = zeroValue(tr.NodeTypes[s.Name])
		}
		err := eng.RegisterStream(
			s.Name, s.Expression, depGraph[s.Name], s.Trigger,
			ranks[s.Name], ast.IsStateful(s.Expression), def,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func registerSinks(eng *engine.Engine, p ast.Program, depGraph map[string][]string, ranks map[string]int) error {
	sinks := p.Sinks()
	sort.SliceStable(sinks, func(i, j int) bool { return ranks[sinks[i].Name] < ranks[sinks[j].Name] })

	for _, s := range sinks {
		err := eng.RegisterSink(s.Name, s.Expression, depGraph[s.Name], ranks[s.Name], ast.IsStateful(s.Expression))
		if err != nil {
			return err
		}
	}
	return nil
}

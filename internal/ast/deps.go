// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package ast

// Dependencies walks expr with an empty lexical scope and returns the set of
// free symbols it reads (spec.md §4.1). An Identifier contributes its name
// iff not locally bound by an enclosing Let or Lambda. A FieldAccess chain
// rooted at an Identifier contributes the single dotted symbol ("p.x"); a
// chain rooted at something else (array index, call result) contributes
// nothing from the FieldAccess itself — its Object subtree is still walked.
//
// pre(s, init) contributes s unconditionally, even when s is the current
// node's own name: the self-reference is needed by IsStateful/the engine's
// self-commit step, and is filtered out of the dependency *edge* set later
// by the compiler, not here.
func Dependencies(expr Expr) map[string]struct{} {
	deps := make(map[string]struct{})
	walkDeps(expr, map[string]struct{}{}, deps)
	return deps
}

func walkDeps(expr Expr, scope map[string]struct{}, deps map[string]struct{}) {
	switch e := expr.(type) {
	case IntLit, FloatLit, BoolLit, StringLit:
		// no references
	case Identifier:
		if _, bound := scope[e.Name]; !bound {
			deps[e.Name] = struct{}{}
		}
	case BinaryOp:
		walkDeps(e.Left, scope, deps)
		walkDeps(e.Right, scope, deps)
	case UnaryOp:
		walkDeps(e.Operand, scope, deps)
	case If:
		walkDeps(e.Cond, scope, deps)
		walkDeps(e.Then, scope, deps)
		walkDeps(e.Else, scope, deps)
	case Let:
		walkDeps(e.Value, scope, deps)
		inner := withBound(scope, e.Name)
		walkDeps(e.Body, inner, deps)
	case Lambda:
		inner := withBound(scope, e.Params...)
		walkDeps(e.Body, inner, deps)
	case Call:
		for _, a := range e.Args {
			walkDeps(a, scope, deps)
		}
	case StructLit:
		for _, f := range e.Fields {
			walkDeps(f.Value, scope, deps)
		}
	case FieldAccess:
		if path, ok := DottedPath(e); ok {
			if base, isIdent := rootIdentifier(e); !isIdent || !isBound(scope, base) {
				deps[path] = struct{}{}
				return
			}
			// The path's root is a lexically bound name (e.g. a lambda
			// parameter that happens to be a struct): no graph dependency,
			// just a local field read.
			return
		}
		walkDeps(e.Object, scope, deps)
	case ArrayLit:
		for _, elem := range e.Elements {
			walkDeps(elem, scope, deps)
		}
	case ArrayAccess:
		walkDeps(e.Array, scope, deps)
		walkDeps(e.Index, scope, deps)
	case MapOp:
		walkDeps(e.Array, scope, deps)
		walkDeps(e.Mapper, scope, deps)
	case FilterOp:
		walkDeps(e.Array, scope, deps)
		walkDeps(e.Predicate, scope, deps)
	case ReduceOp:
		walkDeps(e.Array, scope, deps)
		walkDeps(e.Initial, scope, deps)
		walkDeps(e.Accumulator, scope, deps)
	case PreOp:
		deps[e.Stream] = struct{}{}
		walkDeps(e.Initial, scope, deps)
	case FoldOp:
		deps[e.Stream] = struct{}{}
		walkDeps(e.Initial, scope, deps)
		walkDeps(e.Accumulator, scope, deps)
	}
}

func rootIdentifier(e Expr) (string, bool) {
	switch n := e.(type) {
	case Identifier:
		return n.Name, true
	case FieldAccess:
		return rootIdentifier(n.Object)
	default:
		return "", false
	}
}

func withBound(scope map[string]struct{}, names ...string) map[string]struct{} {
	next := make(map[string]struct{}, len(scope)+len(names))
	for k := range scope {
		next[k] = struct{}{}
	}
	for _, n := range names {
		next[n] = struct{}{}
	}
	return next
}

func isBound(scope map[string]struct{}, name string) bool {
	_, ok := scope[name]
	return ok
}

// IsStateful reports whether expr syntactically contains pre or fold
// anywhere in its tree. The compiler uses this to decide whether a node's
// formula threads temporal state.
func IsStateful(expr Expr) bool {
	stateful := false
	var walk func(Expr)
	walk = func(e Expr) {
		if stateful {
			return
		}
		switch n := e.(type) {
		case PreOp, FoldOp:
			stateful = true
		case BinaryOp:
			walk(n.Left)
			walk(n.Right)
		case UnaryOp:
			walk(n.Operand)
		case If:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case Let:
			walk(n.Value)
			walk(n.Body)
		case Lambda:
			walk(n.Body)
		case Call:
			for _, a := range n.Args {
				walk(a)
			}
		case StructLit:
			for _, f := range n.Fields {
				walk(f.Value)
			}
		case FieldAccess:
			walk(n.Object)
		case ArrayLit:
			for _, elem := range n.Elements {
				walk(elem)
			}
		case ArrayAccess:
			walk(n.Array)
			walk(n.Index)
		case MapOp:
			walk(n.Array)
			walk(n.Mapper)
		case FilterOp:
			walk(n.Array)
			walk(n.Predicate)
		case ReduceOp:
			walk(n.Array)
			walk(n.Initial)
			walk(n.Accumulator)
		}
	}
	walk(expr)
	return stateful
}

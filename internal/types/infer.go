// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package types

import (
	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/diag"
)

// Result is everything downstream phases need from inference: a type per
// declared name, user-function signatures, resolved aliases, and the flat
// "name.field" -> Type map used both to check struct-field references and to
// drive struct-source expansion (spec.md §3).
type Result struct {
	NodeTypes    map[string]Type
	FuncSigs     map[string]Type
	Aliases      map[string]Type
	StructFields map[string]Type
}

// Infer runs the structural inferencer over a whole program (spec.md §4.3).
// Every returned diagnostic is a TypeMismatch, which diag.Diagnostics always
// treats as advisory — callers must not abort compilation on Infer's output
// alone.
func Infer(p ast.Program) (*Result, diag.Diagnostics) {
	r := &Result{
		NodeTypes:    make(map[string]Type),
		FuncSigs:     make(map[string]Type),
		Aliases:      make(map[string]Type),
		StructFields: make(map[string]Type),
	}
	var out diag.Diagnostics

	// Phase 1: type aliases, in declaration order so later aliases may
	// reference earlier ones. A forward or cyclic reference falls back to
	// Any rather than erroring — alias resolution is advisory like the rest
	// of this package.
	for _, td := range p.Types() {
		r.Aliases[td.Name] = resolveTypeNode(td.Def, r.Aliases)
	}

	// Phase 2: user function signatures. Params carry no declared type in
	// this AST, so each is Any; Return is inferred from Body in an env that
	// binds every param to Any.
	for _, fd := range p.Funcs() {
		env := map[string]Type{}
		for _, param := range fd.Params {
			env[param] = Any
		}
		ret := exprType(fd.Body, env, r)
		params := make([]Type, len(fd.Params))
		for i := range params {
			params[i] = Any
		}
		r.FuncSigs[fd.Name] = Function{Params: params, Return: ret}
	}

	// Phase 3: sources. A declared TypeSig is resolved directly; otherwise
	// the type is inferred from Initial (if present) else Any.
	for _, sd := range p.Sources() {
		var inferred Type
		switch {
		case sd.TypeSig != nil:
			inferred = resolveTypeNode(sd.TypeSig, r.Aliases)
			if sd.Initial != nil {
				got := exprType(sd.Initial, nil, r)
				if !Assignable(inferred, got) {
					out = append(out, diag.Mismatch(sd.Name, inferred.String(), got.String()))
				}
			}
		case sd.Initial != nil:
			inferred = exprType(sd.Initial, nil, r)
		default:
			inferred = Any
		}
		r.NodeTypes[sd.Name] = inferred
		registerStructFields(r, sd.Name, inferred)
	}

	// Phase 4: streams, in declaration order. A stream may reference a
	// stream declared later in source order; such forward references fall
	// back to Any on the referencing side until/unless a later pass revisits
	// them. This is the one place the inferencer is order-sensitive — a
	// documented simplification, since inference here is advisory-only and
	// never blocks compilation.
	for _, sd := range p.Streams() {
		t := exprType(sd.Expression, nil, r)
		r.NodeTypes[sd.Name] = t
		registerStructFields(r, sd.Name, t)
	}

	// Phase 5: sinks, same treatment as streams but never struct-expanded
	// (sinks are terminal outputs, not further dependency sources).
	for _, sk := range p.Sinks() {
		t := exprType(sk.Expression, nil, r)
		r.NodeTypes[sk.Name] = t
	}

	return r, out
}

func registerStructFields(r *Result, name string, t Type) {
	s, ok := t.(Struct)
	if !ok {
		return
	}
	for field, ft := range s.Fields {
		r.StructFields[name+"."+field] = ft
	}
}

func resolveTypeNode(n ast.TypeNode, aliases map[string]Type) Type {
	switch tn := n.(type) {
	case ast.BasicTypeNode:
		switch tn.Name {
		case "int":
			return Int
		case "float":
			return Float
		case "bool":
			return Bool
		case "string":
			return String
		case "any":
			return Any
		}
		if alias, ok := aliases[tn.Name]; ok {
			return alias
		}
		return Any
	case ast.ArrayTypeNode:
		return Array{Elem: resolveTypeNode(tn.Element, aliases)}
	case ast.StructTypeNode:
		fields := make(map[string]Type, len(tn.Fields))
		for _, f := range tn.Fields {
			fields[f.Name] = resolveTypeNode(f.Type, aliases)
		}
		return Struct{Fields: fields}
	case ast.FunctionTypeNode:
		params := make([]Type, len(tn.Params))
		for i, p := range tn.Params {
			params[i] = resolveTypeNode(p, aliases)
		}
		return Function{Params: params, Return: resolveTypeNode(tn.Return, aliases)}
	default:
		return Any
	}
}

// exprType infers the type of a single expression. env holds local
// (let/lambda) bindings layered over r.NodeTypes; a nil env means "no local
// bindings yet", the common case for a top-level source/stream/sink
// expression.
func exprType(e ast.Expr, env map[string]Type, r *Result) Type {
	lookup := func(name string) Type {
		if env != nil {
			if t, ok := env[name]; ok {
				return t
			}
		}
		if t, ok := r.NodeTypes[name]; ok {
			return t
		}
		return Any
	}

	switch n := e.(type) {
	case ast.IntLit:
		return Int
	case ast.FloatLit:
		return Float
	case ast.BoolLit:
		return Bool
	case ast.StringLit:
		return String
	case ast.Identifier:
		return lookup(n.Name)
	case ast.BinaryOp:
		left := exprType(n.Left, env, r)
		right := exprType(n.Right, env, r)
		return Promote(n.Op, left, right)
	case ast.UnaryOp:
		operand := exprType(n.Operand, env, r)
		if n.Op == "!" {
			return Bool
		}
		return operand
	case ast.If:
		return LUB(exprType(n.Then, env, r), exprType(n.Else, env, r))
	case ast.Let:
		inner := childEnv(env)
		inner[n.Name] = exprType(n.Value, env, r)
		return exprType(n.Body, inner, r)
	case ast.Lambda:
		inner := childEnv(env)
		for _, p := range n.Params {
			inner[p] = Any
		}
		params := make([]Type, len(n.Params))
		for i := range params {
			params[i] = Any
		}
		return Function{Params: params, Return: exprType(n.Body, inner, r)}
	case ast.Call:
		return callType(n, env, r)
	case ast.StructLit:
		fields := make(map[string]Type, len(n.Fields))
		for _, f := range n.Fields {
			fields[f.Name] = exprType(f.Value, env, r)
		}
		return Struct{Fields: fields}
	case ast.FieldAccess:
		obj := exprType(n.Object, env, r)
		if s, ok := obj.(Struct); ok {
			if ft, ok := s.Fields[n.Field]; ok {
				return ft
			}
		}
		return Any
	case ast.ArrayLit:
		if len(n.Elements) == 0 {
			return Array{Elem: Any}
		}
		elem := exprType(n.Elements[0], env, r)
		for _, el := range n.Elements[1:] {
			elem = LUB(elem, exprType(el, env, r))
		}
		return Array{Elem: elem}
	case ast.ArrayAccess:
		arr := exprType(n.Array, env, r)
		if a, ok := arr.(Array); ok {
			return a.Elem
		}
		return Any
	case ast.MapOp:
		arr := exprType(n.Array, env, r)
		var elem Type = Any
		if a, ok := arr.(Array); ok {
			elem = a.Elem
		}
		inner := childEnv(env)
		for _, p := range n.Mapper.Params {
			inner[p] = elem
		}
		return Array{Elem: exprType(n.Mapper.Body, inner, r)}
	case ast.FilterOp:
		return exprType(n.Array, env, r)
	case ast.ReduceOp:
		arr := exprType(n.Array, env, r)
		var elem Type = Any
		if a, ok := arr.(Array); ok {
			elem = a.Elem
		}
		acc := exprType(n.Initial, env, r)
		if len(n.Accumulator.Params) == 2 {
			inner := childEnv(env)
			inner[n.Accumulator.Params[0]] = acc
			inner[n.Accumulator.Params[1]] = elem
			return exprType(n.Accumulator.Body, inner, r)
		}
		return acc
	case ast.PreOp:
		if t, ok := r.NodeTypes[n.Stream]; ok {
			return LUB(t, exprType(n.Initial, env, r))
		}
		return exprType(n.Initial, env, r)
	case ast.FoldOp:
		return exprType(n.Initial, env, r)
	default:
		return Any
	}
}

func childEnv(env map[string]Type) map[string]Type {
	child := make(map[string]Type, len(env)+1)
	for k, v := range env {
		child[k] = v
	}
	return child
}

// callType dispatches user functions through r.FuncSigs and gives the fixed
// builtin set (spec.md §4.5) a best-effort structural signature. Builtins
// whose return shape depends on argument types (abs, max/min, head, last,
// tail, reverse, sum, transpose) are typed from their arguments; the rest
// have a fixed shape. Unknown names (including the CSV external-collaborator helpers,
// whose shape this package doesn't model) type as Any — a forward reference
// into runtime evaluation, not a compile-time error.
func callType(call ast.Call, env map[string]Type, r *Result) Type {
	if sig, ok := r.FuncSigs[call.Name]; ok {
		if f, ok := sig.(Function); ok {
			return f.Return
		}
	}

	argType := func(i int) Type {
		if i >= len(call.Args) {
			return Any
		}
		return exprType(call.Args[i], env, r)
	}
	elemOf := func(t Type) Type {
		if a, ok := t.(Array); ok {
			return a.Elem
		}
		return Any
	}

	switch call.Name {
	case "abs":
		return argType(0)
	case "sqrt", "avg":
		return Float
	case "max", "min":
		// A single array argument reduces over its element type, matching
		// builtinMinMax's runtime single-array-reduce behavior.
		if len(call.Args) == 1 {
			if a, ok := argType(0).(Array); ok {
				return a.Elem
			}
		}
		var t Type = Any
		for i := range call.Args {
			t = LUB(t, argType(i))
		}
		return t
	case "len", "count", "count_if":
		return Int
	case "head", "last":
		return elemOf(argType(0))
	case "tail", "reverse":
		return argType(0)
	case "sum":
		return elemOf(argType(0))
	case "transpose":
		return Array{Elem: elemOf(argType(0))}
	default:
		return Any
	}
}

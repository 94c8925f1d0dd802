// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package eval

import (
	"fmt"
	"strings"

	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/value"
	"github.com/Melchoirr/Ripple/pkg/ripplerr"
)

// Context carries everything a single eval call needs: local (let/lambda)
// bindings, the current cached values of the node's dependencies, the
// user-function table, the node's own temporal state (nil if stateless), and
// the node currently being recomputed (used to recognize a self-referential
// pre).
type Context struct {
	Env   map[string]value.Value
	Deps  map[string]value.Value
	Funcs map[string]ast.FuncDecl
	State *State
	Self  string
	CSV   CSVProvider
}

func (c *Context) child() *Context {
	env := make(map[string]value.Value, len(c.Env)+1)
	for k, v := range c.Env {
		env[k] = v
	}
	return &Context{Env: env, Deps: c.Deps, Funcs: c.Funcs, State: c.State, Self: c.Self, CSV: c.CSV}
}

// EvalNode evaluates a node's formula to quiescence for one tick and commits
// any pending self-referential pre() into its temporal state before
// returning — the two-phase handoff spec.md §4.5 describes ("the evaluator
// marks a self-ref pending bit during evaluation, and the engine ... commits
// it into the per-pre cell before clearing the bit"). internal/engine calls
// this once per recompute; nothing else in this package performs the commit.
func EvalNode(expr ast.Expr, self string, deps map[string]value.Value, funcs map[string]ast.FuncDecl, state *State, csv CSVProvider) (value.Value, error) {
	ctx := &Context{Env: map[string]value.Value{}, Deps: deps, Funcs: funcs, State: state, Self: self, CSV: csv}
	v, err := Eval(expr, ctx)
	if err != nil {
		return nil, err
	}
	if state != nil && state.pendingSelfCommit {
		state.SelfPre.Last = v
		state.SelfPre.HasLast = true
		state.pendingSelfCommit = false
	}
	return v, nil
}

// Eval is the pure recursive evaluator (spec.md §4.5): eval(expr, env) ->
// value. It never mutates anything outside ctx.State's two cells, and those
// mutations are the documented exception the temporal-state machine
// requires.
func Eval(expr ast.Expr, ctx *Context) (value.Value, error) {
	switch n := expr.(type) {
	case ast.IntLit:
		return value.Int(n.Value), nil
	case ast.FloatLit:
		return value.Float(n.Value), nil
	case ast.BoolLit:
		return value.Bool(n.Value), nil
	case ast.StringLit:
		return value.String(n.Value), nil

	case ast.Identifier:
		if v, ok := ctx.Env[n.Name]; ok {
			return v, nil
		}
		if v, ok := ctx.Deps[n.Name]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %q", ripplerr.ErrUnboundIdentifier, n.Name)

	case ast.BinaryOp:
		left, err := Eval(n.Left, ctx)
		if err != nil {
			return nil, err
		}
		right, err := Eval(n.Right, ctx)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, left, right)

	case ast.UnaryOp:
		operand, err := Eval(n.Operand, ctx)
		if err != nil {
			return nil, err
		}
		return unary(n.Op, operand)

	case ast.If:
		cond, err := Eval(n.Cond, ctx)
		if err != nil {
			return nil, err
		}
		b, ok := value.Truthy(cond)
		if !ok {
			return nil, ripplerr.ErrInvalidCondition
		}
		if b {
			return Eval(n.Then, ctx)
		}
		return Eval(n.Else, ctx)

	case ast.Let:
		v, err := Eval(n.Value, ctx)
		if err != nil {
			return nil, err
		}
		inner := ctx.child()
		inner.Env[n.Name] = v
		return Eval(n.Body, inner)

	case ast.Lambda:
		return nil, fmt.Errorf("eval: lambda is not a standalone value, only a higher-order operator argument")

	case ast.Call:
		return evalCall(n, ctx)

	case ast.StructLit:
		names := make([]string, len(n.Fields))
		values := make([]value.Value, len(n.Fields))
		for i, f := range n.Fields {
			v, err := Eval(f.Value, ctx)
			if err != nil {
				return nil, err
			}
			names[i] = f.Name
			values[i] = v
		}
		return value.NewStruct(names, values), nil

	case ast.FieldAccess:
		// A dotted path that is itself a dependency (an expanded struct-source
		// field such as "p.x") is read directly, unless its root is shadowed
		// by a local let/lambda binding.
		if path, ok := ast.DottedPath(n); ok {
			if v, ok := ctx.Deps[path]; ok {
				root, _, _ := strings.Cut(path, ".")
				if _, local := ctx.Env[root]; !local {
					return v, nil
				}
			}
		}
		obj, err := Eval(n.Object, ctx)
		if err != nil {
			return nil, err
		}
		s, ok := obj.(value.Struct)
		if !ok {
			return nil, ripplerr.ErrNotAStruct
		}
		v, ok := s.Get(n.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ripplerr.ErrUnknownField, n.Field)
		}
		return v, nil

	case ast.ArrayLit:
		out := make(value.Array, len(n.Elements))
		for i, el := range n.Elements {
			v, err := Eval(el, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case ast.ArrayAccess:
		arrV, err := Eval(n.Array, ctx)
		if err != nil {
			return nil, err
		}
		arr, ok := arrV.(value.Array)
		if !ok {
			return nil, ripplerr.ErrNotAnArray
		}
		idxV, err := Eval(n.Index, ctx)
		if err != nil {
			return nil, err
		}
		idx, ok := idxV.(value.Int)
		if !ok || int(idx) < 0 || int(idx) >= len(arr) {
			return nil, ripplerr.ErrIndexOutOfBounds
		}
		return arr[idx], nil

	case ast.MapOp:
		arrV, err := Eval(n.Array, ctx)
		if err != nil {
			return nil, err
		}
		arr, ok := arrV.(value.Array)
		if !ok {
			return nil, ripplerr.ErrNotAnArray
		}
		out := make(value.Array, len(arr))
		for i, el := range arr {
			inner := ctx.child()
			if len(n.Mapper.Params) > 0 {
				inner.Env[n.Mapper.Params[0]] = el
			}
			v, err := Eval(n.Mapper.Body, inner)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case ast.FilterOp:
		arrV, err := Eval(n.Array, ctx)
		if err != nil {
			return nil, err
		}
		arr, ok := arrV.(value.Array)
		if !ok {
			return nil, ripplerr.ErrNotAnArray
		}
		var out value.Array
		for _, el := range arr {
			inner := ctx.child()
			if len(n.Predicate.Params) > 0 {
				inner.Env[n.Predicate.Params[0]] = el
			}
			v, err := Eval(n.Predicate.Body, inner)
			if err != nil {
				return nil, err
			}
			keep, ok := value.Truthy(v)
			if !ok {
				return nil, ripplerr.ErrInvalidCondition
			}
			if keep {
				out = append(out, el)
			}
		}
		return out, nil

	case ast.ReduceOp:
		arrV, err := Eval(n.Array, ctx)
		if err != nil {
			return nil, err
		}
		arr, ok := arrV.(value.Array)
		if !ok {
			return nil, ripplerr.ErrNotAnArray
		}
		acc, err := Eval(n.Initial, ctx)
		if err != nil {
			return nil, err
		}
		if len(n.Accumulator.Params) != 2 {
			return nil, ripplerr.ErrArityMismatch
		}
		for _, el := range arr {
			inner := ctx.child()
			inner.Env[n.Accumulator.Params[0]] = acc
			inner.Env[n.Accumulator.Params[1]] = el
			acc, err = Eval(n.Accumulator.Body, inner)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil

	case ast.PreOp:
		return evalPre(n, ctx)

	case ast.FoldOp:
		return evalFold(n, ctx)

	default:
		return nil, fmt.Errorf("eval: unhandled expression type %T", expr)
	}
}

func evalPre(n ast.PreOp, ctx *Context) (value.Value, error) {
	if ctx.Self != "" && n.Stream == ctx.Self {
		if ctx.State == nil {
			return nil, fmt.Errorf("eval: self-referential pre(%q) on a node with no temporal state", n.Stream)
		}
		if ctx.State.SelfPre == nil {
			ctx.State.SelfPre = &PreCell{}
		}
		cell := ctx.State.SelfPre

		var result value.Value
		if cell.HasLast {
			result = cell.Last
		} else {
			init, err := Eval(n.Initial, ctx)
			if err != nil {
				return nil, err
			}
			result = init
		}
		ctx.State.pendingSelfCommit = true
		return result, nil
	}

	// Non-self: the dependency has already settled earlier in this
	// rank-ordered pass, so its current cached value is read directly — no
	// separate previous-tick cell is needed (spec.md §4.5).
	if v, ok := ctx.Deps[n.Stream]; ok {
		return v, nil
	}
	return Eval(n.Initial, ctx)
}

func evalFold(n ast.FoldOp, ctx *Context) (value.Value, error) {
	if ctx.State == nil {
		return nil, fmt.Errorf("eval: fold(%q) on a node with no temporal state", n.Stream)
	}
	if ctx.State.Fold == nil {
		ctx.State.Fold = &FoldCell{}
	}
	cell := ctx.State.Fold

	if !cell.Initialized {
		init, err := Eval(n.Initial, ctx)
		if err != nil {
			return nil, err
		}
		cell.Acc = init
		cell.Initialized = true
		return init, nil
	}

	current, ok := ctx.Deps[n.Stream]
	if !ok {
		return nil, fmt.Errorf("eval: fold source %q has no cached value", n.Stream)
	}
	if len(n.Accumulator.Params) != 2 {
		return nil, ripplerr.ErrArityMismatch
	}
	inner := ctx.child()
	inner.Env[n.Accumulator.Params[0]] = cell.Acc
	inner.Env[n.Accumulator.Params[1]] = current
	next, err := Eval(n.Accumulator.Body, inner)
	if err != nil {
		return nil, err
	}
	cell.Acc = next
	return next, nil
}

func evalCall(n ast.Call, ctx *Context) (value.Value, error) {
	if fn, ok := ctx.Funcs[n.Name]; ok {
		if len(n.Args) != len(fn.Params) {
			return nil, fmt.Errorf("%w: %q wants %d argument(s), got %d", ripplerr.ErrArityMismatch, n.Name, len(fn.Params), len(n.Args))
		}
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := Eval(a, ctx)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		// Functions are referentially transparent: a fresh environment bound
		// only to params, no inherited let/lambda scope, no temporal state.
		callCtx := &Context{
			Env:   make(map[string]value.Value, len(fn.Params)),
			Deps:  ctx.Deps,
			Funcs: ctx.Funcs,
			CSV:   ctx.CSV,
		}
		for i, p := range fn.Params {
			callCtx.Env[p] = args[i]
		}
		return Eval(fn.Body, callCtx)
	}

	// count_if's second argument is a predicate lambda, evaluated once per
	// element rather than pre-evaluated to a value — special-cased the same
	// way FilterOp is, since Call's generic arg-evaluation loop below would
	// otherwise try (and fail) to evaluate the ast.Lambda as a value.
	if n.Name == "count_if" {
		return evalCountIf(n, ctx)
	}

	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(a, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return callBuiltin(n.Name, args, ctx.CSV)
}

func evalCountIf(n ast.Call, ctx *Context) (value.Value, error) {
	if err := arityCheck(n, 2); err != nil {
		return nil, err
	}
	arrV, err := Eval(n.Args[0], ctx)
	if err != nil {
		return nil, err
	}
	arr, ok := arrV.(value.Array)
	if !ok {
		return nil, ripplerr.ErrNotAnArray
	}
	lambda, ok := n.Args[1].(ast.Lambda)
	if !ok {
		return nil, fmt.Errorf("eval: count_if's second argument must be a lambda")
	}
	return countIf(arr, func(el value.Value) (bool, error) {
		inner := ctx.child()
		if len(lambda.Params) > 0 {
			inner.Env[lambda.Params[0]] = el
		}
		v, err := Eval(lambda.Body, inner)
		if err != nil {
			return false, err
		}
		keep, ok := value.Truthy(v)
		if !ok {
			return false, ripplerr.ErrInvalidCondition
		}
		return keep, nil
	})
}

func arityCheck(n ast.Call, want int) error {
	if len(n.Args) != want {
		return fmt.Errorf("%w: %q wants %d argument(s), got %d", ripplerr.ErrArityMismatch, n.Name, want, len(n.Args))
	}
	return nil
}

// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package eval

import (
	"errors"
	"testing"

	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/value"
	"github.com/Melchoirr/Ripple/pkg/ripplerr"
)

func mustEval(t *testing.T, expr ast.Expr, deps map[string]value.Value) value.Value {
	t.Helper()
	v, err := EvalNode(expr, "", deps, nil, nil, nil)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	return v
}

func TestEval_ArithmeticPromotion(t *testing.T) {
	expr := ast.BinaryOp{Op: "+", Left: ast.IntLit{Value: 1}, Right: ast.FloatLit{Value: 2.5}}
	got := mustEval(t, expr, nil)
	if got != value.Float(3.5) {
		t.Fatalf("1 + 2.5 = %v, want 3.5", got)
	}
}

func TestEval_DivisionAlwaysFloat(t *testing.T) {
	expr := ast.BinaryOp{Op: "/", Left: ast.IntLit{Value: 7}, Right: ast.IntLit{Value: 2}}
	got := mustEval(t, expr, nil)
	if got != value.Float(3.5) {
		t.Fatalf("7 / 2 = %v, want 3.5", got)
	}
}

func TestEval_DivByZeroInt(t *testing.T) {
	expr := ast.BinaryOp{Op: "/", Left: ast.IntLit{Value: 1}, Right: ast.IntLit{Value: 0}}
	_, err := EvalNode(expr, "", nil, nil, nil, nil)
	if !errors.Is(err, ripplerr.ErrDivByZero) {
		t.Fatalf("expected ErrDivByZero, got %v", err)
	}
}

func TestEval_ModuloAlwaysInt(t *testing.T) {
	expr := ast.BinaryOp{Op: "%", Left: ast.IntLit{Value: 7}, Right: ast.IntLit{Value: 3}}
	got := mustEval(t, expr, nil)
	if got != value.Int(1) {
		t.Fatalf("7 %% 3 = %v, want 1", got)
	}
}

func TestEval_IfLet(t *testing.T) {
	expr := ast.Let{
		Name:  "x",
		Value: ast.IntLit{Value: 5},
		Body: ast.If{
			Cond: ast.BinaryOp{Op: ">", Left: ast.Identifier{Name: "x"}, Right: ast.IntLit{Value: 3}},
			Then: ast.StringLit{Value: "big"},
			Else: ast.StringLit{Value: "small"},
		},
	}
	got := mustEval(t, expr, nil)
	if got != value.String("big") {
		t.Fatalf("got %v, want \"big\"", got)
	}
}

func TestEval_StructFieldAccess(t *testing.T) {
	expr := ast.FieldAccess{
		Object: ast.StructLit{Fields: []ast.StructField{
			{Name: "x", Value: ast.IntLit{Value: 1}},
			{Name: "y", Value: ast.IntLit{Value: 2}},
		}},
		Field: "y",
	}
	got := mustEval(t, expr, nil)
	if got != value.Int(2) {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestEval_ArrayMapFilterReduce(t *testing.T) {
	arr := ast.ArrayLit{Elements: []ast.Expr{
		ast.IntLit{Value: 1}, ast.IntLit{Value: 2}, ast.IntLit{Value: 3}, ast.IntLit{Value: 4},
	}}
	doubled := ast.MapOp{Array: arr, Mapper: ast.Lambda{Params: []string{"x"}, Body: ast.BinaryOp{
		Op: "*", Left: ast.Identifier{Name: "x"}, Right: ast.IntLit{Value: 2},
	}}}
	evens := ast.FilterOp{Array: doubled, Predicate: ast.Lambda{Params: []string{"x"}, Body: ast.BinaryOp{
		Op: "==", Left: ast.BinaryOp{Op: "%", Left: ast.Identifier{Name: "x"}, Right: ast.IntLit{Value: 4}}, Right: ast.IntLit{Value: 0},
	}}}
	total := ast.ReduceOp{
		Array:   evens,
		Initial: ast.IntLit{Value: 0},
		Accumulator: ast.Lambda{Params: []string{"acc", "x"}, Body: ast.BinaryOp{
			Op: "+", Left: ast.Identifier{Name: "acc"}, Right: ast.Identifier{Name: "x"},
		}},
	}
	// doubled = [2,4,6,8]; evens (divisible by 4) = [4,8]; sum = 12
	got := mustEval(t, total, nil)
	if got != value.Int(12) {
		t.Fatalf("got %v, want 12", got)
	}
}

func TestEval_ArrayOutOfBounds(t *testing.T) {
	expr := ast.ArrayAccess{
		Array: ast.ArrayLit{Elements: []ast.Expr{ast.IntLit{Value: 1}}},
		Index: ast.IntLit{Value: 5},
	}
	_, err := EvalNode(expr, "", nil, nil, nil, nil)
	if !errors.Is(err, ripplerr.ErrIndexOutOfBounds) {
		t.Fatalf("expected ErrIndexOutOfBounds, got %v", err)
	}
}

func TestEval_Builtins(t *testing.T) {
	arr := ast.ArrayLit{Elements: []ast.Expr{
		ast.IntLit{Value: 3}, ast.IntLit{Value: 1}, ast.IntLit{Value: 4}, ast.IntLit{Value: 1},
	}}
	if got := mustEval(t, ast.Call{Name: "len", Args: []ast.Expr{arr}}, nil); got != value.Int(4) {
		t.Errorf("len = %v, want 4", got)
	}
	if got := mustEval(t, ast.Call{Name: "sum", Args: []ast.Expr{arr}}, nil); got != value.Int(9) {
		t.Errorf("sum = %v, want 9", got)
	}
	if got := mustEval(t, ast.Call{Name: "max", Args: []ast.Expr{ast.IntLit{Value: 3}, ast.IntLit{Value: 7}}}, nil); got != value.Int(7) {
		t.Errorf("max = %v, want 7", got)
	}
	if got := mustEval(t, ast.Call{Name: "max", Args: []ast.Expr{arr}}, nil); got != value.Int(4) {
		t.Errorf("max(array) = %v, want 4", got)
	}
	if got := mustEval(t, ast.Call{Name: "min", Args: []ast.Expr{arr}}, nil); got != value.Int(1) {
		t.Errorf("min(array) = %v, want 1", got)
	}

	matrix := ast.ArrayLit{Elements: []ast.Expr{
		ast.ArrayLit{Elements: []ast.Expr{ast.IntLit{Value: 1}, ast.IntLit{Value: 2}}},
		ast.ArrayLit{Elements: []ast.Expr{ast.IntLit{Value: 3}, ast.IntLit{Value: 4}}},
		ast.ArrayLit{Elements: []ast.Expr{ast.IntLit{Value: 5}, ast.IntLit{Value: 6}}},
	}}
	transposed := mustEval(t, ast.Call{Name: "transpose", Args: []ast.Expr{matrix}}, nil)
	want := value.Array{
		value.Array{value.Int(1), value.Int(3), value.Int(5)},
		value.Array{value.Int(2), value.Int(4), value.Int(6)},
	}
	if !value.Equal(transposed, want) {
		t.Errorf("transpose = %v, want %v", transposed, want)
	}
	empty := mustEval(t, ast.Call{Name: "transpose", Args: []ast.Expr{ast.ArrayLit{}}}, nil)
	if !value.Equal(empty, value.Array{}) {
		t.Errorf("transpose([]) = %v, want []", empty)
	}

	countIfExpr := ast.Call{Name: "count_if", Args: []ast.Expr{arr, ast.Lambda{
		Params: []string{"x"},
		Body:   ast.BinaryOp{Op: "==", Left: ast.Identifier{Name: "x"}, Right: ast.IntLit{Value: 1}},
	}}}
	if got := mustEval(t, countIfExpr, nil); got != value.Int(2) {
		t.Errorf("count_if = %v, want 2", got)
	}
}

func TestEval_UserFunctionCall(t *testing.T) {
	funcs := map[string]ast.FuncDecl{
		"double": {Name: "double", Params: []string{"x"}, Body: ast.BinaryOp{
			Op: "*", Left: ast.Identifier{Name: "x"}, Right: ast.IntLit{Value: 2},
		}},
	}
	expr := ast.Call{Name: "double", Args: []ast.Expr{ast.IntLit{Value: 21}}}
	got, err := EvalNode(expr, "", nil, funcs, nil, nil)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if got != value.Int(42) {
		t.Fatalf("double(21) = %v, want 42", got)
	}
}

func TestEval_UserFunctionArityMismatch(t *testing.T) {
	funcs := map[string]ast.FuncDecl{
		"double": {Name: "double", Params: []string{"x"}, Body: ast.Identifier{Name: "x"}},
	}
	expr := ast.Call{Name: "double", Args: []ast.Expr{}}
	_, err := EvalNode(expr, "", nil, funcs, nil, nil)
	if !errors.Is(err, ripplerr.ErrArityMismatch) {
		t.Fatalf("expected ErrArityMismatch, got %v", err)
	}
}

func TestEval_PreNonSelfReadsCurrentCachedValue(t *testing.T) {
	deps := map[string]value.Value{"a": value.Int(7)}
	expr := ast.PreOp{Stream: "a", Initial: ast.IntLit{Value: 0}}
	got, err := EvalNode(expr, "n", deps, nil, nil, nil)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if got != value.Int(7) {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestEval_PreSelfReferenceCommitsAcrossTicks(t *testing.T) {
	// counter: pre(counter, 0) + 1 — a self-referential accumulating stream.
	expr := ast.BinaryOp{
		Op:    "+",
		Left:  ast.PreOp{Stream: "counter", Initial: ast.IntLit{Value: 0}},
		Right: ast.IntLit{Value: 1},
	}
	state := NewState()

	first, err := EvalNode(expr, "counter", nil, nil, state, nil)
	if err != nil {
		t.Fatalf("tick 1 failed: %v", err)
	}
	if first != value.Int(1) {
		t.Fatalf("tick 1 = %v, want 1 (pre reads init=0)", first)
	}

	second, err := EvalNode(expr, "counter", nil, nil, state, nil)
	if err != nil {
		t.Fatalf("tick 2 failed: %v", err)
	}
	if second != value.Int(2) {
		t.Fatalf("tick 2 = %v, want 2 (pre reads committed 1 from tick 1)", second)
	}

	third, err := EvalNode(expr, "counter", nil, nil, state, nil)
	if err != nil {
		t.Fatalf("tick 3 failed: %v", err)
	}
	if third != value.Int(3) {
		t.Fatalf("tick 3 = %v, want 3", third)
	}
}

func TestEval_FoldAccumulates(t *testing.T) {
	// running sum of a source "x" across ticks.
	expr := ast.FoldOp{
		Stream:  "x",
		Initial: ast.IntLit{Value: 0},
		Accumulator: ast.Lambda{
			Params: []string{"acc", "v"},
			Body:   ast.BinaryOp{Op: "+", Left: ast.Identifier{Name: "acc"}, Right: ast.Identifier{Name: "v"}},
		},
	}
	state := NewState()

	first, err := EvalNode(expr, "total", map[string]value.Value{"x": value.Int(10)}, nil, state, nil)
	if err != nil {
		t.Fatalf("tick 1 failed: %v", err)
	}
	if first != value.Int(0) {
		t.Fatalf("tick 1 = %v, want 0 (fold seeds without consuming first value)", first)
	}

	second, err := EvalNode(expr, "total", map[string]value.Value{"x": value.Int(10)}, nil, state, nil)
	if err != nil {
		t.Fatalf("tick 2 failed: %v", err)
	}
	if second != value.Int(10) {
		t.Fatalf("tick 2 = %v, want 10", second)
	}

	third, err := EvalNode(expr, "total", map[string]value.Value{"x": value.Int(5)}, nil, state, nil)
	if err != nil {
		t.Fatalf("tick 3 failed: %v", err)
	}
	if third != value.Int(15) {
		t.Fatalf("tick 3 = %v, want 15", third)
	}
}

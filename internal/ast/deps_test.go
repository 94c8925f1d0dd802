// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package ast

import (
	"reflect"
	"sort"
	"testing"
)

func names(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestDependencies_Identifier(t *testing.T) {
	deps := Dependencies(BinaryOp{Op: "+", Left: Identifier{"A"}, Right: IntLit{1}})
	if got := names(deps); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDependencies_LetBindingShadows(t *testing.T) {
	// let x = A in x + B --> deps {A, B}, not {A, B, x}
	expr := Let{Name: "x", Value: Identifier{"A"}, Body: BinaryOp{Op: "+", Left: Identifier{"x"}, Right: Identifier{"B"}}}
	deps := Dependencies(expr)
	if got := names(deps); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDependencies_LambdaParamShadows(t *testing.T) {
	// map(xs, x => x + K) --> deps {xs, K}, not {xs, K, x}
	expr := MapOp{
		Array:  Identifier{"xs"},
		Mapper: Lambda{Params: []string{"x"}, Body: BinaryOp{Op: "+", Left: Identifier{"x"}, Right: Identifier{"K"}}},
	}
	deps := Dependencies(expr)
	if got := names(deps); !reflect.DeepEqual(got, []string{"K", "xs"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDependencies_FieldAccessDottedPath(t *testing.T) {
	// p.x --> deps {"p.x"}, not {"p"}
	expr := FieldAccess{Object: Identifier{"p"}, Field: "x"}
	deps := Dependencies(expr)
	if got := names(deps); !reflect.DeepEqual(got, []string{"p.x"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDependencies_ChainedFieldAccess(t *testing.T) {
	// line.start.x --> deps {"line.start.x"}
	expr := FieldAccess{
		Object: FieldAccess{Object: Identifier{"line"}, Field: "start"},
		Field:  "x",
	}
	deps := Dependencies(expr)
	if got := names(deps); !reflect.DeepEqual(got, []string{"line.start.x"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDependencies_PreSelfReference(t *testing.T) {
	// pre(n, 0) + 1, extracted while compiling node "n" --> deps include "n"
	expr := BinaryOp{Op: "+", Left: PreOp{Stream: "n", Initial: IntLit{0}}, Right: IntLit{1}}
	deps := Dependencies(expr)
	if got := names(deps); !reflect.DeepEqual(got, []string{"n"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDependencies_Fold(t *testing.T) {
	expr := FoldOp{
		Stream:      "v",
		Initial:     IntLit{0},
		Accumulator: Lambda{Params: []string{"acc", "x"}, Body: BinaryOp{Op: "+", Left: Identifier{"acc"}, Right: Identifier{"x"}}},
	}
	deps := Dependencies(expr)
	if got := names(deps); !reflect.DeepEqual(got, []string{"v"}) {
		t.Fatalf("got %v", got)
	}
}

func TestIsStateful(t *testing.T) {
	stateless := BinaryOp{Op: "+", Left: Identifier{"A"}, Right: IntLit{1}}
	if IsStateful(stateless) {
		t.Fatal("expected stateless")
	}

	withPre := BinaryOp{Op: "+", Left: PreOp{Stream: "n", Initial: IntLit{0}}, Right: IntLit{1}}
	if !IsStateful(withPre) {
		t.Fatal("expected stateful via pre")
	}

	withFold := FoldOp{Stream: "v", Initial: IntLit{0}, Accumulator: Lambda{Params: []string{"a", "x"}, Body: Identifier{"a"}}}
	if !IsStateful(withFold) {
		t.Fatal("expected stateful via fold")
	}

	nestedInLambda := MapOp{
		Array:  Identifier{"xs"},
		Mapper: Lambda{Params: []string{"x"}, Body: BinaryOp{Op: "+", Left: Identifier{"x"}, Right: IntLit{1}}},
	}
	if IsStateful(nestedInLambda) {
		t.Fatal("expected stateless lambda body to not trip statefulness")
	}
}

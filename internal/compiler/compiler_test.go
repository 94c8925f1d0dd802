// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/value"
)

func TestCompile_DiamondEndToEnd(t *testing.T) {
	p := ast.Program{Decls: []ast.Decl{
		ast.SourceDecl{Name: "A", Initial: ast.IntLit{Value: 1}},
		ast.StreamDecl{Name: "B", Expression: ast.BinaryOp{
			Op: "*", Left: ast.Identifier{Name: "A"}, Right: ast.IntLit{Value: 2},
		}},
		ast.StreamDecl{Name: "C", Expression: ast.BinaryOp{
			Op: "+", Left: ast.Identifier{Name: "A"}, Right: ast.IntLit{Value: 100},
		}},
		ast.SinkDecl{Name: "D", Expression: ast.BinaryOp{
			Op: "+", Left: ast.Identifier{Name: "B"}, Right: ast.Identifier{Name: "C"},
		}},
	}}

	eng, diags, err := Compile(p, Options{})
	require.NoError(t, err)
	require.Empty(t, diags)

	b, _ := eng.Read("B")
	c, _ := eng.Read("C")
	d, _ := eng.Read("D")
	assert.Equal(t, value.Int(2), b)
	assert.Equal(t, value.Int(101), c)
	assert.Equal(t, value.Int(103), d)

	require.NoError(t, eng.PushEvent(context.Background(), "A", value.Int(5)))
	d, _ = eng.Read("D")
	assert.Equal(t, value.Int(115), d)
}

func TestCompile_StructSourceExpandsFields(t *testing.T) {
	p := ast.Program{Decls: []ast.Decl{
		ast.SourceDecl{
			Name: "p",
			TypeSig: ast.StructTypeNode{Fields: []ast.StructFieldType{
				{Name: "x", Type: ast.BasicTypeNode{Name: "int"}},
				{Name: "y", Type: ast.BasicTypeNode{Name: "int"}},
			}},
			Initial: ast.StructLit{Fields: []ast.StructField{
				{Name: "x", Value: ast.IntLit{Value: 0}},
				{Name: "y", Value: ast.IntLit{Value: 0}},
			}},
		},
		ast.StreamDecl{Name: "mag2", Expression: ast.BinaryOp{
			Op:   "+",
			Left: ast.BinaryOp{Op: "*", Left: fieldOf("p", "x"), Right: fieldOf("p", "x")},
			Right: ast.BinaryOp{Op: "*", Left: fieldOf("p", "y"), Right: fieldOf("p", "y")},
		}},
	}}

	eng, diags, err := Compile(p, Options{})
	require.NoError(t, err)
	require.Empty(t, diags)

	mag2, ok := eng.Read("mag2")
	require.True(t, ok)
	assert.Equal(t, value.Int(0), mag2)

	newPoint := value.NewStruct([]string{"x", "y"}, []value.Value{value.Int(3), value.Int(4)})
	require.NoError(t, eng.PushEvent(context.Background(), "p", newPoint))

	// "p" itself is a compiler-synthesized assembly stream, never declared
	// by the user — it must still read back the newly pushed fields.
	assembled, ok := eng.Read("p")
	require.True(t, ok)
	assert.Equal(t, newPoint, assembled)

	mag2, _ = eng.Read("mag2")
	assert.Equal(t, value.Int(25), mag2)
}

func TestCompile_DuplicateNameAborts(t *testing.T) {
	p := ast.Program{Decls: []ast.Decl{
		ast.SourceDecl{Name: "A", Initial: ast.IntLit{Value: 1}},
		ast.SourceDecl{Name: "A", Initial: ast.IntLit{Value: 2}},
	}}
	_, diags, err := Compile(p, Options{})
	require.Error(t, err)
	assert.NotEmpty(t, diags)
}

func TestCompile_UndefinedReferenceAborts(t *testing.T) {
	p := ast.Program{Decls: []ast.Decl{
		ast.SourceDecl{Name: "A", Initial: ast.IntLit{Value: 1}},
		ast.SinkDecl{Name: "out", Expression: ast.Identifier{Name: "ghost"}},
	}}
	_, diags, err := Compile(p, Options{})
	require.Error(t, err)
	assert.NotEmpty(t, diags)
}

func TestCompile_CycleAborts(t *testing.T) {
	p := ast.Program{Decls: []ast.Decl{
		ast.StreamDecl{Name: "X", Expression: ast.Identifier{Name: "Y"}},
		ast.StreamDecl{Name: "Y", Expression: ast.Identifier{Name: "X"}},
	}}
	_, diags, err := Compile(p, Options{})
	require.Error(t, err)
	assert.NotEmpty(t, diags)
}

func TestCompile_SelfReferentialPreIsNotACycle(t *testing.T) {
	p := ast.Program{Decls: []ast.Decl{
		ast.SourceDecl{Name: "tick", Initial: ast.IntLit{Value: 0}},
		ast.SourceDecl{Name: "amount", Initial: ast.IntLit{Value: 0}},
		ast.StreamDecl{Name: "counter", Trigger: "tick", Expression: ast.BinaryOp{
			Op:    "+",
			Left:  ast.PreOp{Stream: "counter", Initial: ast.IntLit{Value: 0}},
			Right: ast.Identifier{Name: "amount"},
		}},
	}}
	_, diags, err := Compile(p, Options{})
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestCompileJSON_DiamondProgram(t *testing.T) {
	doc := `{
		"decls": [
			{"kind": "source", "name": "A", "initial": {"kind": "int", "value": 1}},
			{"kind": "stream", "name": "B", "expression":
				{"kind": "binary", "op": "*", "left": {"kind": "ident", "name": "A"}, "right": {"kind": "int", "value": 2}}},
			{"kind": "sink", "name": "out", "expression": {"kind": "ident", "name": "B"}}
		]
	}`
	eng, diags, err := CompileJSON(strings.NewReader(doc), Options{})
	require.NoError(t, err)
	require.Empty(t, diags)
	out, _ := eng.Read("out")
	assert.Equal(t, value.Int(2), out)
}

func fieldOf(root, field string) ast.Expr {
	return ast.FieldAccess{Object: ast.Identifier{Name: root}, Field: field}
}

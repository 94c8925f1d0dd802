// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package program decodes a Ripple program from JSON into internal/ast's
// typed tree. It exists as the concrete stand-in for the parser internal/ast
// treats as out-of-scope: a JSON document with a "kind" discriminator on
// every expression and type node, mirroring the tagged-union shape spec.md's
// GLOSSARY describes the AST in.
//
// The wire format is intentionally uncommented elsewhere in this package;
// decode.go's struct tags and the kind switch are the format's only
// documentation, in keeping with how the rest of this codebase prefers
// self-describing names over prose.
package program

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Melchoirr/Ripple/internal/ast"
)

// Decode reads a full program document from r.
func Decode(r io.Reader) (ast.Program, error) {
	var doc struct {
		Decls []json.RawMessage `json:"decls"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ast.Program{}, fmt.Errorf("program: decoding document: %w", err)
	}

	p := ast.Program{Decls: make([]ast.Decl, 0, len(doc.Decls))}
	for i, raw := range doc.Decls {
		d, err := decodeDecl(raw)
		if err != nil {
			return ast.Program{}, fmt.Errorf("program: decl %d: %w", i, err)
		}
		p.Decls = append(p.Decls, d)
	}
	return p, nil
}

func decodeDecl(raw json.RawMessage) (ast.Decl, error) {
	var head struct {
		Kind string `json:"kind"`
		Pos  posDoc `json:"pos"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	pos := ast.Pos{Line: head.Pos.Line, Column: head.Pos.Column}

	switch head.Kind {
	case "source":
		var d struct {
			Name    string          `json:"name"`
			Type    json.RawMessage `json:"type"`
			Initial json.RawMessage `json:"initial"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		var typeSig ast.TypeNode
		if len(d.Type) > 0 {
			t, err := decodeType(d.Type)
			if err != nil {
				return nil, fmt.Errorf("source %q: %w", d.Name, err)
			}
			typeSig = t
		}
		var initial ast.Expr
		if len(d.Initial) > 0 {
			e, err := decodeExpr(d.Initial)
			if err != nil {
				return nil, fmt.Errorf("source %q: %w", d.Name, err)
			}
			initial = e
		}
		return ast.SourceDecl{Name: d.Name, TypeSig: typeSig, Initial: initial, Pos: pos}, nil

	case "stream":
		var d struct {
			Name       string          `json:"name"`
			Expression json.RawMessage `json:"expression"`
			Trigger    string          `json:"trigger"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(d.Expression)
		if err != nil {
			return nil, fmt.Errorf("stream %q: %w", d.Name, err)
		}
		return ast.StreamDecl{Name: d.Name, Expression: expr, Trigger: d.Trigger, Pos: pos}, nil

	case "sink":
		var d struct {
			Name       string          `json:"name"`
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(d.Expression)
		if err != nil {
			return nil, fmt.Errorf("sink %q: %w", d.Name, err)
		}
		return ast.SinkDecl{Name: d.Name, Expression: expr, Pos: pos}, nil

	case "func":
		var d struct {
			Name   string          `json:"name"`
			Params []string        `json:"params"`
			Body   json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		body, err := decodeExpr(d.Body)
		if err != nil {
			return nil, fmt.Errorf("func %q: %w", d.Name, err)
		}
		return ast.FuncDecl{Name: d.Name, Params: d.Params, Body: body, Pos: pos}, nil

	case "type":
		var d struct {
			Name string          `json:"name"`
			Def  json.RawMessage `json:"def"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		def, err := decodeType(d.Def)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", d.Name, err)
		}
		return ast.TypeDecl{Name: d.Name, Def: def, Pos: pos}, nil

	default:
		return nil, fmt.Errorf("unknown decl kind %q", head.Kind)
	}
}

type posDoc struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

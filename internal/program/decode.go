// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package program

import (
	"encoding/json"
	"fmt"

	"github.com/Melchoirr/Ripple/internal/ast"
)

func decodeExpr(raw json.RawMessage) (ast.Expr, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Kind {
	case "int":
		var n struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return ast.IntLit{Value: n.Value}, nil

	case "float":
		var n struct {
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return ast.FloatLit{Value: n.Value}, nil

	case "bool":
		var n struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return ast.BoolLit{Value: n.Value}, nil

	case "string":
		var n struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return ast.StringLit{Value: n.Value}, nil

	case "ident":
		var n struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return ast.Identifier{Name: n.Name}, nil

	case "binary":
		var n struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		l, err := decodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return ast.BinaryOp{Op: n.Op, Left: l, Right: r}, nil

	case "unary":
		var n struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		operand, err := decodeExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Op: n.Op, Operand: operand}, nil

	case "if":
		var n struct {
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(n.Else)
		if err != nil {
			return nil, err
		}
		return ast.If{Cond: cond, Then: then, Else: els}, nil

	case "let":
		var n struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
			Body  json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		val, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Let{Name: n.Name, Value: val, Body: body}, nil

	case "lambda":
		lam, err := decodeLambda(raw)
		if err != nil {
			return nil, err
		}
		return lam, nil

	case "call":
		var n struct {
			Name string            `json:"name"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			e, err := decodeExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		return ast.Call{Name: n.Name, Args: args}, nil

	case "struct":
		var n struct {
			Fields []struct {
				Name  string          `json:"name"`
				Value json.RawMessage `json:"value"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		fields := make([]ast.StructField, len(n.Fields))
		for i, f := range n.Fields {
			v, err := decodeExpr(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.StructField{Name: f.Name, Value: v}
		}
		return ast.StructLit{Fields: fields}, nil

	case "field":
		var n struct {
			Object json.RawMessage `json:"object"`
			Field  string          `json:"field"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(n.Object)
		if err != nil {
			return nil, err
		}
		return ast.FieldAccess{Object: obj, Field: n.Field}, nil

	case "array":
		var n struct {
			Elements []json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		elems := make([]ast.Expr, len(n.Elements))
		for i, e := range n.Elements {
			v, err := decodeExpr(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return ast.ArrayLit{Elements: elems}, nil

	case "index":
		var n struct {
			Array json.RawMessage `json:"array"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		arr, err := decodeExpr(n.Array)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(n.Index)
		if err != nil {
			return nil, err
		}
		return ast.ArrayAccess{Array: arr, Index: idx}, nil

	case "map":
		var n struct {
			Array  json.RawMessage `json:"array"`
			Mapper json.RawMessage `json:"mapper"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		arr, err := decodeExpr(n.Array)
		if err != nil {
			return nil, err
		}
		mapper, err := decodeLambda(n.Mapper)
		if err != nil {
			return nil, err
		}
		return ast.MapOp{Array: arr, Mapper: mapper}, nil

	case "filter":
		var n struct {
			Array     json.RawMessage `json:"array"`
			Predicate json.RawMessage `json:"predicate"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		arr, err := decodeExpr(n.Array)
		if err != nil {
			return nil, err
		}
		pred, err := decodeLambda(n.Predicate)
		if err != nil {
			return nil, err
		}
		return ast.FilterOp{Array: arr, Predicate: pred}, nil

	case "reduce":
		var n struct {
			Array       json.RawMessage `json:"array"`
			Initial     json.RawMessage `json:"initial"`
			Accumulator json.RawMessage `json:"accumulator"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		arr, err := decodeExpr(n.Array)
		if err != nil {
			return nil, err
		}
		initial, err := decodeExpr(n.Initial)
		if err != nil {
			return nil, err
		}
		acc, err := decodeLambda(n.Accumulator)
		if err != nil {
			return nil, err
		}
		return ast.ReduceOp{Array: arr, Initial: initial, Accumulator: acc}, nil

	case "pre":
		var n struct {
			Stream  string          `json:"stream"`
			Initial json.RawMessage `json:"initial"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		initial, err := decodeExpr(n.Initial)
		if err != nil {
			return nil, err
		}
		return ast.PreOp{Stream: n.Stream, Initial: initial}, nil

	case "fold":
		var n struct {
			Stream      string          `json:"stream"`
			Initial     json.RawMessage `json:"initial"`
			Accumulator json.RawMessage `json:"accumulator"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		initial, err := decodeExpr(n.Initial)
		if err != nil {
			return nil, err
		}
		acc, err := decodeLambda(n.Accumulator)
		if err != nil {
			return nil, err
		}
		return ast.FoldOp{Stream: n.Stream, Initial: initial, Accumulator: acc}, nil

	default:
		return nil, fmt.Errorf("unknown expr kind %q", head.Kind)
	}
}

func decodeLambda(raw json.RawMessage) (ast.Lambda, error) {
	var n struct {
		Params []string        `json:"params"`
		Body   json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return ast.Lambda{}, err
	}
	body, err := decodeExpr(n.Body)
	if err != nil {
		return ast.Lambda{}, err
	}
	return ast.Lambda{Params: n.Params, Body: body}, nil
}

func decodeType(raw json.RawMessage) (ast.TypeNode, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Kind {
	case "basic":
		var n struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return ast.BasicTypeNode{Name: n.Name}, nil

	case "array":
		var n struct {
			Element json.RawMessage `json:"element"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		elem, err := decodeType(n.Element)
		if err != nil {
			return nil, err
		}
		return ast.ArrayTypeNode{Element: elem}, nil

	case "struct":
		var n struct {
			Fields []struct {
				Name string          `json:"name"`
				Type json.RawMessage `json:"type"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		fields := make([]ast.StructFieldType, len(n.Fields))
		for i, f := range n.Fields {
			t, err := decodeType(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.StructFieldType{Name: f.Name, Type: t}
		}
		return ast.StructTypeNode{Fields: fields}, nil

	case "function":
		var n struct {
			Params []json.RawMessage `json:"params"`
			Return json.RawMessage   `json:"return"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		params := make([]ast.TypeNode, len(n.Params))
		for i, p := range n.Params {
			t, err := decodeType(p)
			if err != nil {
				return nil, err
			}
			params[i] = t
		}
		ret, err := decodeType(n.Return)
		if err != nil {
			return nil, err
		}
		return ast.FunctionTypeNode{Params: params, Return: ret}, nil

	default:
		return nil, fmt.Errorf("unknown type kind %q", head.Kind)
	}
}

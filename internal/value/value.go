// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package value defines Ripple's dynamically-typed runtime values: the
// tagged union the evaluator and graph engine pass around (spec.md §9,
// "Expressions and values as dynamically-typed trees").
package value

import "math"

// Value is the closed set of runtime value kinds. Every node's cached value,
// every evaluator intermediate, and every env binding is a Value.
type Value interface {
	isValue()
}

type Int int64
type Float float64
type Bool bool
type String string

// Array is an ordered, homogeneous-by-convention (not enforced at runtime)
// list of values.
type Array []Value

// Struct is a record value. Fields preserves declaration/construction order
// so that re-marshaling (e.g. for a CLI --dump) is deterministic; field
// lookup is by name via Get.
type Struct struct {
	Names  []string
	Values []Value
}

// Unit is returned by operations with no meaningful result.
type Unit struct{}

func (Int) isValue()    {}
func (Float) isValue()  {}
func (Bool) isValue()   {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Struct) isValue() {}
func (Unit) isValue()   {}

// Get returns the named field's value and whether it exists.
func (s Struct) Get(name string) (Value, bool) {
	for i, n := range s.Names {
		if n == name {
			return s.Values[i], true
		}
	}
	return nil, false
}

// With returns a copy of s with name set to v, appending if new. Structs are
// treated as immutable values elsewhere in the engine; With is the only
// mutator and always returns a fresh Struct.
func (s Struct) With(name string, v Value) Struct {
	for i, n := range s.Names {
		if n == name {
			names := append([]string(nil), s.Names...)
			values := append([]Value(nil), s.Values...)
			values[i] = v
			return Struct{Names: names, Values: values}
		}
	}
	return Struct{
		Names:  append(append([]string(nil), s.Names...), name),
		Values: append(append([]Value(nil), s.Values...), v),
	}
}

// NewStruct builds a Struct from field names and values in order. Panics if
// the slices differ in length — a programmer error, not a runtime condition.
func NewStruct(names []string, values []Value) Struct {
	if len(names) != len(values) {
		panic("value: NewStruct name/value length mismatch")
	}
	return Struct{Names: names, Values: values}
}

// Equal implements the change-detection equality spec.md §4.6 requires:
// structural/deep equality for arrays and structs, with the one documented
// deviation that float NaN never compares equal to itself — a NaN result is
// always treated as "changed" so it keeps propagating rather than silently
// freezing a node's subscribers (spec.md §9, Open Questions).
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		if !ok {
			return false
		}
		if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) {
			return false
		}
		return x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Struct:
		y, ok := b.(Struct)
		if !ok || len(x.Names) != len(y.Names) {
			return false
		}
		for i, name := range x.Names {
			yv, ok := y.Get(name)
			if !ok || !Equal(x.Values[i], yv) {
				return false
			}
		}
		return true
	case Unit:
		_, ok := b.(Unit)
		return ok
	default:
		return false
	}
}

// Truthy coerces a Bool value per Ripple's convention: only Bool is
// meaningful as a condition. Non-bool conditions are a runtime error at the
// call site, not silently coerced here.
func Truthy(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}

// IsNumeric reports whether v is Int or Float.
func IsNumeric(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	default:
		return false
	}
}

// AsFloat64 widens an Int or Float to float64. ok is false for non-numeric
// values.
func AsFloat64(v Value) (float64, bool) {
	switch x := v.(type) {
	case Int:
		return float64(x), true
	case Float:
		return float64(x), true
	default:
		return 0, false
	}
}

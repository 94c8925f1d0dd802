// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package types implements the structural type inferencer (spec.md §4.3): a
// non-fatal, documentation-and-normalization pass that assigns a Type to
// every declared name and checks declared annotations against inferred
// shapes. Nothing here blocks compilation — violations become
// diag.TypeMismatch diagnostics, which internal/diag.Diagnostics.HasErrors
// always treats as advisory.
package types

import "sort"

// Type is the inferencer's internal structural representation, distinct from
// ast.TypeNode (the syntactic annotation) because aliases are resolved and
// struct field types are a flat map rather than a declaration-order slice.
type Type interface {
	isType()
	String() string
}

// Basic is one of the five scalar kinds in the type universe.
type Basic string

const (
	Int    Basic = "int"
	Float  Basic = "float"
	Bool   Basic = "bool"
	String Basic = "string"
	Any    Basic = "any"
)

func (Basic) isType()          {}
func (b Basic) String() string { return string(b) }

// Array is a homogeneous sequence type.
type Array struct{ Elem Type }

func (Array) isType()          {}
func (a Array) String() string { return "[" + a.Elem.String() + "]" }

// Struct is a structural record type: field order doesn't matter for
// compatibility, only the name→type set.
type Struct struct {
	Fields map[string]Type
}

func (Struct) isType() {}
func (s Struct) String() string {
	names := make([]string, 0, len(s.Fields))
	for n := range s.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	out := "{"
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n + ": " + s.Fields[n].String()
	}
	return out + "}"
}

// Function is a user-function or builtin signature.
type Function struct {
	Params []Type
	Return Type
}

func (Function) isType() {}
func (f Function) String() string {
	out := "("
	for i, p := range f.Params {
		if i > 0 {
			out += ", "
		}
		out += p.String()
	}
	return out + ") -> " + f.Return.String()
}

// Equal reports structural equality (not compatibility — see Assignable).
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case Basic:
		bv, ok := b.(Basic)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		return ok && Equal(av.Elem, bv.Elem)
	case Struct:
		bv, ok := b.(Struct)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, t := range av.Fields {
			bt, ok := bv.Fields[name]
			if !ok || !Equal(t, bt) {
				return false
			}
		}
		return true
	case Function:
		bv, ok := b.(Function)
		if !ok || len(av.Params) != len(bv.Params) || !Equal(av.Return, bv.Return) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// LUB computes the least upper bound of two types under spec.md §4.3's
// lattice: any⊔T=T, int⊔float=float, otherwise identity if equal else any.
// Used for `if` branches whose arms infer to different types.
func LUB(a, b Type) Type {
	if ab, ok := a.(Basic); ok && ab == Any {
		return b
	}
	if bb, ok := b.(Basic); ok && bb == Any {
		return a
	}
	ai, aIsInt := a.(Basic)
	bi, bIsFloat := b.(Basic)
	if aIsInt && ai == Int && bIsFloat && bi == Float {
		return Float
	}
	af, aIsFloat := a.(Basic)
	bf, bIsInt := b.(Basic)
	if aIsFloat && af == Float && bIsInt && bf == Int {
		return Float
	}
	if Equal(a, b) {
		return a
	}
	return Any
}

// Assignable reports whether a value of type inferred may flow into a slot
// declared as declared (spec.md §4.3's compatibility check): equal basics
// match, int→float widens, any is universally compatible either direction,
// and arrays/structs compare structurally.
func Assignable(declared, inferred Type) bool {
	if db, ok := declared.(Basic); ok && db == Any {
		return true
	}
	if ib, ok := inferred.(Basic); ok && ib == Any {
		return true
	}
	if db, ok := declared.(Basic); ok {
		if ib, ok := inferred.(Basic); ok {
			if db == ib {
				return true
			}
			return db == Float && ib == Int
		}
		return false
	}
	if da, ok := declared.(Array); ok {
		ia, ok := inferred.(Array)
		return ok && Assignable(da.Elem, ia.Elem)
	}
	if ds, ok := declared.(Struct); ok {
		is, ok := inferred.(Struct)
		if !ok || len(ds.Fields) != len(is.Fields) {
			return false
		}
		for name, dt := range ds.Fields {
			it, ok := is.Fields[name]
			if !ok || !Assignable(dt, it) {
				return false
			}
		}
		return true
	}
	if df, ok := declared.(Function); ok {
		ifn, ok := inferred.(Function)
		if !ok || len(df.Params) != len(ifn.Params) || !Assignable(df.Return, ifn.Return) {
			return false
		}
		for i := range df.Params {
			if !Assignable(df.Params[i], ifn.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Promote applies spec.md §4.3's fixed numeric-promotion table for binary
// arithmetic and comparison operators given the operand types.
func Promote(op string, left, right Type) Type {
	switch op {
	case "+", "-", "*":
		if isFloaty(left) || isFloaty(right) {
			return Float
		}
		return Int
	case "/":
		return Float
	case "%":
		return Int
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return Bool
	default:
		return Any
	}
}

func isFloaty(t Type) bool {
	b, ok := t.(Basic)
	return ok && b == Float
}

// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package diag defines the diagnostic taxonomy surfaced at the compiler
// boundary (spec.md §6): DuplicateDefinition, UndefinedReference,
// CircularDependency, TypeMismatch, and EvaluationError. Every static
// analyzer and the type inferencer report through this shared type so
// internal/compiler can batch, print, and decide fatal-vs-advisory in one
// place.
package diag

import (
	"fmt"
	"strings"

	"github.com/Melchoirr/Ripple/internal/ast"
)

// Kind tags which of the five diagnostic shapes a Diagnostic carries.
type Kind int

const (
	DuplicateDefinition Kind = iota
	UndefinedReference
	CircularDependency
	TypeMismatch
	EvaluationError
)

func (k Kind) String() string {
	switch k {
	case DuplicateDefinition:
		return "DuplicateDefinition"
	case UndefinedReference:
		return "UndefinedReference"
	case CircularDependency:
		return "CircularDependency"
	case TypeMismatch:
		return "TypeMismatch"
	case EvaluationError:
		return "EvaluationError"
	default:
		return "Unknown"
	}
}

// Diagnostic is one finding from a static check, the inferencer, or a
// runtime evaluation failure. Fields not relevant to Kind are left zero;
// see the per-Kind constructors below rather than populating this literal
// directly.
type Diagnostic struct {
	Kind Kind

	// Name is the subject of the diagnostic: the duplicated/undefined
	// symbol, or the node whose evaluation failed.
	Name string

	// Context is the enclosing node the diagnostic was raised against (e.g.
	// the stream referencing an undefined name).
	Context string

	// Cycle holds the full rotation of a CircularDependency, e.g.
	// ["A","B","C","A"].
	Cycle []string

	// Declared/Inferred hold the two sides of a TypeMismatch.
	Declared string
	Inferred string

	// Cause wraps the underlying error for EvaluationError.
	Cause error

	// Pos is the optional source location; the zero value means "no
	// location available" (the concrete parser, which would attach this, is
	// out of scope).
	Pos ast.Pos
}

func Duplicate(name string, pos ast.Pos) Diagnostic {
	return Diagnostic{Kind: DuplicateDefinition, Name: name, Pos: pos}
}

func Undefined(name, context string) Diagnostic {
	return Diagnostic{Kind: UndefinedReference, Name: name, Context: context}
}

func Cycle(path []string) Diagnostic {
	return Diagnostic{Kind: CircularDependency, Cycle: path}
}

func Mismatch(context, declared, inferred string) Diagnostic {
	return Diagnostic{Kind: TypeMismatch, Context: context, Declared: declared, Inferred: inferred}
}

func Evaluation(node string, cause error) Diagnostic {
	return Diagnostic{Kind: EvaluationError, Name: node, Cause: cause}
}

func (d Diagnostic) Error() string {
	switch d.Kind {
	case DuplicateDefinition:
		return fmt.Sprintf("duplicate definition of %q", d.Name)
	case UndefinedReference:
		return fmt.Sprintf("undefined reference %q in %q", d.Name, d.Context)
	case CircularDependency:
		return fmt.Sprintf("circular dependency: %s", strings.Join(d.Cycle, " -> "))
	case TypeMismatch:
		return fmt.Sprintf("%s: declared type %s incompatible with inferred type %s", d.Context, d.Declared, d.Inferred)
	case EvaluationError:
		return fmt.Sprintf("evaluation error in %q: %v", d.Name, d.Cause)
	default:
		return "unknown diagnostic"
	}
}

// Diagnostics is a batch of findings from one phase.
type Diagnostics []Diagnostic

// HasErrors reports whether any entry is a blocking kind (everything except
// TypeMismatch, which spec.md §4.3/§7 requires to be advisory-only).
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Kind != TypeMismatch {
			return true
		}
	}
	return false
}

// Error implements error so a non-empty batch of blocking diagnostics can be
// returned directly from Compile.
func (ds Diagnostics) Error() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "; ")
}

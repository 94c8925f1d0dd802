// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package eval

import (
	"fmt"

	"github.com/Melchoirr/Ripple/internal/value"
	"github.com/Melchoirr/Ripple/pkg/ripplerr"
)

// binary implements the operator semantics matching the promotion rules in
// internal/types (spec.md §4.3): `+ - *` stay int unless a float operand
// widens them, `/` is always float, `%` is always int, comparisons and
// logical ops are always bool.
func binary(op string, l, r value.Value) (value.Value, error) {
	switch op {
	case "+":
		if ls, ok := l.(value.String); ok {
			rs, ok := r.(value.String)
			if !ok {
				return nil, fmt.Errorf("eval: %q: string operand paired with non-string", op)
			}
			return ls + rs, nil
		}
		return numericArith(op, l, r)
	case "-", "*":
		return numericArith(op, l, r)
	case "/":
		lf, ok1 := value.AsFloat64(l)
		rf, ok2 := value.AsFloat64(r)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("eval: %q requires numeric operands", op)
		}
		if _, lIsInt := l.(value.Int); lIsInt {
			if _, rIsInt := r.(value.Int); rIsInt && rf == 0 {
				return nil, ripplerr.ErrDivByZero
			}
		}
		// Float division by zero yields +/-Inf/NaN per IEEE-754, not an
		// error (spec.md §7).
		return value.Float(lf / rf), nil
	case "%":
		li, ok1 := l.(value.Int)
		ri, ok2 := r.(value.Int)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("eval: %q requires integer operands", op)
		}
		if ri == 0 {
			return nil, ripplerr.ErrDivByZero
		}
		return li % ri, nil
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	case "<", ">", "<=", ">=":
		return compare(op, l, r)
	case "&&", "||":
		lb, ok1 := value.Truthy(l)
		rb, ok2 := value.Truthy(r)
		if !ok1 || !ok2 {
			return nil, ripplerr.ErrInvalidCondition
		}
		if op == "&&" {
			return value.Bool(lb && rb), nil
		}
		return value.Bool(lb || rb), nil
	default:
		return nil, fmt.Errorf("eval: unknown binary operator %q", op)
	}
}

func numericArith(op string, l, r value.Value) (value.Value, error) {
	li, liOK := l.(value.Int)
	ri, riOK := r.(value.Int)
	if liOK && riOK {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		}
	}
	lf, lok := value.AsFloat64(l)
	rf, rok := value.AsFloat64(r)
	if !lok || !rok {
		return nil, fmt.Errorf("eval: %q requires numeric operands", op)
	}
	switch op {
	case "+":
		return value.Float(lf + rf), nil
	case "-":
		return value.Float(lf - rf), nil
	case "*":
		return value.Float(lf * rf), nil
	default:
		return nil, fmt.Errorf("eval: unknown arithmetic operator %q", op)
	}
}

func compare(op string, l, r value.Value) (value.Value, error) {
	if ls, ok := l.(value.String); ok {
		rs, ok := r.(value.String)
		if !ok {
			return nil, fmt.Errorf("eval: %q: string operand paired with non-string", op)
		}
		switch op {
		case "<":
			return value.Bool(ls < rs), nil
		case ">":
			return value.Bool(ls > rs), nil
		case "<=":
			return value.Bool(ls <= rs), nil
		case ">=":
			return value.Bool(ls >= rs), nil
		}
	}
	lf, lok := value.AsFloat64(l)
	rf, rok := value.AsFloat64(r)
	if !lok || !rok {
		return nil, fmt.Errorf("eval: %q requires numeric or string operands", op)
	}
	switch op {
	case "<":
		return value.Bool(lf < rf), nil
	case ">":
		return value.Bool(lf > rf), nil
	case "<=":
		return value.Bool(lf <= rf), nil
	case ">=":
		return value.Bool(lf >= rf), nil
	default:
		return nil, fmt.Errorf("eval: unknown comparison operator %q", op)
	}
}

func unary(op string, v value.Value) (value.Value, error) {
	switch op {
	case "-":
		switch x := v.(type) {
		case value.Int:
			return -x, nil
		case value.Float:
			return -x, nil
		default:
			return nil, fmt.Errorf("eval: unary %q requires a numeric operand", op)
		}
	case "!":
		b, ok := value.Truthy(v)
		if !ok {
			return nil, ripplerr.ErrInvalidCondition
		}
		return value.Bool(!b), nil
	default:
		return nil, fmt.Errorf("eval: unknown unary operator %q", op)
	}
}

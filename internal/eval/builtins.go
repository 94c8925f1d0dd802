// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package eval

import (
	"fmt"
	"math"

	"github.com/Melchoirr/Ripple/internal/value"
	"github.com/Melchoirr/Ripple/pkg/ripplerr"
)

// callBuiltin dispatches the fixed builtin set from spec.md §4.5. csv may be
// nil; the four CSV helpers return an error naming the missing collaborator
// rather than panicking, so a program that never calls them works with no
// CSVProvider configured at all.
func callBuiltin(name string, args []value.Value, csv CSVProvider) (value.Value, error) {
	switch name {
	case "abs":
		return builtinAbs(args)
	case "sqrt":
		return builtinSqrt(args)
	case "max":
		return builtinMinMax(args, false)
	case "min":
		return builtinMinMax(args, true)
	case "len":
		return builtinLen(args)
	case "head":
		return builtinHead(args)
	case "tail":
		return builtinTail(args)
	case "last":
		return builtinLast(args)
	case "sum":
		return builtinSum(args)
	case "reverse":
		return builtinReverse(args)
	case "avg":
		return builtinAvg(args)
	case "count":
		return builtinCount(args)
	case "count_if":
		// Reached only if evalCall's count_if special case didn't intercept
		// this call (e.g. a user-function named count_if is not possible
		// since builtins and user functions share no dispatch path here).
		return nil, fmt.Errorf("eval: count_if requires a lambda second argument")
	case "transpose":
		return builtinTranspose(args)
	case "load_csv", "csv_header", "col", "row":
		return callCSVBuiltin(name, args, csv)
	default:
		return nil, fmt.Errorf("%w: %q", ripplerr.ErrUnknownFunction, name)
	}
}

func arity(args []value.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: wants %d argument(s), got %d", ripplerr.ErrArityMismatch, n, len(args))
	}
	return nil
}

func asArray(v value.Value) (value.Array, error) {
	a, ok := v.(value.Array)
	if !ok {
		return nil, ripplerr.ErrNotAnArray
	}
	return a, nil
}

func builtinAbs(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	switch x := args[0].(type) {
	case value.Int:
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case value.Float:
		return value.Float(math.Abs(float64(x))), nil
	default:
		return nil, fmt.Errorf("eval: abs requires a numeric argument")
	}
}

func builtinSqrt(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	f, ok := value.AsFloat64(args[0])
	if !ok {
		return nil, fmt.Errorf("eval: sqrt requires a numeric argument")
	}
	return value.Float(math.Sqrt(f)), nil
}

func builtinMinMax(args []value.Value, wantMin bool) (value.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: max/min wants at least one argument", ripplerr.ErrArityMismatch)
	}
	// A single array argument reduces over its elements rather than being
	// compared against itself: max([a, b, c]) == max(a, b, c).
	if len(args) == 1 {
		if arr, ok := args[0].(value.Array); ok {
			if len(arr) == 0 {
				return nil, fmt.Errorf("%w: max/min of an empty array", ripplerr.ErrIndexOutOfBounds)
			}
			args = arr
		}
	}
	best := args[0]
	bestF, ok := value.AsFloat64(best)
	if !ok {
		return nil, fmt.Errorf("eval: max/min requires numeric arguments")
	}
	for _, a := range args[1:] {
		f, ok := value.AsFloat64(a)
		if !ok {
			return nil, fmt.Errorf("eval: max/min requires numeric arguments")
		}
		if (wantMin && f < bestF) || (!wantMin && f > bestF) {
			best, bestF = a, f
		}
	}
	return best, nil
}

func builtinLen(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	arr, err := asArray(args[0])
	if err != nil {
		return nil, err
	}
	return value.Int(len(arr)), nil
}

func builtinHead(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	arr, err := asArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, ripplerr.ErrIndexOutOfBounds
	}
	return arr[0], nil
}

func builtinTail(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	arr, err := asArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return value.Array{}, nil
	}
	return append(value.Array{}, arr[1:]...), nil
}

func builtinLast(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	arr, err := asArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, ripplerr.ErrIndexOutOfBounds
	}
	return arr[len(arr)-1], nil
}

func builtinSum(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	arr, err := asArray(args[0])
	if err != nil {
		return nil, err
	}
	allInt := true
	var fsum float64
	var isum value.Int
	for _, el := range arr {
		switch x := el.(type) {
		case value.Int:
			isum += x
			fsum += float64(x)
		case value.Float:
			allInt = false
			fsum += float64(x)
		default:
			return nil, fmt.Errorf("eval: sum requires a numeric array")
		}
	}
	if allInt {
		return isum, nil
	}
	return value.Float(fsum), nil
}

func builtinReverse(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	arr, err := asArray(args[0])
	if err != nil {
		return nil, err
	}
	out := make(value.Array, len(arr))
	for i, el := range arr {
		out[len(arr)-1-i] = el
	}
	return out, nil
}

func builtinAvg(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	arr, err := asArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return value.Float(0), nil
	}
	var total float64
	for _, el := range arr {
		f, ok := value.AsFloat64(el)
		if !ok {
			return nil, fmt.Errorf("eval: avg requires a numeric array")
		}
		total += f
	}
	return value.Float(total / float64(len(arr))), nil
}

func builtinCount(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	arr, err := asArray(args[0])
	if err != nil {
		return nil, err
	}
	return value.Int(len(arr)), nil
}

// builtinTranspose swaps rows and columns of a matrix (an array of row
// arrays), mirroring the original's `m and m[0]` empty-matrix guard: an
// empty matrix, or one whose rows are empty, transposes to an empty array.
func builtinTranspose(args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	rows, err := asArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return value.Array{}, nil
	}
	first, err := asArray(rows[0])
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return value.Array{}, nil
	}

	out := make(value.Array, len(first))
	for i := range first {
		col := make(value.Array, len(rows))
		for j, r := range rows {
			row, err := asArray(r)
			if err != nil {
				return nil, err
			}
			if i >= len(row) {
				return nil, fmt.Errorf("eval: transpose requires a rectangular matrix")
			}
			col[j] = row[i]
		}
		out[i] = col
	}
	return out, nil
}

// countIf implements count_if(array, predicate) — it's handled separately
// from callBuiltin because, unlike every other builtin, its second argument
// is an ast.Lambda that must be evaluated once per element rather than
// pre-evaluated to a value. evalCall special-cases this name before falling
// through to callBuiltin.
func countIf(arr value.Array, matches func(value.Value) (bool, error)) (value.Value, error) {
	n := 0
	for _, el := range arr {
		ok, err := matches(el)
		if err != nil {
			return nil, err
		}
		if ok {
			n++
		}
	}
	return value.Int(n), nil
}

func callCSVBuiltin(name string, args []value.Value, csv CSVProvider) (value.Value, error) {
	if csv == nil {
		return nil, fmt.Errorf("eval: %q called with no CSVProvider configured", name)
	}
	switch name {
	case "load_csv":
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		path, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("eval: load_csv requires a string path")
		}
		return csv.Load(string(path))
	case "csv_header":
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		table, err := asArray(args[0])
		if err != nil {
			return nil, err
		}
		return csv.Header(table), nil
	case "col":
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		table, err := asArray(args[0])
		if err != nil {
			return nil, err
		}
		colName, ok := args[1].(value.String)
		if !ok {
			return nil, fmt.Errorf("eval: col requires a string column name")
		}
		return csv.Col(table, string(colName))
	case "row":
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		table, err := asArray(args[0])
		if err != nil {
			return nil, err
		}
		idx, ok := args[1].(value.Int)
		if !ok {
			return nil, fmt.Errorf("eval: row requires an integer index")
		}
		return csv.Row(table, int(idx))
	default:
		return nil, fmt.Errorf("%w: %q", ripplerr.ErrUnknownFunction, name)
	}
}

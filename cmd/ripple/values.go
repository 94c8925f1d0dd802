// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"

	"github.com/Melchoirr/Ripple/internal/value"
)

// formatValue renders a runtime Value for terminal output. value.Value has
// no Stringer of its own (internal/value keeps the tagged union free of
// presentation concerns), so the CLI owns this formatting.
func formatValue(v value.Value) string {
	switch v := v.(type) {
	case value.Int:
		return fmt.Sprintf("%d", int64(v))
	case value.Float:
		return fmt.Sprintf("%g", float64(v))
	case value.Bool:
		return fmt.Sprintf("%t", bool(v))
	case value.String:
		return string(v)
	case value.Unit:
		return "()"
	case value.Array:
		out := "["
		for i, e := range v {
			if i > 0 {
				out += ", "
			}
			out += formatValue(e)
		}
		return out + "]"
	case value.Struct:
		out := "{"
		for i, n := range v.Names {
			if i > 0 {
				out += ", "
			}
			out += n + ": " + formatValue(v.Values[i])
		}
		return out + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseValue turns a JSON scalar/array/object literal (as used by --push
// name=<json>) into a runtime Value. Numbers with no fractional part and no
// exponent decode as Int; everything else numeric decodes as Float.
func parseValue(raw string) (value.Value, error) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON value %q: %w", raw, err)
	}
	return fromJSON(json.RawMessage(raw), decoded)
}

func fromJSON(raw json.RawMessage, decoded any) (value.Value, error) {
	switch d := decoded.(type) {
	case nil:
		return value.Unit{}, nil
	case bool:
		return value.Bool(d), nil
	case string:
		return value.String(d), nil
	case float64:
		var asInt int64
		if err := json.Unmarshal(raw, &asInt); err == nil && float64(asInt) == d {
			return value.Int(asInt), nil
		}
		return value.Float(d), nil
	case []any:
		out := make(value.Array, len(d))
		for i, e := range d {
			eb, _ := json.Marshal(e)
			v, err := fromJSON(eb, e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]any:
		names := make([]string, 0, len(d))
		values := make([]value.Value, 0, len(d))
		for k, e := range d {
			eb, _ := json.Marshal(e)
			v, err := fromJSON(eb, e)
			if err != nil {
				return nil, err
			}
			names = append(names, k)
			values = append(values, v)
		}
		return value.NewStruct(names, values), nil
	default:
		return nil, fmt.Errorf("unsupported JSON value %T", decoded)
	}
}

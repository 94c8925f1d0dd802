// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package eval

import "github.com/Melchoirr/Ripple/internal/value"

// CSVProvider is the external collaborator backing the CSV builtins
// (spec.md §4.5, "plus CSV helpers that are external collaborators"). The
// evaluator depends only on this interface; internal/source/csv supplies the
// concrete implementation so eval stays free of file-system and
// encoding/csv concerns.
type CSVProvider interface {
	// Load parses the CSV file at path and returns it as an Array of Struct
	// rows, one per data row, fields named from the header.
	Load(path string) (value.Array, error)

	// Header returns the column names of a previously loaded table.
	Header(table value.Array) value.Array

	// Col extracts a single named column as an Array.
	Col(table value.Array, name string) (value.Array, error)

	// Row extracts the i-th row as a Struct.
	Row(table value.Array, i int) (value.Struct, error)
}

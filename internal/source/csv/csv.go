// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package csv is the external collaborator backing the load_csv/csv_header/
// col/row builtins: it implements eval.CSVProvider over encoding/csv so
// internal/eval itself never touches the filesystem (spec.md §4.5).
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Melchoirr/Ripple/internal/value"
)

// Provider is a stateless eval.CSVProvider: Load reads a file into an Array
// of Struct rows, and Header/Col/Row operate purely on an already-loaded
// table, so a Ripple program may hold several tables concurrently without
// any provider-side bookkeeping.
type Provider struct{}

// New returns a ready-to-use Provider.
func New() *Provider { return &Provider{} }

// Load reads the CSV file at path: the first row is treated as the header,
// and every subsequent row becomes a value.Struct whose fields are named
// from it. A cell parses as Int if it round-trips through strconv.ParseInt,
// else Float if it parses as a float, else String.
func (p *Provider) Load(path string) (value.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: opening %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return value.Array{}, nil
		}
		return nil, fmt.Errorf("csv: reading header of %q: %w", path, err)
	}

	var rows value.Array
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: reading %q: %w", path, err)
		}

		values := make([]value.Value, len(header))
		for i, cell := range record {
			values[i] = parseCell(cell)
		}
		rows = append(rows, value.NewStruct(append([]string(nil), header...), values))
	}
	return rows, nil
}

func parseCell(cell string) value.Value {
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return value.Int(n)
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return value.Float(f)
	}
	return value.String(cell)
}

// Header returns table's column names, read off its first row. An empty
// table has no header to report.
func (p *Provider) Header(table value.Array) value.Array {
	if len(table) == 0 {
		return value.Array{}
	}
	row, ok := table[0].(value.Struct)
	if !ok {
		return value.Array{}
	}
	out := make(value.Array, len(row.Names))
	for i, n := range row.Names {
		out[i] = value.String(n)
	}
	return out
}

// Col extracts a named column from every row in table.
func (p *Provider) Col(table value.Array, name string) (value.Array, error) {
	out := make(value.Array, 0, len(table))
	for i, r := range table {
		row, ok := r.(value.Struct)
		if !ok {
			return nil, fmt.Errorf("csv: row %d is not a struct", i)
		}
		v, ok := row.Get(name)
		if !ok {
			return nil, fmt.Errorf("csv: unknown column %q", name)
		}
		out = append(out, v)
	}
	return out, nil
}

// Row returns the i-th row of table.
func (p *Provider) Row(table value.Array, i int) (value.Struct, error) {
	if i < 0 || i >= len(table) {
		return value.Struct{}, fmt.Errorf("csv: row index %d out of range (table has %d rows)", i, len(table))
	}
	row, ok := table[i].(value.Struct)
	if !ok {
		return value.Struct{}, fmt.Errorf("csv: row %d is not a struct", i)
	}
	return row, nil
}

// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melchoirr/Ripple/internal/value"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestProvider_LoadParsesTypedCells(t *testing.T) {
	path := writeTempCSV(t, "name,age,score\nAlice,30,9.5\nBob,25,8\n")
	p := New()

	table, err := p.Load(path)
	require.NoError(t, err)
	require.Len(t, table, 2)

	alice, ok := table[0].(value.Struct)
	require.True(t, ok)
	name, _ := alice.Get("name")
	age, _ := alice.Get("age")
	score, _ := alice.Get("score")
	assert.Equal(t, value.String("Alice"), name)
	assert.Equal(t, value.Int(30), age)
	assert.Equal(t, value.Float(9.5), score)

	bob, _ := table[1].(value.Struct)
	bobScore, _ := bob.Get("score")
	assert.Equal(t, value.Int(8), bobScore, "an integral cell parses as Int even in a column with floats elsewhere")
}

func TestProvider_HeaderColRow(t *testing.T) {
	path := writeTempCSV(t, "a,b\n1,2\n3,4\n")
	p := New()
	table, err := p.Load(path)
	require.NoError(t, err)

	header := p.Header(table)
	assert.Equal(t, value.Array{value.String("a"), value.String("b")}, header)

	col, err := p.Col(table, "b")
	require.NoError(t, err)
	assert.Equal(t, value.Array{value.Int(2), value.Int(4)}, col)

	_, err = p.Col(table, "ghost")
	assert.Error(t, err)

	row, err := p.Row(table, 1)
	require.NoError(t, err)
	a, _ := row.Get("a")
	assert.Equal(t, value.Int(3), a)

	_, err = p.Row(table, 5)
	assert.Error(t, err)
}

func TestProvider_LoadMissingFileIsAnError(t *testing.T) {
	p := New()
	_, err := p.Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

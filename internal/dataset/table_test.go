/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tbl, err := New([]string{"a", "b"}, [][]Value{
		{Number(1), Text("x")},
		{Number(2), Text("y")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumColumns())
	assert.Equal(t, []string{"a", "b"}, tbl.Names())
}

func TestNewRaggedRow(t *testing.T) {
	_, err := New([]string{"a", "b"}, [][]Value{
		{Number(1), Text("x")},
		{Number(2)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestCloneIsIndependent(t *testing.T) {
	tbl, err := New([]string{"a"}, [][]Value{{Number(1)}, {Number(2)}})
	require.NoError(t, err)

	cp := tbl.Clone()
	cp.Columns[0].Cells[0] = Number(99)
	cp.Columns[0].Name = "renamed"

	assert.Equal(t, Number(1), tbl.Columns[0].Cells[0])
	assert.Equal(t, "a", tbl.Columns[0].Name)
}

func TestValidate(t *testing.T) {
	tbl, err := New([]string{"a", "b"}, [][]Value{{Number(1), Number(2)}})
	require.NoError(t, err)
	require.NoError(t, tbl.Validate())

	tbl.Columns[1].Cells = append(tbl.Columns[1].Cells, Number(3))
	err = tbl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "b"`)
}

func TestColumnLookup(t *testing.T) {
	tbl, err := New([]string{"a", "b"}, [][]Value{{Number(1), Number(2)}})
	require.NoError(t, err)

	require.NotNil(t, tbl.Column("b"))
	assert.Equal(t, "b", tbl.Column("b").Name)
	assert.Nil(t, tbl.Column("missing"))
}

func TestMissingCountAndNumbers(t *testing.T) {
	col := Column{Name: "x", Cells: []Value{
		Number(1), Missing, Text("oops"), Number(4), Missing,
	}}

	assert.Equal(t, 2, col.MissingCount())
	assert.Len(t, col.NonMissing(), 3)

	vals, rows := col.Numbers()
	assert.Equal(t, []float64{1, 4}, vals)
	assert.Equal(t, []int{0, 3}, rows)
}

func TestEstimateBytesDeterministic(t *testing.T) {
	tbl, err := New([]string{"a"}, [][]Value{{Number(1)}, {Text("hello")}})
	require.NoError(t, err)

	first := tbl.EstimateBytes()
	assert.Greater(t, first, int64(0))
	assert.Equal(t, first, tbl.EstimateBytes())
}

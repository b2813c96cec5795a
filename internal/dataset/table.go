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
	"fmt"
)

// Column is an ordered sequence of cells under one name.
type Column struct {
	Name  string
	Cells []Value
}

// Table is an in-memory column-oriented dataset. Rows are positionally
// aligned across columns: every column has the same length, and row order is
// preserved by every transformation that does not explicitly remove rows.
type Table struct {
	Columns []Column
}

// New builds a table from column names and row-major cell data. It is the
// constructor used by the CSV loader and the SQL source.
func New(names []string, rows [][]Value) (*Table, error) {
	t := &Table{Columns: make([]Column, len(names))}
	for i, name := range names {
		t.Columns[i] = Column{Name: name, Cells: make([]Value, 0, len(rows))}
	}
	for r, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), len(names))
		}
		for i, cell := range row {
			t.Columns[i].Cells = append(t.Columns[i].Cells, cell)
		}
	}
	return t, nil
}

// NumRows returns the row count. An empty table has zero rows.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int { return len(t.Columns) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Row materializes one row across all columns.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for c := range t.Columns {
		row[c] = t.Columns[c].Cells[i]
	}
	return row
}

// Clone returns a deep-enough copy: cell slices are copied so a stage can
// transform its own table without aliasing the caller's.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		cells := make([]Value, len(c.Cells))
		copy(cells, c.Cells)
		out.Columns[i] = Column{Name: c.Name, Cells: cells}
	}
	return out
}

// Validate checks the column-alignment invariant. A violation indicates an
// internal defect, not bad input data.
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return nil
	}
	want := len(t.Columns[0].Cells)
	for _, c := range t.Columns {
		if len(c.Cells) != want {
			return fmt.Errorf("column %q has %d cells, want %d", c.Name, len(c.Cells), want)
		}
	}
	return nil
}

// EstimateBytes approximates the in-memory footprint of the table. The
// estimate is deterministic for identical data.
func (t *Table) EstimateBytes() int64 {
	var total int64
	for _, c := range t.Columns {
		total += int64(len(c.Name)) + 48
		for _, v := range c.Cells {
			total += v.estimatedBytes()
		}
	}
	return total
}

// MissingCount returns the number of missing cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Cells {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// NonMissing returns the column's non-missing cells in row order.
func (c *Column) NonMissing() []Value {
	out := make([]Value, 0, len(c.Cells))
	for _, v := range c.Cells {
		if !v.IsMissing() {
			out = append(out, v)
		}
	}
	return out
}

// Numbers returns the float payloads of non-missing numeric cells along with
// their row indices. Non-number cells are skipped.
func (c *Column) Numbers() (vals []float64, rows []int) {
	for i, v := range c.Cells {
		if v.Tag == TagNumber {
			vals = append(vals, v.Num)
			rows = append(rows, i)
		}
	}
	return vals, rows
}

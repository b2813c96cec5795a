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

// Package cleaner repairs data-quality defects in a classified table:
// column-name normalization, per-kind missing-value imputation, and
// exact-duplicate row removal, in that fixed order. Deduplication runs after
// imputation on purpose, so filled values participate in the row comparison.
package cleaner

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
)

// Options toggles the individual cleaning steps.
type Options struct {
	NormalizeNames bool
	ImputeMissing  bool
	DropDuplicates bool
}

// DefaultOptions enables every step.
func DefaultOptions() Options {
	return Options{NormalizeNames: true, ImputeMissing: true, DropDuplicates: true}
}

// Clean returns a cleaned copy of the table and the ordered change log. The
// input table is never modified. kinds is positional, aligned with
// t.Columns, so duplicate header names keep their own kind through renaming
// and imputation.
func Clean(t *dataset.Table, kinds []dataset.Kind, opts Options) (*dataset.Table, ChangeLog) {
	out := t.Clone()
	var log ChangeLog

	if opts.NormalizeNames {
		log = append(log, normalizeNames(out)...)
	}
	if opts.ImputeMissing {
		log = append(log, imputeMissing(out, kinds)...)
	}
	if opts.DropDuplicates {
		log = append(log, dropDuplicates(out)...)
	}
	return out, log
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName maps one raw column name to its canonical form: trimmed,
// lowercased, runs of non-alphanumerics collapsed to a single underscore.
// It is a pure function of its input; collision handling happens per table.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = nonAlnum.ReplaceAllString(n, "_")
	n = strings.Trim(n, "_")
	if n == "" {
		n = "column"
	}
	return n
}

func normalizeNames(t *dataset.Table) ChangeLog {
	var log ChangeLog
	taken := make(map[string]bool, len(t.Columns))
	for i := range t.Columns {
		before := t.Columns[i].Name
		name := NormalizeName(before)
		// First-seen keeps the base name; later collisions get _1, _2, ...
		if taken[name] {
			for suffix := 1; ; suffix++ {
				candidate := fmt.Sprintf("%s_%d", name, suffix)
				if !taken[candidate] {
					name = candidate
					break
				}
			}
		}
		taken[name] = true
		if name != before {
			t.Columns[i].Name = name
			log = append(log, Entry{Op: OpRename, Column: name, Before: before, After: name})
		}
	}
	return log
}

func imputeMissing(t *dataset.Table, kinds []dataset.Kind) ChangeLog {
	var log ChangeLog
	for i := range t.Columns {
		col := &t.Columns[i]
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}
		fill, ok := fillValue(col, kinds[i])
		if !ok {
			log = append(log, Entry{Op: OpImpute, Column: col.Name, Count: missing, Note: "unfillable"})
			continue
		}
		for j, v := range col.Cells {
			if v.IsMissing() {
				col.Cells[j] = fill
			}
		}
		log = append(log, Entry{Op: OpImpute, Column: col.Name, After: fill.String(), Count: missing})
	}
	return log
}

// fillValue computes the imputation value from the column's non-missing
// cells: median for numeric columns, first-seen mode for everything else.
// ok is false when the column has no non-missing cells.
func fillValue(col *dataset.Column, kind dataset.Kind) (fill dataset.Value, ok bool) {
	nonMissing := col.NonMissing()
	if len(nonMissing) == 0 {
		return dataset.Missing, false
	}
	if kind == dataset.KindNumeric {
		vals, _ := col.Numbers()
		if len(vals) == 0 {
			return dataset.Missing, false
		}
		return dataset.Number(median(vals)), true
	}
	return mode(nonMissing), true
}

func median(vals []float64) float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 0 {
		return (cp[mid-1] + cp[mid]) / 2
	}
	return cp[mid]
}

// mode returns the most frequent value; the first-seen value wins ties.
func mode(vals []dataset.Value) dataset.Value {
	counts := make(map[string]int, len(vals))
	first := make(map[string]int, len(vals))
	bestKey := ""
	for i, v := range vals {
		key := fmt.Sprintf("%d|%s", v.Tag, v.String())
		counts[key]++
		if _, seen := first[key]; !seen {
			first[key] = i
		}
		if bestKey == "" {
			bestKey = key
			continue
		}
		if counts[key] > counts[bestKey] ||
			(counts[key] == counts[bestKey] && first[key] < first[bestKey]) {
			bestKey = key
		}
	}
	return vals[first[bestKey]]
}

func dropDuplicates(t *dataset.Table) ChangeLog {
	rows := t.NumRows()
	if rows == 0 {
		return nil
	}
	seen := make(map[string]bool, rows)
	keep := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		key := rowKey(t.Row(i))
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}
	removed := rows - len(keep)
	if removed == 0 {
		return nil
	}
	for c := range t.Columns {
		cells := make([]dataset.Value, 0, len(keep))
		for _, i := range keep {
			cells = append(cells, t.Columns[c].Cells[i])
		}
		t.Columns[c].Cells = cells
	}
	return ChangeLog{{Op: OpDedupe, Count: removed}}
}

// rowKey builds an equality key over the full row. Tag is part of the key so
// the text "30" and the number 30 never compare equal.
func rowKey(row []dataset.Value) string {
	var b strings.Builder
	for _, v := range row {
		fmt.Fprintf(&b, "%d|%s\x00", v.Tag, v.String())
	}
	return b.String()
}

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

// Package outlier flags per-row, per-column anomalies in numeric columns
// using two independent methods, IQR fences and z-scores. The two methods
// are reported as separate signals: a cell flagged by both yields two flags.
package outlier

import (
	"math"
	"sort"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
)

// Method identifies the detection algorithm that produced a flag.
type Method string

const (
	MethodIQR    Method = "iqr"
	MethodZScore Method = "zscore"
)

// minSamples is the smallest column size for which quartile and variance
// estimates are meaningful.
const minSamples = 4

// Flag marks one anomalous cell.
type Flag struct {
	Row    int     `json:"row"`
	Column string  `json:"column"`
	Method Method  `json:"method"`
	Value  float64 `json:"value"`
}

// Stat summarizes the flags of one (column, method) pair. Percentage is
// relative to the column's non-missing row count.
type Stat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summary groups flag statistics by column, then method.
type Summary map[string]map[Method]Stat

// Options overrides the detection thresholds.
type Options struct {
	IQRMultiplier   float64
	ZScoreThreshold float64
}

// DefaultOptions returns the conventional 1.5·IQR fence and |z| > 3.
func DefaultOptions() Options {
	return Options{IQRMultiplier: 1.5, ZScoreThreshold: 3}
}

// Detect runs both methods on every numeric column of the table. Flags are
// ordered by column position, then method (IQR before z-score), then row.
// Columns with fewer than four non-missing values are skipped, as are
// zero-variance columns for the z-score method.
func Detect(t *dataset.Table, kinds map[string]dataset.Kind, opts Options) ([]Flag, Summary) {
	var flags []Flag
	summary := make(Summary)

	for i := range t.Columns {
		col := &t.Columns[i]
		if kinds[col.Name] != dataset.KindNumeric {
			continue
		}
		vals, rows := col.Numbers()
		if len(vals) < minSamples {
			continue
		}

		colFlags := iqrFlags(col.Name, vals, rows, opts.IQRMultiplier)
		colFlags = append(colFlags, zscoreFlags(col.Name, vals, rows, opts.ZScoreThreshold)...)
		flags = append(flags, colFlags...)

		stats := make(map[Method]Stat, 2)
		for _, f := range colFlags {
			s := stats[f.Method]
			s.Count++
			stats[f.Method] = s
		}
		for m, s := range stats {
			s.Percentage = float64(s.Count) / float64(len(vals)) * 100
			stats[m] = s
		}
		summary[col.Name] = stats
	}
	return flags, summary
}

func iqrFlags(column string, vals []float64, rows []int, multiplier float64) []Flag {
	q1 := percentile(vals, 25)
	q3 := percentile(vals, 75)
	iqr := q3 - q1
	lower := q1 - multiplier*iqr
	upper := q3 + multiplier*iqr

	var flags []Flag
	for i, v := range vals {
		if v < lower || v > upper {
			flags = append(flags, Flag{Row: rows[i], Column: column, Method: MethodIQR, Value: v})
		}
	}
	return flags
}

func zscoreFlags(column string, vals []float64, rows []int, threshold float64) []Flag {
	mean := meanOf(vals)
	sd := sampleStd(vals, mean)
	if sd == 0 {
		return nil
	}
	var flags []Flag
	for i, v := range vals {
		if math.Abs(v-mean)/sd > threshold {
			flags = append(flags, Flag{Row: rows[i], Column: column, Method: MethodZScore, Value: v})
		}
	}
	return flags
}

func meanOf(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStd is the n-1 standard deviation.
func sampleStd(vals []float64, mean float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// percentile returns the p-th percentile with linear interpolation between
// closest ranks.
func percentile(vals []float64, p float64) float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 100 {
		return cp[len(cp)-1]
	}
	rank := p / 100 * float64(len(cp)-1)
	lower := int(rank)
	weight := rank - float64(lower)
	if lower+1 >= len(cp) {
		return cp[lower]
	}
	return cp[lower]*(1-weight) + cp[lower+1]*weight
}

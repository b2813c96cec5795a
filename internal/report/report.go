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

// Package report aggregates the outcome of a pipeline run into one immutable
// snapshot: shape, memory estimate, missingness, descriptive statistics,
// correlation, outlier summary, and chart-ready histograms. A Report is
// built once at the end of the run and never mutated afterwards.
package report

import (
	"math"
	"sort"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/outlier"
)

// Shape holds the row and column counts of a table.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// ColumnStats is the descriptive-statistics block of one numeric column,
// computed on the cleaned table. Std is the sample (n-1) standard deviation.
type ColumnStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Histogram is the chart-ready distribution of one numeric column:
// len(Edges) == len(Counts)+1.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// Report is the structured summary handed to presentation and narrative
// layers. Missing counts reflect the original table (what was fixed), while
// statistics, correlation, and outliers reflect the cleaned table.
type Report struct {
	Shape       Shape                  `json:"shape"`
	MemoryBytes int64                  `json:"memory_bytes"`
	Kinds       map[string]string      `json:"column_kinds"`
	Missing     map[string]int         `json:"missing_values"`
	Stats       map[string]ColumnStats `json:"descriptive_stats"`
	Correlation Matrix                 `json:"correlation"`
	Outliers    outlier.Summary        `json:"outlier_summary"`
	Histograms  map[string]Histogram   `json:"histograms"`
}

// Options tunes the presentation-facing parts of the report.
type Options struct {
	HistogramBins int
}

// DefaultOptions uses 30 histogram bins.
func DefaultOptions() Options { return Options{HistogramBins: 30} }

// Build assembles the report. The original table provides the missingness
// section; everything else is computed on the cleaned table. The two tables
// are positionally aligned column-for-column, so original missing counts are
// keyed by the cleaned (normalized) names. kinds is keyed by cleaned names.
func Build(original, cleaned *dataset.Table, kinds map[string]dataset.Kind, summary outlier.Summary, opts Options) *Report {
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = DefaultOptions().HistogramBins
	}

	r := &Report{
		Shape:       Shape{Rows: cleaned.NumRows(), Columns: cleaned.NumColumns()},
		MemoryBytes: cleaned.EstimateBytes(),
		Kinds:       make(map[string]string, len(kinds)),
		Missing:     make(map[string]int, cleaned.NumColumns()),
		Stats:       make(map[string]ColumnStats),
		Outliers:    summary,
		Histograms:  make(map[string]Histogram),
	}
	if r.Outliers == nil {
		r.Outliers = make(outlier.Summary)
	}
	for name, kind := range kinds {
		r.Kinds[name] = kind.String()
	}

	for i := range cleaned.Columns {
		name := cleaned.Columns[i].Name
		r.Missing[name] = original.Columns[i].MissingCount()
	}

	var numericNames []string
	numericVals := make(map[string][]float64)
	for i := range cleaned.Columns {
		col := &cleaned.Columns[i]
		if kinds[col.Name] != dataset.KindNumeric {
			continue
		}
		vals, _ := col.Numbers()
		numericNames = append(numericNames, col.Name)
		numericVals[col.Name] = vals
		if len(vals) == 0 {
			continue
		}
		r.Stats[col.Name] = describe(vals)
		r.Histograms[col.Name] = histogram(vals, opts.HistogramBins)
	}

	r.Correlation = correlate(cleaned, numericNames)
	return r
}

func describe(vals []float64) ColumnStats {
	mean := meanOf(vals)
	return ColumnStats{
		Count:  len(vals),
		Mean:   mean,
		Std:    sampleStd(vals, mean),
		Min:    percentile(vals, 0),
		Q25:    percentile(vals, 25),
		Median: percentile(vals, 50),
		Q75:    percentile(vals, 75),
		Max:    percentile(vals, 100),
	}
}

func histogram(vals []float64, bins int) Histogram {
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return Histogram{Edges: []float64{min, max}, Counts: []int{len(vals)}}
	}
	h := Histogram{Edges: make([]float64, bins+1), Counts: make([]int, bins)}
	width := (max - min) / float64(bins)
	for i := 0; i <= bins; i++ {
		h.Edges[i] = min + width*float64(i)
	}
	for _, v := range vals {
		idx := int((v - min) / width)
		if idx >= bins { // max falls into the last bin
			idx = bins - 1
		}
		h.Counts[idx]++
	}
	return h
}

// correlate computes pairwise Pearson correlation over the numeric columns.
// Pairs are evaluated on rows where both cells are numbers; zero-variance
// pairs yield NaN, which serializes as JSON null.
func correlate(t *dataset.Table, names []string) Matrix {
	m := Matrix{Columns: names, Values: make([][]float64, len(names))}
	for i := range names {
		m.Values[i] = make([]float64, len(names))
		for j := range names {
			m.Values[i][j] = pearson(t.Column(names[i]), t.Column(names[j]))
		}
	}
	return m
}

func pearson(a, b *dataset.Column) float64 {
	var xs, ys []float64
	for i := range a.Cells {
		if a.Cells[i].Tag == dataset.TagNumber && b.Cells[i].Tag == dataset.TagNumber {
			xs = append(xs, a.Cells[i].Num)
			ys = append(ys, b.Cells[i].Num)
		}
	}
	n := float64(len(xs))
	if n < 2 {
		return math.NaN()
	}
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}
	denom := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denom == 0 {
		return math.NaN()
	}
	return (n*sumXY - sumX*sumY) / denom
}

func meanOf(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

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

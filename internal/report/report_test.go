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
package report

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/classify"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/cleaner"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/outlier"
)

// buildFromCSV runs classification and cleaning so the report sees the same
// inputs it gets from the pipeline.
func buildFromCSV(t *testing.T, csv string, opts Options) (*Report, *dataset.Table) {
	t.Helper()
	original, err := dataset.ReadCSV(strings.NewReader(csv), 0)
	require.NoError(t, err)

	kinds := classify.Columns(original)
	cleaned, _ := cleaner.Clean(original, kinds, cleaner.DefaultOptions())

	cleanedKinds := make(map[string]dataset.Kind, len(kinds))
	for i := range cleaned.Columns {
		cleanedKinds[cleaned.Columns[i].Name] = kinds[i]
	}
	_, summary := outlier.Detect(cleaned, cleanedKinds, outlier.DefaultOptions())

	return Build(original, cleaned, cleanedKinds, summary, opts), cleaned
}

func TestBuildMissingCountsUseOriginalTable(t *testing.T) {
	rep, _ := buildFromCSV(t, "Age,Name\n30,alice\n,bob\n28,\n", Options{})

	// Counts come from the original (pre-imputation) table but are keyed by
	// the normalized names.
	assert.Equal(t, map[string]int{"age": 1, "name": 1}, rep.Missing)
	assert.Equal(t, "numeric", rep.Kinds["age"])
	assert.Equal(t, "categorical", rep.Kinds["name"])
}

func TestBuildDescriptiveStats(t *testing.T) {
	rep, _ := buildFromCSV(t, "x\n1\n2\n3\n4\n100\n", Options{})

	stats, ok := rep.Stats["x"]
	require.True(t, ok)
	assert.Equal(t, 5, stats.Count)
	assert.InDelta(t, 22, stats.Mean, 1e-9)
	assert.InDelta(t, 43.6177, stats.Std, 1e-3)
	assert.InDelta(t, 1, stats.Min, 1e-9)
	assert.InDelta(t, 2, stats.Q25, 1e-9)
	assert.InDelta(t, 3, stats.Median, 1e-9)
	assert.InDelta(t, 4, stats.Q75, 1e-9)
	assert.InDelta(t, 100, stats.Max, 1e-9)

	require.Contains(t, rep.Outliers, "x")
	assert.Equal(t, 1, rep.Outliers["x"][outlier.MethodIQR].Count)
}

func TestBuildShapeReflectsCleanedTable(t *testing.T) {
	rep, cleaned := buildFromCSV(t, "x,y\n1,a\n1,a\n2,b\n", Options{})

	assert.Equal(t, cleaned.NumRows(), rep.Shape.Rows)
	assert.Equal(t, 2, rep.Shape.Rows, "duplicate row dropped before the report")
	assert.Equal(t, 2, rep.Shape.Columns)
	assert.Greater(t, rep.MemoryBytes, int64(0))
}

func TestBuildHistogram(t *testing.T) {
	rep, _ := buildFromCSV(t, "x\n0\n2\n4\n6\n8\n10\n", Options{HistogramBins: 5})

	h, ok := rep.Histograms["x"]
	require.True(t, ok)
	require.Len(t, h.Edges, 6)
	require.Len(t, h.Counts, 5)
	assert.InDelta(t, 0, h.Edges[0], 1e-9)
	assert.InDelta(t, 10, h.Edges[5], 1e-9)

	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, 6, total, "every value lands in exactly one bin")
	assert.Equal(t, 2, h.Counts[4], "the maximum falls into the last bin")
}

func TestBuildHistogramSingleValue(t *testing.T) {
	rep, _ := buildFromCSV(t, "x,y\n5,1\n5,2\n5,3\n", Options{})

	h := rep.Histograms["x"]
	assert.Equal(t, []float64{5, 5}, h.Edges)
	assert.Equal(t, []int{3}, h.Counts)
}

func TestBuildCorrelation(t *testing.T) {
	rep, _ := buildFromCSV(t, "x,y\n1,2\n2,4\n3,6\n4,8\n", Options{})

	m := rep.Correlation
	require.Equal(t, []string{"x", "y"}, m.Columns)
	assert.InDelta(t, 1, m.At(0, 0), 1e-9)
	assert.InDelta(t, 1, m.At(0, 1), 1e-9, "y = 2x correlates perfectly")
}

func TestBuildNoNumericColumns(t *testing.T) {
	rep, _ := buildFromCSV(t, "a,b\nx,y\nz,w\n", Options{})

	assert.Empty(t, rep.Stats)
	assert.Empty(t, rep.Histograms)
	assert.Empty(t, rep.Correlation.Columns)
}

func TestMatrixMarshalsNaNAsNull(t *testing.T) {
	m := Matrix{
		Columns: []string{"a", "b"},
		Values: [][]float64{
			{1, math.NaN()},
			{math.NaN(), 1},
		},
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["a","b"],"values":[[1,null],[null,1]]}`, string(data))

	var back Matrix
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"a", "b"}, back.Columns)
	assert.True(t, math.IsNaN(back.Values[0][1]))
	assert.Equal(t, 1.0, back.Values[1][1])
}

func TestReportMarshalsWithZeroVariancePair(t *testing.T) {
	// A constant column makes its correlation entries NaN; the whole report
	// must still serialize.
	rep, _ := buildFromCSV(t, "x,y\n1,5\n2,5\n3,5\n4,5\n", Options{})

	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(data), "null")
	assert.Contains(t, string(data), `"descriptive_stats"`)
}

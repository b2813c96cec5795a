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
package outlier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
)

func numericTable(t *testing.T, name string, vals ...float64) (*dataset.Table, map[string]dataset.Kind) {
	t.Helper()
	rows := make([][]dataset.Value, len(vals))
	for i, v := range vals {
		rows[i] = []dataset.Value{dataset.Number(v)}
	}
	tbl, err := dataset.New([]string{name}, rows)
	require.NoError(t, err)
	return tbl, map[string]dataset.Kind{name: dataset.KindNumeric}
}

func TestDetectIQR(t *testing.T) {
	// Q1=2, Q3=4, IQR=2, fences [-1, 7]: only 100 lies outside. Its z-score
	// is roughly 1.79 with the sample deviation, well under the default 3,
	// so the z-score method stays quiet.
	tbl, kinds := numericTable(t, "x", 1, 2, 3, 4, 100)

	flags, summary := Detect(tbl, kinds, DefaultOptions())

	require.Len(t, flags, 1)
	assert.Equal(t, Flag{Row: 4, Column: "x", Method: MethodIQR, Value: 100}, flags[0])

	require.Contains(t, summary, "x")
	assert.Equal(t, 1, summary["x"][MethodIQR].Count)
	assert.InDelta(t, 20.0, summary["x"][MethodIQR].Percentage, 1e-9)
	_, hasZScore := summary["x"][MethodZScore]
	assert.False(t, hasZScore)
}

func TestDetectZScoreWithLowerThreshold(t *testing.T) {
	tbl, kinds := numericTable(t, "x", 1, 2, 3, 4, 100)

	flags, _ := Detect(tbl, kinds, Options{IQRMultiplier: 1.5, ZScoreThreshold: 1.5})

	require.Len(t, flags, 2)
	assert.Equal(t, MethodIQR, flags[0].Method, "IQR flags come before z-score flags")
	assert.Equal(t, MethodZScore, flags[1].Method)
	assert.Equal(t, 4, flags[1].Row)
	assert.Equal(t, 100.0, flags[1].Value)
}

func TestDetectTighterFenceFlagsMore(t *testing.T) {
	tbl, kinds := numericTable(t, "x", 1, 2, 3, 4, 100)

	loose, _ := Detect(tbl, kinds, Options{IQRMultiplier: 1.5, ZScoreThreshold: 3})
	tight, _ := Detect(tbl, kinds, Options{IQRMultiplier: 0.1, ZScoreThreshold: 3})

	assert.GreaterOrEqual(t, len(tight), len(loose))
}

func TestDetectZeroVariance(t *testing.T) {
	tbl, kinds := numericTable(t, "x", 5, 5, 5, 5)

	flags, summary := Detect(tbl, kinds, DefaultOptions())

	assert.Empty(t, flags)
	require.Contains(t, summary, "x", "column is still summarized")
	assert.Empty(t, summary["x"])
}

func TestDetectTooFewSamples(t *testing.T) {
	tbl, kinds := numericTable(t, "x", 1, 2, 3)

	flags, summary := Detect(tbl, kinds, DefaultOptions())

	assert.Empty(t, flags)
	assert.NotContains(t, summary, "x")
}

func TestDetectSkipsNonNumeric(t *testing.T) {
	tbl, err := dataset.New([]string{"name"}, [][]dataset.Value{
		{dataset.Text("a")}, {dataset.Text("b")}, {dataset.Text("c")}, {dataset.Text("d")},
	})
	require.NoError(t, err)

	flags, summary := Detect(tbl, map[string]dataset.Kind{"name": dataset.KindCategorical}, DefaultOptions())
	assert.Empty(t, flags)
	assert.Empty(t, summary)
}

func TestDetectSkipsMissingRows(t *testing.T) {
	tbl, err := dataset.New([]string{"x"}, [][]dataset.Value{
		{dataset.Number(1)}, {dataset.Missing}, {dataset.Number(2)},
		{dataset.Number(3)}, {dataset.Number(4)}, {dataset.Number(100)},
	})
	require.NoError(t, err)

	flags, summary := Detect(tbl, map[string]dataset.Kind{"x": dataset.KindNumeric}, DefaultOptions())

	require.Len(t, flags, 1)
	assert.Equal(t, 5, flags[0].Row, "flag rows are table rows, not positions among the numbers")
	assert.InDelta(t, 20.0, summary["x"][MethodIQR].Percentage, 1e-9,
		"percentage is relative to non-missing count")
}

func TestPercentile(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 100}
	assert.InDelta(t, 2, percentile(vals, 25), 1e-9)
	assert.InDelta(t, 3, percentile(vals, 50), 1e-9)
	assert.InDelta(t, 4, percentile(vals, 75), 1e-9)
	assert.InDelta(t, 1, percentile(vals, 0), 1e-9)
	assert.InDelta(t, 100, percentile(vals, 100), 1e-9)

	// Linear interpolation between ranks.
	assert.InDelta(t, 2.5, percentile([]float64{1, 2, 3, 4}, 50), 1e-9)
}

func TestSampleStd(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 100}
	mean := meanOf(vals)
	assert.InDelta(t, 22, mean, 1e-9)
	assert.InDelta(t, 43.6177, sampleStd(vals, mean), 1e-3)
	assert.Equal(t, 0.0, sampleStd([]float64{7}, 7))
}

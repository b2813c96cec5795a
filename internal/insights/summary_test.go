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
package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/cleaner"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/outlier"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/report"
)

func TestExtractContentBetween(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      string
		wantFound bool
	}{
		{"simple", "<result>hello</result>", "hello", true},
		{"surrounding noise", "prefix <result> spaced </result> suffix", "spaced", true},
		{"empty tags", "<result></result>", "", true},
		{"no start tag", "hello</result>", "", false},
		{"no end tag", "<result>hello", "", false},
		{"empty input", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := extractContentBetween(tt.text, "<result>", "</result>")
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sampleReport() *report.Report {
	return &report.Report{
		Shape: report.Shape{Rows: 10, Columns: 2},
		Kinds: map[string]string{"age": "numeric", "name": "categorical"},
		Missing: map[string]int{
			"age":  3,
			"name": 1,
		},
		Stats: map[string]report.ColumnStats{
			"age": {Count: 10, Mean: 22, Median: 3},
		},
		Outliers: outlier.Summary{
			"age": {outlier.MethodIQR: {Count: 2, Percentage: 20}},
		},
	}
}

func TestBuildSummary(t *testing.T) {
	changes := cleaner.ChangeLog{
		{Op: cleaner.OpImpute, Column: "age", After: "3", Count: 3},
	}

	summary := BuildSummary(sampleReport(), changes)

	assert.Contains(t, summary, "Shape: 10 rows x 2 columns")
	assert.Contains(t, summary, "age (numeric), name (categorical)")
	assert.Contains(t, summary, "Missing values: 4 total")
	assert.Contains(t, summary, "Outliers detected: 2 total")
	assert.Contains(t, summary, "Cleaning actions: 1")
	assert.Contains(t, summary, "Key Statistics:")
	assert.Contains(t, summary, `"mean": 22`)
}

func TestBuildSummaryDeterministic(t *testing.T) {
	rep := sampleReport()
	first := BuildSummary(rep, nil)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, BuildSummary(rep, nil))
	}
}

func TestBuildSummaryNoChanges(t *testing.T) {
	summary := BuildSummary(sampleReport(), nil)
	assert.NotContains(t, summary, "Cleaning actions")
}

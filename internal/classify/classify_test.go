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
package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
)

func tableFromCSV(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(csv), 0)
	require.NoError(t, err)
	return tbl
}

func TestColumns(t *testing.T) {
	tests := []struct {
		name   string
		column string
		cells  string
		want   dataset.Kind
	}{
		{"all numbers", "x", "1\n2\n3.5\n-4", dataset.KindNumeric},
		{"numbers with missing", "x", "1\nNA\n3", dataset.KindNumeric},
		{"text among numbers", "x", "1\n2\noops", dataset.KindCategorical},
		{"boolean words", "x", "yes\nno\nyes", dataset.KindBoolean},
		{"zero one column", "x", "0\n1\n1\n0", dataset.KindBoolean},
		{"mixed bool encodings", "x", "0\n1\nyes", dataset.KindCategorical},
		{"dates", "x", "2024-01-01\n2024-01-02\n2024-01-03", dataset.KindDatetime},
		{"dates at threshold", "x", "2024-01-01\n2024-01-02\n2024-01-03\n2024-01-04\noops", dataset.KindDatetime},
		{"dates below threshold", "x", "2024-01-01\n2024-01-02\n2024-01-03\noops\nmore", dataset.KindCategorical},
		{"plain text", "x", "alice\nbob", dataset.KindCategorical},
		{"all missing", "x", "NA\nNA", dataset.KindCategorical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := tableFromCSV(t, tt.column+"\n"+tt.cells+"\n")
			kinds := Columns(tbl)
			require.Len(t, kinds, 1)
			assert.Equal(t, tt.want, kinds[0])
		})
	}
}

func TestColumnsClassifiesEveryColumn(t *testing.T) {
	tbl := tableFromCSV(t, "a,b,c\n1,x,2024-01-01\n2,y,2024-01-02\n")
	kinds := Columns(tbl)

	require.Len(t, kinds, 3)
	assert.Equal(t, dataset.KindNumeric, kinds[0])
	assert.Equal(t, dataset.KindCategorical, kinds[1])
	assert.Equal(t, dataset.KindDatetime, kinds[2])
}

func TestColumnsDuplicateHeadersClassifyIndependently(t *testing.T) {
	tbl, err := dataset.New([]string{"Age", "Age"}, [][]dataset.Value{
		{dataset.Number(30), dataset.Text("a")},
		{dataset.Number(40), dataset.Text("b")},
	})
	require.NoError(t, err)

	kinds := Columns(tbl)
	assert.Equal(t, []dataset.Kind{dataset.KindNumeric, dataset.KindCategorical}, kinds)
}

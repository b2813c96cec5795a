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

// Package classify assigns a semantic kind to each column of a table.
// Classification happens once per pipeline run; every downstream stage
// receives the resulting mapping instead of re-inferring kinds ad hoc.
package classify

import (
	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
)

// datetimeThreshold is the fraction of non-missing cells that must carry a
// timestamp for a column to classify as datetime.
const datetimeThreshold = 0.8

// Columns assigns every column a kind using the fixed precedence
// Datetime > Boolean > Numeric > Categorical. The result is positional,
// aligned with t.Columns: names are not yet unique at this point (duplicate
// headers are only disambiguated by cleaning), so each column is classified
// independently of its name. Unparseable cells are excluded from the vote,
// never an error. A column with no non-missing cells defaults to categorical.
func Columns(t *dataset.Table) []dataset.Kind {
	kinds := make([]dataset.Kind, len(t.Columns))
	for i := range t.Columns {
		kinds[i] = classifyColumn(&t.Columns[i])
	}
	return kinds
}

func classifyColumn(c *dataset.Column) dataset.Kind {
	var nonMissing, timestamps, numbers, boolLike int
	distinct := make(map[string]bool)

	for _, v := range c.Cells {
		if v.IsMissing() {
			continue
		}
		nonMissing++
		switch v.Tag {
		case dataset.TagTimestamp:
			timestamps++
		case dataset.TagNumber:
			numbers++
		}
		if v.BoolLike() {
			boolLike++
			distinct[v.String()] = true
		}
	}

	if nonMissing == 0 {
		return dataset.KindCategorical
	}
	if float64(timestamps)/float64(nonMissing) >= datetimeThreshold {
		return dataset.KindDatetime
	}
	if boolLike == nonMissing && len(distinct) <= 2 {
		return dataset.KindBoolean
	}
	if numbers == nonMissing {
		return dataset.KindNumeric
	}
	return dataset.KindCategorical
}

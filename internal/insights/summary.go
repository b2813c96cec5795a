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
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/cleaner"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/report"
)

// BuildSummary renders the report into the plain-text dataset summary fed to
// the model: shape, columns, total missing values, outlier totals, cleaning
// actions, and the descriptive statistics as indented JSON. Map iteration is
// sorted so the same report always yields the same prompt.
func BuildSummary(rep *report.Report, changes cleaner.ChangeLog) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Shape: %d rows x %d columns\n", rep.Shape.Rows, rep.Shape.Columns)

	names := make([]string, 0, len(rep.Kinds))
	for name := range rep.Kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	cols := make([]string, 0, len(names))
	for _, name := range names {
		cols = append(cols, fmt.Sprintf("%s (%s)", name, rep.Kinds[name]))
	}
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(cols, ", "))

	totalMissing := 0
	for _, n := range rep.Missing {
		totalMissing += n
	}
	fmt.Fprintf(&b, "Missing values: %d total\n", totalMissing)

	totalOutliers := 0
	for _, methods := range rep.Outliers {
		for _, stat := range methods {
			totalOutliers += stat.Count
		}
	}
	fmt.Fprintf(&b, "Outliers detected: %d total\n", totalOutliers)

	if len(changes) > 0 {
		fmt.Fprintf(&b, "Cleaning actions: %d (renames, imputations, duplicate removal)\n", len(changes))
	}

	if len(rep.Stats) > 0 {
		stats, err := json.MarshalIndent(rep.Stats, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "\nKey Statistics:\n%s\n", stats)
		}
	}

	return b.String()
}

// extractContentBetween extracts content between start and end tags from a string.
func extractContentBetween(text, startTag, endTag string) (string, bool) {
	startIndex := strings.Index(text, startTag)
	if startIndex == -1 {
		return "", false
	}
	startIndex += len(startTag)
	endIndex := strings.Index(text[startIndex:], endTag)
	if endIndex == -1 {
		return "", false
	}
	return strings.TrimSpace(text[startIndex : startIndex+endIndex]), true
}

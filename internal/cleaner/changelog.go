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
package cleaner

// Op identifies one kind of cleaning action.
type Op string

const (
	OpRename Op = "rename"
	OpImpute Op = "impute"
	OpDedupe Op = "dedupe"
)

// Entry records one cleaning action. Entries are append-only and ordered by
// application sequence.
type Entry struct {
	Op     Op     `json:"op"`
	Column string `json:"column,omitempty"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
	Count  int    `json:"count,omitempty"`
	Note   string `json:"note,omitempty"`
}

// ChangeLog is the ordered record of all cleaning actions of one run.
type ChangeLog []Entry

// ImputedOrUnfillable returns, per column, the number of cells that were
// either filled or acknowledged as unfillable. Used to cross-check the
// report's missing counts.
func (l ChangeLog) ImputedOrUnfillable() map[string]int {
	out := make(map[string]int)
	for _, e := range l {
		if e.Op == OpImpute {
			out[e.Column] += e.Count
		}
	}
	return out
}

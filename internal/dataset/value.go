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
package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic classification of a column, assigned once by the
// classifier and threaded through every later stage.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
	KindDatetime
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDatetime:
		return "datetime"
	case KindBoolean:
		return "boolean"
	default:
		return "categorical"
	}
}

// ValueTag discriminates the cell union. Cells keep their parsed form so that
// classification and imputation can pattern-match instead of re-parsing.
type ValueTag int

const (
	TagMissing ValueTag = iota
	TagNumber
	TagText
	TagTimestamp
	TagBool
)

// Value is one cell of a column: a tagged union of
// {Missing, Number, Text, Timestamp, Bool}.
type Value struct {
	Tag  ValueTag
	Num  float64
	Str  string
	Time time.Time
	Bool bool
}

var Missing = Value{Tag: TagMissing}

func Number(f float64) Value      { return Value{Tag: TagNumber, Num: f} }
func Text(s string) Value         { return Value{Tag: TagText, Str: s} }
func Timestamp(t time.Time) Value { return Value{Tag: TagTimestamp, Time: t} }
func Boolean(b bool) Value        { return Value{Tag: TagBool, Bool: b} }

func (v Value) IsMissing() bool { return v.Tag == TagMissing }

// Equal reports full equality of tag and payload. Used for duplicate-row
// comparison, so it must be exact (no numeric tolerance).
func (v Value) Equal(o Value) bool {
	if v.Tag != o.Tag {
		return false
	}
	switch v.Tag {
	case TagMissing:
		return true
	case TagNumber:
		return v.Num == o.Num
	case TagText:
		return v.Str == o.Str
	case TagTimestamp:
		return v.Time.Equal(o.Time)
	case TagBool:
		return v.Bool == o.Bool
	}
	return false
}

// String renders the cell the way the CSV exporter writes it. Missing cells
// render as the empty string.
func (v Value) String() string {
	switch v.Tag {
	case TagNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case TagText:
		return v.Str
	case TagTimestamp:
		return v.Time.Format("2006-01-02 15:04:05")
	case TagBool:
		if v.Bool {
			return "true"
		}
		return "false"
	}
	return ""
}

// missingSentinels are raw CSV tokens treated as missing values.
var missingSentinels = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// timeLayouts are the date/time formats the loader and classifier recognize,
// tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02-Jan-2006",
}

// booleanTokens maps recognized boolean-like raw tokens to their value. The
// numeric tokens "0"/"1" are deliberately absent: they parse as numbers first
// and are resolved at classification time.
var booleanTokens = map[string]bool{
	"true": true, "t": true, "yes": true, "y": true,
	"false": false, "f": false, "no": false, "n": false,
}

// Parse converts one raw CSV token into a tagged Value. Missing sentinels win
// first, then numbers, then timestamps, then booleans; everything else is
// text. Parse never fails: an unrecognized token is simply text.
func Parse(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if missingSentinels[strings.ToLower(trimmed)] {
		return Missing
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(f)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Timestamp(t)
		}
	}
	if b, ok := booleanTokens[strings.ToLower(trimmed)]; ok {
		return Boolean(b)
	}
	return Text(trimmed)
}

// BoolLike reports whether the cell belongs to the recognized boolean token
// set, including the numeric encodings 0 and 1.
func (v Value) BoolLike() bool {
	switch v.Tag {
	case TagBool:
		return true
	case TagNumber:
		return v.Num == 0 || v.Num == 1
	case TagText:
		_, ok := booleanTokens[strings.ToLower(v.Str)]
		return ok
	}
	return false
}

// estimatedBytes approximates the in-memory footprint of one cell. The
// numbers only need to be stable across runs on the same data, not exact.
func (v Value) estimatedBytes() int64 {
	switch v.Tag {
	case TagNumber:
		return 8
	case TagText:
		return int64(len(v.Str)) + 16
	case TagTimestamp:
		return 24
	case TagBool:
		return 1
	}
	return 1
}

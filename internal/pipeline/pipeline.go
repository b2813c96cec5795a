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

// Package pipeline orchestrates the analysis run: classification, cleaning,
// outlier detection, and report building, in that order. Each stage is a
// pure function of its inputs; the pipeline holds no state across runs and
// returns either the full result or a single typed error, never a partial
// result. Expected data-quality conditions (missing values, unfillable
// columns, zero variance) are report content, not errors.
package pipeline

import (
	"github.com/GoogleCloudPlatform/dataset-insights/internal/classify"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/cleaner"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/outlier"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/report"
)

// Config is the immutable configuration bundle of one run. There is no
// ambient settings object: callers construct a Config and pass it in.
type Config struct {
	NormalizeNames  bool
	ImputeMissing   bool
	DropDuplicates  bool
	IQRMultiplier   float64
	ZScoreThreshold float64
	HistogramBins   int
}

// DefaultConfig enables every cleaning step with the conventional detection
// thresholds.
func DefaultConfig() Config {
	return Config{
		NormalizeNames:  true,
		ImputeMissing:   true,
		DropDuplicates:  true,
		IQRMultiplier:   1.5,
		ZScoreThreshold: 3,
		HistogramBins:   30,
	}
}

// Validate rejects configuration values outside their valid domain.
func (c Config) Validate() error {
	if c.IQRMultiplier <= 0 {
		return &ErrInvalidConfig{Field: "iqr_multiplier", Msg: "must be positive"}
	}
	if c.ZScoreThreshold <= 0 {
		return &ErrInvalidConfig{Field: "zscore_threshold", Msg: "must be positive"}
	}
	if c.HistogramBins <= 0 {
		return &ErrInvalidConfig{Field: "histogram_bins", Msg: "must be positive"}
	}
	return nil
}

// Result is the atomic outcome of one run.
type Result struct {
	Cleaned *dataset.Table
	Report  *report.Report
	Log     cleaner.ChangeLog
	Flags   []outlier.Flag
}

// Run executes the pipeline on one table. The input table is not modified;
// the caller keeps it for before/after presentation.
func Run(t *dataset.Table, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if t == nil || t.NumColumns() == 0 {
		return nil, &ErrEmptyInput{Msg: "table has no columns"}
	}
	if t.NumRows() == 0 {
		return nil, &ErrEmptyInput{Msg: "table has no rows"}
	}
	if err := t.Validate(); err != nil {
		return nil, &ErrStage{Stage: "classify", Msg: "input table is misaligned", Err: err}
	}

	kinds := classify.Columns(t)

	cleaned, log := cleaner.Clean(t, kinds, cleaner.Options{
		NormalizeNames: cfg.NormalizeNames,
		ImputeMissing:  cfg.ImputeMissing,
		DropDuplicates: cfg.DropDuplicates,
	})
	if cleaned.NumColumns() != t.NumColumns() {
		return nil, &ErrStage{Stage: "clean", Msg: "column count changed during cleaning"}
	}
	if err := cleaned.Validate(); err != nil {
		return nil, &ErrStage{Stage: "clean", Msg: "cleaned table is misaligned", Err: err}
	}

	// Classification is positional; detection and reporting key by name.
	// Cleaning never reorders columns and normalization has made the names
	// unique, so the kinds can be keyed onto the cleaned names here.
	cleanedKinds := make(map[string]dataset.Kind, len(kinds))
	for i := range cleaned.Columns {
		cleanedKinds[cleaned.Columns[i].Name] = kinds[i]
	}

	flags, summary := outlier.Detect(cleaned, cleanedKinds, outlier.Options{
		IQRMultiplier:   cfg.IQRMultiplier,
		ZScoreThreshold: cfg.ZScoreThreshold,
	})

	rep := report.Build(t, cleaned, cleanedKinds, summary, report.Options{
		HistogramBins: cfg.HistogramBins,
	})

	return &Result{Cleaned: cleaned, Report: rep, Log: log, Flags: flags}, nil
}

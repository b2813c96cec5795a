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
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/pipeline"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/utils"
)

var (
	cleanInput string
	cleanTable string
	cleanOut   string
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean a dataset and write the cleaned CSV",
	Long:  `Loads a dataset from a CSV file or a SQL table and writes the cleaned copy: normalized column names, imputed missing values, duplicates removed. Use analyze for the full statistical report.`,
	Example: `  dataset_insights clean --input data.csv
  dataset_insights clean --input data.csv --out tidy.csv --drop-duplicates=false`,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	analyzeInput, analyzeTable = cleanInput, cleanTable

	t, sourceName, err := loadInput(cmd.Context())
	if err != nil {
		return err
	}

	result, err := pipeline.Run(t, cfg.Pipeline())
	if err != nil {
		return err
	}

	outPath := cleanOut
	if outPath == "" {
		outPath = utils.DefaultCleanedPath(sourceName)
	}
	if err := writeCleanedCSV(outPath, result); err != nil {
		return err
	}

	logger.Info("cleaning complete",
		zap.String("source", sourceName),
		zap.Int("rows", result.Cleaned.NumRows()),
		zap.Int("cleaning_actions", len(result.Log)),
		zap.String("cleaned", outPath),
	)
	return nil
}

func init() {
	cleanCmd.Flags().StringVar(&cleanInput, "input", "", "Path to the input CSV file")
	cleanCmd.Flags().StringVar(&cleanTable, "table", "", `SQL table to clean, optionally with columns: "events[id,amount]"`)
	cleanCmd.Flags().StringVar(&cleanOut, "out", "", "Path for the cleaned CSV (default <input>_cleaned.csv)")
}

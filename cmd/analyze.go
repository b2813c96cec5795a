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
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/insights"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/pipeline"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/utils"
)

var (
	analyzeInput    string
	analyzeTable    string
	analyzeOut      string
	analyzeReport   string
	analyzeInsights bool
	analyzeContext  string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:     "analyze",
	Short:   "Clean a dataset, detect outliers, and write a statistical report",
	Long:    `Loads a dataset from a CSV file or a SQL table, runs the full cleaning and analysis pipeline, and writes the cleaned CSV plus a JSON report. With --insights it additionally asks Gemini for a short narrative analysis.`,
	Example: `  dataset_insights analyze --input data.csv --report data_report.json
  dataset_insights analyze --input data.csv --insights --context notes.txt
  dataset_insights analyze --dialect postgres --host localhost --port 5432 --username user --password pass --database mydb --table "events[id,amount]"`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	t, sourceName, err := loadInput(ctx)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(t, cfg.Pipeline())
	if err != nil {
		return err
	}

	outPath := analyzeOut
	if outPath == "" {
		outPath = utils.DefaultCleanedPath(sourceName)
	}
	if err := writeCleanedCSV(outPath, result); err != nil {
		return err
	}

	reportPath := analyzeReport
	if reportPath == "" {
		reportPath = utils.DefaultReportPath(sourceName)
	}
	if err := writeReportJSON(reportPath, result); err != nil {
		return err
	}

	logger.Info("analysis complete",
		zap.String("source", sourceName),
		zap.Int("rows", result.Report.Shape.Rows),
		zap.Int("columns", result.Report.Shape.Columns),
		zap.Int("outlier_flags", len(result.Flags)),
		zap.Int("cleaning_actions", len(result.Log)),
		zap.String("cleaned", outPath),
		zap.String("report", reportPath),
	)

	if analyzeInsights {
		text, err := generateInsights(ctx, result)
		if err != nil {
			return err
		}
		fmt.Println(text)
	}
	return nil
}

// loadInput reads the table from --input or --table and returns it with the
// name used to derive default output paths.
func loadInput(ctx context.Context) (*dataset.Table, string, error) {
	if analyzeInput != "" && analyzeTable != "" {
		return nil, "", fmt.Errorf("--input and --table are mutually exclusive")
	}

	if analyzeInput != "" {
		f, err := os.Open(analyzeInput)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		t, err := dataset.ReadCSV(f, cfg.Server.MaxUploadBytes)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse %s: %w", analyzeInput, err)
		}
		return t, analyzeInput, nil
	}

	if analyzeTable != "" {
		tableName, columns, err := utils.ParseTableFlag(analyzeTable)
		if err != nil {
			return nil, "", err
		}
		db, err := setupDatabase()
		if err != nil {
			return nil, "", err
		}
		defer db.Close()
		t, err := db.FetchTable(ctx, tableName, columns)
		if err != nil {
			return nil, "", err
		}
		return t, tableName + ".csv", nil
	}

	return nil, "", fmt.Errorf("either --input or --table is required")
}

func writeCleanedCSV(path string, result *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cleaned output file: %w", err)
	}
	defer f.Close()
	if err := dataset.WriteCSV(f, result.Cleaned); err != nil {
		return fmt.Errorf("failed to write cleaned csv: %w", err)
	}
	return nil
}

func writeReportJSON(path string, result *pipeline.Result) error {
	payload := struct {
		Report    interface{} `json:"report"`
		Changelog interface{} `json:"changelog"`
		Flags     interface{} `json:"outlier_flags"`
	}{
		Report:    result.Report,
		Changelog: result.Log,
		Flags:     result.Flags,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// generateInsights asks Gemini for a narrative over the finished report.
func generateInsights(ctx context.Context, result *pipeline.Result) (string, error) {
	if cfg.GeminiAPIKey == "" {
		return "", fmt.Errorf("--insights requires a Gemini API key (flag --gemini-api-key or GEMINI_API_KEY)")
	}

	llm, err := insights.NewClient(ctx, insights.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	if err != nil {
		return "", err
	}
	defer llm.Close()

	knowledgeContext, err := utils.ReadContextFiles(analyzeContext)
	if err != nil {
		return "", fmt.Errorf("failed to read context files: %w", err)
	}

	summary := insights.BuildSummary(result.Report, result.Log)
	return llm.GenerateInsights(ctx, summary, knowledgeContext)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "Path to the input CSV file")
	analyzeCmd.Flags().StringVar(&analyzeTable, "table", "", `SQL table to analyze, optionally with columns: "events[id,amount]"`)
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "Path for the cleaned CSV (default <input>_cleaned.csv)")
	analyzeCmd.Flags().StringVar(&analyzeReport, "report", "", "Path for the JSON report (default <input>_report.json)")
	analyzeCmd.Flags().BoolVar(&analyzeInsights, "insights", false, "Generate a narrative analysis with Gemini")
	analyzeCmd.Flags().StringVar(&analyzeContext, "context", "", "Comma-separated files with domain context for the narrative")
}

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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/config"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/source"
	_ "github.com/GoogleCloudPlatform/dataset-insights/internal/source/mysql"
	_ "github.com/GoogleCloudPlatform/dataset-insights/internal/source/postgres"
	_ "github.com/GoogleCloudPlatform/dataset-insights/internal/source/sqlserver"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	// Cleaning and detection flags
	normalizeNames  bool
	imputeMissing   bool
	dropDuplicates  bool
	iqrMultiplier   float64
	zscoreThreshold float64
	histogramBins   int

	// Database connection flags
	dialect                        string
	host                           string
	port                           int
	username                       string
	password                       string
	dbName                         string
	sslMode                        string
	cloudSQLInstanceConnectionName string
	cloudSQLUsePrivateIP           bool

	geminiAPIKey string
	geminiModel  string
)

var rootCmd = &cobra.Command{
	Use:   "dataset_insights",
	Short: "A tool to clean tabular datasets and report on their statistics",
	Long: `dataset_insights is a CLI tool that loads tabular data from CSV files or
SQL databases, cleans it (name normalization, missing-value imputation,
duplicate removal), detects outliers, and produces a statistical report with
optional AI-generated narrative insights.`,
	PersistentPreRunE: initFlagsAndConfig,
}

// initFlagsAndConfig builds the application config from the environment and
// overlays explicitly set command flags.
func initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	cfg = config.Load()

	flags := cmd.Flags()
	if flags.Changed("normalize-names") {
		cfg.Cleaning.NormalizeNames = normalizeNames
	}
	if flags.Changed("impute-missing") {
		cfg.Cleaning.ImputeMissing = imputeMissing
	}
	if flags.Changed("drop-duplicates") {
		cfg.Cleaning.DropDuplicates = dropDuplicates
	}
	if flags.Changed("iqr-multiplier") {
		cfg.Outliers.IQRMultiplier = iqrMultiplier
	}
	if flags.Changed("zscore-threshold") {
		cfg.Outliers.ZScoreThreshold = zscoreThreshold
	}
	if flags.Changed("histogram-bins") {
		cfg.Charts.HistogramBins = histogramBins
	}

	// Connection flags override whatever the environment provided, but an
	// unset flag must not blank out an env-supplied value.
	if dialect != "" {
		cfg.Database.Dialect = dialect
	}
	if host != "" {
		cfg.Database.Host = host
	}
	if port != 0 {
		cfg.Database.Port = port
	}
	if username != "" {
		cfg.Database.User = username
	}
	if password != "" {
		cfg.Database.Password = password
	}
	if dbName != "" {
		cfg.Database.DBName = dbName
	}
	if flags.Changed("sslmode") {
		cfg.Database.SSLMode = sslMode
	}
	if cloudSQLInstanceConnectionName != "" {
		cfg.Database.CloudSQLInstanceConnectionName = cloudSQLInstanceConnectionName
	}
	if flags.Changed("cloudsql-use-private-ip") {
		cfg.Database.UsePrivateIP = cloudSQLUsePrivateIP
	}

	if geminiAPIKey == "" {
		geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if geminiAPIKey != "" {
		cfg.GeminiAPIKey = geminiAPIKey
	}
	if flags.Changed("model") {
		cfg.GeminiModel = geminiModel
	}

	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func validateDialect(dialect string) error {
	supportedDialects := []string{"postgres", "cloudsqlpostgres", "mysql", "cloudsqlmysql", "sqlserver", "cloudsqlserver"}
	for _, supported := range supportedDialects {
		if dialect == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported dialect: %s (only %s are supported)", dialect, strings.Join(supportedDialects, ", "))
}

func setupDatabase() (*source.DB, error) {
	if err := validateDialect(cfg.Database.Dialect); err != nil {
		return nil, err
	}
	db, err := source.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.BoolVar(&normalizeNames, "normalize-names", true, "Normalize column names to snake_case")
	pf.BoolVar(&imputeMissing, "impute-missing", true, "Impute missing values (median for numeric, mode otherwise)")
	pf.BoolVar(&dropDuplicates, "drop-duplicates", true, "Remove duplicate rows, keeping the first occurrence")
	pf.Float64Var(&iqrMultiplier, "iqr-multiplier", 1.5, "IQR fence multiplier for outlier detection")
	pf.Float64Var(&zscoreThreshold, "zscore-threshold", 3, "Z-score threshold for outlier detection")
	pf.IntVar(&histogramBins, "histogram-bins", 30, "Number of bins in report histograms")

	pf.StringVar(&dialect, "dialect", "", fmt.Sprintf("Database dialect (%s)", strings.Join([]string{"postgres", "mysql", "sqlserver", "cloudsqlpostgres", "cloudsqlmysql", "cloudsqlserver"}, ", ")))
	pf.StringVar(&host, "host", "", "Database host")
	pf.IntVar(&port, "port", 0, "Database port")
	pf.StringVar(&username, "username", "", "Database username")
	pf.StringVar(&password, "password", "", "Database password")
	pf.StringVar(&dbName, "database", "", "Database name")
	pf.StringVar(&sslMode, "sslmode", "disable", "PostgreSQL SSL mode")
	pf.StringVar(&cloudSQLInstanceConnectionName, "cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	pf.BoolVar(&cloudSQLUsePrivateIP, "cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection")

	pf.StringVar(&geminiAPIKey, "gemini-api-key", "", "Gemini API key (can also be set via GEMINI_API_KEY environment variable)")
	pf.StringVar(&geminiModel, "model", "gemini-1.5-flash-latest", "Gemini model used for narrative insights")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(serveCmd)
}

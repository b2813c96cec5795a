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
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/pipeline"
)

// EnvPrefix namespaces the environment variables read by Load
// (e.g. DATASET_INSIGHTS_SERVER_PORT).
const EnvPrefix = "DATASET_INSIGHTS"

// Config holds all configuration for the application. Command flags may
// overwrite individual fields before the config is handed to a component.
type Config struct {
	Cleaning CleaningConfig
	Outliers OutlierConfig
	Charts   ChartConfig
	Server   ServerConfig
	Database DatabaseConfig

	GeminiAPIKey string
	GeminiModel  string
}

// CleaningConfig toggles the cleaning steps.
type CleaningConfig struct {
	NormalizeNames bool
	ImputeMissing  bool
	DropDuplicates bool
}

// OutlierConfig overrides the detection thresholds.
type OutlierConfig struct {
	IQRMultiplier   float64
	ZScoreThreshold float64
}

// ChartConfig tunes chart-ready report output.
type ChartConfig struct {
	HistogramBins int
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host           string
	Port           int
	MaxUploadBytes int64
}

// DatabaseConfig holds the connection settings for the optional SQL table
// source.
type DatabaseConfig struct {
	Dialect                        string
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
	MaxRows                        int
}

// Load builds the configuration from defaults and environment variables.
// GEMINI_API_KEY is additionally honored unprefixed in cmd, for parity with
// the other tools that use it.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("cleaning.normalize_names", true)
	v.SetDefault("cleaning.impute_missing", true)
	v.SetDefault("cleaning.drop_duplicates", true)
	v.SetDefault("outliers.iqr_multiplier", 1.5)
	v.SetDefault("outliers.zscore_threshold", 3.0)
	v.SetDefault("charts.histogram_bins", 30)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_bytes", int64(50<<20))
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_rows", 100000)
	v.SetDefault("gemini.model", "gemini-1.5-flash-latest")

	return &Config{
		Cleaning: CleaningConfig{
			NormalizeNames: v.GetBool("cleaning.normalize_names"),
			ImputeMissing:  v.GetBool("cleaning.impute_missing"),
			DropDuplicates: v.GetBool("cleaning.drop_duplicates"),
		},
		Outliers: OutlierConfig{
			IQRMultiplier:   v.GetFloat64("outliers.iqr_multiplier"),
			ZScoreThreshold: v.GetFloat64("outliers.zscore_threshold"),
		},
		Charts: ChartConfig{
			HistogramBins: v.GetInt("charts.histogram_bins"),
		},
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			MaxUploadBytes: v.GetInt64("server.max_upload_bytes"),
		},
		Database: DatabaseConfig{
			Dialect:                        v.GetString("database.dialect"),
			Host:                           v.GetString("database.host"),
			Port:                           v.GetInt("database.port"),
			User:                           v.GetString("database.user"),
			Password:                       v.GetString("database.password"),
			DBName:                         v.GetString("database.name"),
			SSLMode:                        v.GetString("database.sslmode"),
			CloudSQLInstanceConnectionName: v.GetString("database.cloudsql_instance_connection_name"),
			UsePrivateIP:                   v.GetBool("database.use_private_ip"),
			MaxRows:                        v.GetInt("database.max_rows"),
		},
		GeminiAPIKey: v.GetString("gemini.api_key"),
		GeminiModel:  v.GetString("gemini.model"),
	}
}

// Pipeline derives the immutable per-run pipeline configuration.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		NormalizeNames:  c.Cleaning.NormalizeNames,
		ImputeMissing:   c.Cleaning.ImputeMissing,
		DropDuplicates:  c.Cleaning.DropDuplicates,
		IQRMultiplier:   c.Outliers.IQRMultiplier,
		ZScoreThreshold: c.Outliers.ZScoreThreshold,
		HistogramBins:   c.Charts.HistogramBins,
	}
}

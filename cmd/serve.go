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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/insights"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/server"
)

var (
	serveHost string
	servePort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the HTTP analysis service",
	Long:    `Starts an HTTP server exposing the pipeline: POST /api/analyze returns the JSON report for an uploaded CSV, POST /api/clean returns the cleaned CSV, GET /healthz reports liveness.`,
	Example: `  dataset_insights serve --serve-port 8080`,
	RunE:    runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("serve-host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("serve-port") {
		cfg.Server.Port = servePort
	}

	var llm insights.LLMClient
	if cfg.GeminiAPIKey != "" {
		var err error
		llm, err = insights.NewClient(cmd.Context(), insights.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return err
		}
		defer llm.Close()
		logger.Info("insights enabled", zap.String("model", cfg.GeminiModel))
	} else {
		logger.Info("no Gemini API key configured, insights disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger, llm)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "serve-host", "0.0.0.0", "Address to listen on")
	serveCmd.Flags().IntVar(&servePort, "serve-port", 8080, "Port to listen on")
}

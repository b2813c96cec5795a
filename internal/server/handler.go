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
package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/dataset-insights/internal/cleaner"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/config"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/dataset"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/insights"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/outlier"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/pipeline"
	"github.com/GoogleCloudPlatform/dataset-insights/internal/report"
)

const previewRows = 10

// Handler serves the analysis endpoints.
type Handler struct {
	cfg    *config.Config
	logger *zap.Logger
	llm    insights.LLMClient
}

// NewHandler creates a handler. llm may be nil.
func NewHandler(cfg *config.Config, logger *zap.Logger, llm insights.LLMClient) *Handler {
	return &Handler{cfg: cfg, logger: logger, llm: llm}
}

// analyzeResponse is the JSON body of POST /api/analyze.
type analyzeResponse struct {
	OriginalShape report.Shape      `json:"original_shape"`
	CleanedShape  report.Shape      `json:"cleaned_shape"`
	Report        *report.Report    `json:"report"`
	Changelog     cleaner.ChangeLog `json:"changelog"`
	OutlierFlags  []outlier.Flag    `json:"outlier_flags"`
	Preview       tablePreview      `json:"preview"`
	Insights      string            `json:"insights,omitempty"`
}

// tablePreview carries the first rows of the cleaned table for display.
type tablePreview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// Analyze handles POST /api/analyze: multipart CSV in, full analysis out.
// ?insights=true additionally asks the model for a narrative when a client
// is configured.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	t, err := h.readUpload(w, r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := pipeline.Run(t, h.cfg.Pipeline())
	if err != nil {
		h.logger.Warn("analysis failed", zap.Error(err))
		renderError(w, r, statusForError(err), err)
		return
	}

	resp := analyzeResponse{
		OriginalShape: report.Shape{Rows: t.NumRows(), Columns: t.NumColumns()},
		CleanedShape:  result.Report.Shape,
		Report:        result.Report,
		Changelog:     result.Log,
		OutlierFlags:  result.Flags,
		Preview:       preview(result.Cleaned),
	}

	if wantInsights(r) && h.llm != nil {
		summary := insights.BuildSummary(result.Report, result.Log)
		text, err := h.llm.GenerateInsights(r.Context(), summary, "")
		if err != nil {
			// The report stands on its own; a narrative failure is logged
			// and the field left empty.
			h.logger.Warn("insights generation failed", zap.Error(err))
		} else {
			resp.Insights = text
		}
	}

	render.JSON(w, r, resp)
}

// Clean handles POST /api/clean: multipart CSV in, cleaned CSV back out.
func (h *Handler) Clean(w http.ResponseWriter, r *http.Request) {
	t, err := h.readUpload(w, r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := pipeline.Run(t, h.cfg.Pipeline())
	if err != nil {
		h.logger.Warn("cleaning failed", zap.Error(err))
		renderError(w, r, statusForError(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="cleaned.csv"`)
	if err := dataset.WriteCSV(w, result.Cleaned); err != nil {
		h.logger.Error("writing cleaned csv response", zap.Error(err))
	}
}

// readUpload extracts and parses the "file" part of a multipart upload,
// enforcing the size bound and the .csv extension check.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*dataset.Table, error) {
	maxBytes := h.cfg.Server.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = dataset.DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing or unreadable file upload: %w", err)
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		return nil, fmt.Errorf("unsupported file type %q, only .csv is accepted", filepath.Ext(header.Filename))
	}

	t, err := dataset.ReadCSV(file, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing csv upload: %w", err)
	}
	return t, nil
}

func preview(t *dataset.Table) tablePreview {
	p := tablePreview{Columns: t.Names()}
	n := t.NumRows()
	if n > previewRows {
		n = previewRows
	}
	for i := 0; i < n; i++ {
		row := make([]string, t.NumColumns())
		for c, v := range t.Row(i) {
			row[c] = v.String()
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

func wantInsights(r *http.Request) bool {
	v := strings.ToLower(r.URL.Query().Get("insights"))
	return v == "1" || v == "true" || v == "yes"
}

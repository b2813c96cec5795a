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

// Package insights turns a finished analysis report into a short narrative
// using the Gemini API. The narrative is advisory output layered on top of
// the report; a failure here never invalidates the report itself.
package insights

import (
	"context"
	"fmt"
	"log"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"
)

// geminiClient implements the LLMClient interface using the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	cfg    Config
}

// LLMClient defines the interface for interacting with a generative AI model.
type LLMClient interface {
	// GenerateInsights produces a short narrative analysis of the dataset
	// summary. knowledgeContext optionally carries domain notes supplied by
	// the caller; it may be empty.
	GenerateInsights(ctx context.Context, summary, knowledgeContext string) (string, error)

	// IsAPIKeyValid checks if the configured API key is functional.
	IsAPIKeyValid(ctx context.Context) error

	// Close cleans up any resources used by the client.
	Close() error
}

// Config holds configuration for the insights client.
type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg Config) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cannot create Gemini client: API key is missing")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash-latest"
		log.Printf("INFO: Gemini model not specified, defaulting to %s", cfg.Model)
	}

	return &geminiClient{
		client: client,
		cfg:    cfg,
	}, nil
}

// Close cleans up the underlying Gemini client.
func (c *geminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAPIKeyValid checks if the Gemini API key is valid by listing models.
func (c *geminiClient) IsAPIKeyValid(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("gemini client not initialized (likely missing API key)")
	}

	modelIterator := c.client.ListModels(ctx)
	_, err := modelIterator.Next() // Attempt to list one model
	if err != nil {
		if st, ok := status.FromError(err); ok {
			if st.Code() == 16 /* UNAUTHENTICATED */ || st.Code() == 7 /* PERMISSION_DENIED */ {
				return fmt.Errorf("invalid Gemini API key or insufficient permissions: %w", err)
			}
		}
		return fmt.Errorf("failed to verify Gemini API key by listing models: %w", err)
	}
	return nil
}

// GenerateInsights generates a narrative analysis using the Gemini API.
func (c *geminiClient) GenerateInsights(ctx context.Context, summary, knowledgeContext string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}
	if summary == "" {
		return "", nil
	}

	contextSection := ""
	if knowledgeContext != "" {
		contextSection = fmt.Sprintf(`
	********** Knowledge Context **********
	%s
	********** End Knowledge Context **********
`, knowledgeContext)
	}

	prompt := fmt.Sprintf(`
	You are a data analyst expert. Provide clear, concise insights about the dataset summarized below.
%s
	********** Dataset Summary **********
	%s
	********** End Dataset Summary **********

	**Instructions:**
	1. Analyze the dataset summary carefully.
	2. Provide a brief, insightful analysis highlighting:
	   - Key patterns or trends
	   - Potential data quality issues
	   - Notable outliers or anomalies
	   - Recommendations for further analysis
	3. Keep the response under 200 words and focus on actionable insights.
	4. Output ONLY the analysis text within <result></result> tags.

	Begin analysis:
	`, contextSection, summary)

	op := func(ctx context.Context) (string, error) {
		model := c.client.GenerativeModel(c.cfg.Model)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(400)
		model.SetTopP(0.9)
		model.SetTopK(40)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("Gemini API call failed: %w", err)
		}

		text, err := extractTextBetweenTags(resp, "<result>", "</result>")
		if err != nil {
			return "", fmt.Errorf("could not extract insights from Gemini response: %w", err)
		}
		return text, nil
	}

	text, err := withRetry(ctx, DefaultRetryOptions, op)
	if err != nil {
		return "", err
	}

	log.Printf("INFO: Generated dataset insights using model %s.", c.cfg.Model)
	return text, nil
}

// getFirstTextPart extracts the first text part from a Gemini response.
func getFirstTextPart(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if resp != nil && len(resp.Candidates) > 0 {
			finishReason = resp.Candidates[0].FinishReason.String()
		}
		return "", fmt.Errorf("empty or incomplete response from Gemini API. FinishReason: %s", finishReason)
	}
	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type: %T", part)
	}
	return string(text), nil
}

// extractTextBetweenTags extracts text between the first occurrence of startTag and endTag.
func extractTextBetweenTags(resp *genai.GenerateContentResponse, startTag, endTag string) (string, error) {
	fullText, err := getFirstTextPart(resp)
	if err != nil {
		return "", fmt.Errorf("failed to get text part: %w", err)
	}

	content, found := extractContentBetween(fullText, startTag, endTag)
	if !found {
		return "", fmt.Errorf("tags '%s' and '%s' not found in response", startTag, endTag)
	}
	return content, nil
}

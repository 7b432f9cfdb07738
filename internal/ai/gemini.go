// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// geminiImageClient implements ImageGenerator against the Gemini
// generateContent API (POST /v1beta/models/{model}:generateContent) with
// responseModalities requesting an image. The image comes back base64
// encoded inside a candidate part's inlineData.
type geminiImageClient struct {
	opts   ImageOptions
	client *http.Client
}

func (c *geminiImageClient) Name() string { return "gemini" }

// GenerateImage asks the model to produce an image for the prompt.
func (c *geminiImageClient) GenerateImage(ctx context.Context, prompt, model string) ([]byte, string, error) {
	key, err := c.opts.Key(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("gemini key lookup: %w", err)
	}
	if key == "" {
		return nil, "", &ConfigError{Reason: "image provider API key is not configured"}
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: "Generate an image of: " + prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("gemini marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.opts.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("gemini request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("gemini http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("gemini read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", &ProviderError{Provider: "gemini", Status: resp.StatusCode, Body: string(respBody)}
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, "", &MalformedResponseError{Provider: "gemini", Reason: "body is not valid JSON: " + err.Error()}
	}

	// The model may interleave text parts; the first inlineData part wins.
	for _, cand := range result.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				imgBytes, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, "", &MalformedResponseError{Provider: "gemini", Reason: "invalid base64 payload: " + err.Error()}
				}
				contentType := part.InlineData.MimeType
				if contentType == "" {
					contentType = "image/png"
				}
				return imgBytes, contentType, nil
			}
		}
	}

	return nil, "", &EmptyImageDataError{Provider: "gemini"}
}

// --- Gemini generateContent API types ---

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

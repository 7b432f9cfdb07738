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

// imagenClient implements ImageGenerator against the Imagen predictions API
// (POST /v1beta/models/{model}:predict). The request carries instances with
// the prompt; the response carries base64 image bytes per prediction.
type imagenClient struct {
	opts   ImageOptions
	client *http.Client
}

func (c *imagenClient) Name() string { return "imagen" }

// GenerateImage requests a single 1:1 image for the prompt.
func (c *imagenClient) GenerateImage(ctx context.Context, prompt, model string) ([]byte, string, error) {
	key, err := c.opts.Key(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("imagen key lookup: %w", err)
	}
	if key == "" {
		return nil, "", &ConfigError{Reason: "image provider API key is not configured"}
	}

	body := imagenRequest{
		Instances:  []imagenInstance{{Prompt: prompt}},
		Parameters: imagenParameters{SampleCount: 1, AspectRatio: "1:1"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("imagen marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predict", c.opts.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("imagen request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("imagen http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("imagen read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", &ProviderError{Provider: "imagen", Status: resp.StatusCode, Body: string(respBody)}
	}

	var result imagenResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, "", &MalformedResponseError{Provider: "imagen", Reason: "body is not valid JSON: " + err.Error()}
	}

	if len(result.Predictions) == 0 || result.Predictions[0].BytesBase64Encoded == "" {
		return nil, "", &EmptyImageDataError{Provider: "imagen"}
	}

	imgBytes, err := base64.StdEncoding.DecodeString(result.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, "", &MalformedResponseError{Provider: "imagen", Reason: "invalid base64 payload: " + err.Error()}
	}

	contentType := result.Predictions[0].MimeType
	if contentType == "" {
		contentType = "image/png"
	}
	return imgBytes, contentType, nil
}

// --- Imagen predictions API types ---

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio"`
}

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType,omitempty"`
}

type imagenResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
}

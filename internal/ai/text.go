// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// KeyFunc resolves the provider API key at call time. Keys live in the
// AppConfig record and may be rotated while jobs are in flight; resolving
// per call means a rotation applies to the next call without a restart.
type KeyFunc func(ctx context.Context) (string, error)

// StaticKey returns a KeyFunc that always yields the given key. Used in
// tests and for env-only deployments.
func StaticKey(key string) KeyFunc {
	return func(context.Context) (string, error) { return key, nil }
}

// Usage is the token accounting block returned with every text completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TextResult is the parsed outcome of one text generation call.
type TextResult struct {
	Content string
	Usage   Usage
	Model   string
}

// TextOptions configures a TextClient.
type TextOptions struct {
	Key         KeyFunc
	Model       string
	BaseURL     string        // defaults to the OpenAI API
	Temperature float64       // 0 means the API default
	Timeout     time.Duration // defaults to 60s
}

// TextClient calls an OpenAI-compatible chat completions endpoint
// (POST /chat/completions) requesting a JSON-object response.
type TextClient struct {
	opts   TextOptions
	client *http.Client
}

// NewTextClient creates a text client with the given options.
func NewTextClient(opts TextOptions) *TextClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &TextClient{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// GenerateText sends a chat completion request and returns the assistant's
// response text together with its usage block. The response_format hint asks
// the model for a single JSON object.
func (c *TextClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (*TextResult, error) {
	key, err := c.opts.Key(ctx)
	if err != nil {
		return nil, fmt.Errorf("text key lookup: %w", err)
	}
	if key == "" {
		return nil, &ConfigError{Reason: "text provider API key is not configured"}
	}

	body := chatRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    c.opts.Temperature,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("text marshal: %w", err)
	}

	url := c.opts.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("text request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("text http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("text read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: "text", Status: resp.StatusCode, Body: string(respBody)}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &MalformedResponseError{Provider: "text", Reason: "body is not valid JSON: " + err.Error()}
	}

	if len(result.Choices) == 0 {
		return nil, &MalformedResponseError{Provider: "text", Reason: "no choices returned"}
	}

	model := result.Model
	if model == "" {
		model = c.opts.Model
	}

	return &TextResult{
		Content: result.Choices[0].Message.Content,
		Usage:   result.Usage,
		Model:   model,
	}, nil
}

// --- OpenAI-compatible request/response types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

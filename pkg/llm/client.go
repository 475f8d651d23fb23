// Package llm adapts the Anthropic messages API as an explanation
// generator. It produces candidate prose only; the validation guard decides
// whether any of it reaches a user.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nikogura/cost-counsel/pkg/advisor"
	"github.com/pkg/errors"
)

const (
	// ClaudeAPIEndpoint is the Anthropic API endpoint.
	ClaudeAPIEndpoint = "https://api.anthropic.com/v1/messages"
	// ClaudeModel is the default model.
	ClaudeModel = "claude-sonnet-4-20250514"
	// ClaudeAPIVersion is the API version.
	ClaudeAPIVersion = "2023-06-01"
)

// Client is a Claude-backed advisor.Generator.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a new Claude API client.
func NewClient(apiKey, model string) (client *Client) {
	if model == "" {
		model = ClaudeModel
	}
	client = &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: ClaudeAPIEndpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	return client
}

// Explain generates explanatory prose for a computed result.
func (c *Client) Explain(ctx context.Context, req advisor.ExplainRequest) (text string, err error) {
	prompt := buildExplanationPrompt(req)

	var responseText string
	responseText, err = c.sendRequest(ctx, prompt)
	if err != nil {
		err = errors.Wrap(err, "explanation request failed")
		return text, err
	}

	text = strings.TrimSpace(stripMarkdownCodeFences(responseText))
	return text, err
}

// sendRequest sends one prompt to the Claude API.
func (c *Client) sendRequest(ctx context.Context, prompt string) (responseText string, err error) {
	claudeReq := ClaudeRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	var reqBody []byte
	reqBody, err = json.Marshal(claudeReq)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return responseText, err
	}

	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return responseText, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", ClaudeAPIVersion)

	var resp *http.Response
	resp, err = c.httpClient.Do(httpReq)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return responseText, err
	}
	defer resp.Body.Close()

	var respBody []byte
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return responseText, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		return responseText, err
	}

	var claudeResp ClaudeResponse
	err = json.Unmarshal(respBody, &claudeResp)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse Claude response: %s", string(respBody))
		return responseText, err
	}

	if len(claudeResp.Content) == 0 {
		err = errors.New("no content in Claude response")
		return responseText, err
	}

	responseText = claudeResp.Content[0].Text

	return responseText, err
}

// stripMarkdownCodeFences removes a wrapping markdown code fence, which
// models sometimes add despite instructions.
func stripMarkdownCodeFences(text string) (cleaned string) {
	cleaned = strings.TrimSpace(text)

	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	// Drop the opening fence line and a trailing fence.
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		cleaned = cleaned[idx+1:]
	} else {
		cleaned = ""
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	return cleaned
}

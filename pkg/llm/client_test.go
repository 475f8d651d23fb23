package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nikogura/cost-counsel/pkg/advisor"
	"github.com/nikogura/cost-counsel/pkg/guard"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-key", "")

	if client.apiKey != "test-key" {
		t.Errorf("expected apiKey to be 'test-key', got %s", client.apiKey)
	}

	if client.model != ClaudeModel {
		t.Errorf("expected default model %s, got %s", ClaudeModel, client.model)
	}

	if client.httpClient == nil {
		t.Error("expected httpClient to be initialized")
	}
}

func TestExplain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST request, got %s", r.Method)
		}

		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("expected X-Api-Key header to be 'test-key', got %s", r.Header.Get("X-Api-Key"))
		}

		if r.Header.Get("Anthropic-Version") != ClaudeAPIVersion {
			t.Errorf("expected Anthropic-Version header to be %s, got %s", ClaudeAPIVersion, r.Header.Get("Anthropic-Version"))
		}

		var req ClaudeRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			t.Errorf("failed to decode request: %s", err)
		}

		if len(req.Messages) != 1 {
			t.Errorf("expected 1 message, got %d", len(req.Messages))
		}

		if !strings.Contains(req.Messages[0].Content, "$4000.00") {
			t.Error("expected prompt to contain the protected amount")
		}

		response := ClaudeResponse{
			Content: []Content{
				{Type: "text", Text: "The costs payable are fixed at $4,000.00 under ORDER_21_APPX1_A1a."},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(response)
		if err != nil {
			t.Errorf("failed to encode response: %s", err)
		}
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model")
	client.endpoint = server.URL

	text, err := client.Explain(context.Background(), advisor.ExplainRequest{
		GroundTruth: guard.GroundTruth{
			Fields: []guard.ProtectedField{
				{Name: "total", Kind: guard.KindAmount, Number: 4000.00},
			},
			Citations: []string{"ORDER_21_APPX1_A1a"},
			Force:     guard.ForceMandatory,
		},
		NodeID: "appx1_a1a",
	})
	if err != nil {
		t.Fatalf("Explain failed: %s", err)
	}

	if !strings.Contains(text, "$4,000.00") {
		t.Errorf("expected explanation to carry the amount, got %q", text)
	}
}

func TestExplainAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model")
	client.endpoint = server.URL

	_, err := client.Explain(context.Background(), advisor.ExplainRequest{})
	if err == nil {
		t.Error("expected error for non-200 response")
	}

	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected error to carry the status code, got %s", err)
	}
}

func TestExplainEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model")
	client.endpoint = server.URL

	_, err := client.Explain(context.Background(), advisor.ExplainRequest{})
	if err == nil {
		t.Error("expected error for empty content")
	}
}

func TestStripMarkdownCodeFences(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no fences",
			input:    "plain text",
			expected: "plain text",
		},
		{
			name:     "plain fences",
			input:    "```\nsome text\n```",
			expected: "some text",
		},
		{
			name:     "fences with language tag",
			input:    "```text\nsome text\n```",
			expected: "some text",
		},
		{
			name:     "leading whitespace",
			input:    "  \n```\nsome text\n```\n ",
			expected: "some text",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual := stripMarkdownCodeFences(tc.input)
			if actual != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, actual)
			}
		})
	}
}

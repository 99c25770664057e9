package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGemini_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key query param = %q, want test-key", got)
		}

		var body geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if body.SystemInstruction == nil || len(body.SystemInstruction.Parts) == 0 {
			t.Error("request missing system instruction")
		}
		if body.GenerationConfig == nil || body.GenerationConfig.MaxOutputTokens != 10 {
			t.Errorf("generationConfig = %+v, want maxOutputTokens 10", body.GenerationConfig)
		}

		resp := geminiResponse{
			Candidates: []geminiCandidate{
				{Content: geminiContent{Parts: []geminiPart{{Text: "deployment "}, {Text: "ready"}}}},
			},
			UsageMetadata: geminiUsage{TotalTokenCount: 75},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	g := &Gemini{
		apiKey: "test-key",
		model:  "gemini-2.0-flash",
		client: &http.Client{
			Transport: &rewriteTransport{
				base:    server.Client().Transport,
				baseURL: server.URL,
			},
		},
	}

	resp, err := g.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "You predict deployment impact.",
		UserPrompt:   "two config files changed",
		MaxTokens:    10,
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	// Multi-part candidates are concatenated.
	if resp.Content != "deployment ready" {
		t.Errorf("Content = %q, want %q", resp.Content, "deployment ready")
	}
	if resp.TokensUsed != 75 {
		t.Errorf("TokensUsed = %d, want 75", resp.TokensUsed)
	}
}

package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropic_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Missing API key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_test",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "[]"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 100, "output_tokens": 10}
		}`))
	}))
	defer server.Close()

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("PRCOMPANION_ANTHROPIC_BASE_URL", server.URL)

	a, err := NewAnthropic("claude-sonnet-4-20250514")
	if err != nil {
		t.Fatalf("NewAnthropic error: %v", err)
	}

	resp, err := a.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
		MaxTokens:    10,
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("Content = %q, want %q", resp.Content, "[]")
	}
	if resp.TokensUsed != 110 {
		t.Errorf("TokensUsed = %d, want 110", resp.TokensUsed)
	}
}

func TestAnthropic_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(401)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	t.Setenv("ANTHROPIC_API_KEY", "bad-key")
	t.Setenv("PRCOMPANION_ANTHROPIC_BASE_URL", server.URL)

	a, err := NewAnthropic("claude-sonnet-4-20250514")
	if err != nil {
		t.Fatalf("NewAnthropic error: %v", err)
	}

	_, err = a.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err == nil {
		t.Fatal("Expected auth error")
	}
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
}

func TestNewAnthropic_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAnthropic("claude-sonnet-4-20250514"); err == nil {
		t.Fatal("Expected error when ANTHROPIC_API_KEY is unset")
	}
}

package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("unknown", "model")
	if err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNew_GoogleAlias(t *testing.T) {
	// "google" should map to Gemini but requires API key
	_, err := New("google", "gemini-2.0-flash")
	if err == nil {
		t.Skip("GEMINI_API_KEY is set, skipping missing key test")
	}
	// Error should be about missing key, not unknown provider
	if err.Error() == "unknown provider: google" {
		t.Error("'google' should be a valid provider alias for gemini")
	}
}

func TestAnthropic_Name(t *testing.T) {
	a := &Anthropic{model: "test"}
	if a.Name() != "anthropic" {
		t.Errorf("Name() = %q, want %q", a.Name(), "anthropic")
	}
}

func TestOpenAI_Name(t *testing.T) {
	o := &OpenAI{model: "test"}
	if o.Name() != "openai" {
		t.Errorf("Name() = %q, want %q", o.Name(), "openai")
	}
}

func TestGemini_Name(t *testing.T) {
	g := &Gemini{model: "test"}
	if g.Name() != "gemini" {
		t.Errorf("Name() = %q, want %q", g.Name(), "gemini")
	}
}

func TestAzure_Name(t *testing.T) {
	a := &Azure{model: "test"}
	if a.Name() != "azure" {
		t.Errorf("Name() = %q, want %q", a.Name(), "azure")
	}
}

func newTestAzure(t *testing.T, serverURL string) *Azure {
	t.Helper()
	t.Setenv("AI_FOUNDRY_ENDPOINT", serverURL)
	t.Setenv("AI_FOUNDRY_TOKEN", "test-token")
	a, err := NewAzure("gpt-4o")
	if err != nil {
		t.Fatalf("NewAzure error: %v", err)
	}
	return a
}

func TestAzure_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "test-token" {
			t.Error("Missing api-key header")
		}
		if !strings.Contains(r.URL.Path, "/openai/deployments/gpt-4o/") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: "[]"}},
			},
			Usage: openaiUsage{TotalTokens: 42},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	a := newTestAzure(t, server.URL)
	resp, err := a.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("Content = %q, want %q", resp.Content, "[]")
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", resp.TokensUsed)
	}
}

func TestAzure_ServerErrorNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(500)
		w.Write([]byte(`{"error":"internal server error"}`))
	}))
	defer server.Close()

	a := newTestAzure(t, server.URL)
	_, err := a.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err == nil {
		t.Fatal("expected error from 500 response")
	}
	var se *serverError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want serverError", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (server errors are not retried)", attempts)
	}
}

func TestAzure_DefaultMaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body openaiRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.MaxTokens != 4096 {
			t.Errorf("Default MaxTokens = %d, want 4096", body.MaxTokens)
		}
		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: "[]"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	a := newTestAzure(t, server.URL)
	_, err := a.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
		MaxTokens:    0, // should default to 4096
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
}

func TestNewAzure_MissingEndpoint(t *testing.T) {
	t.Setenv("AI_FOUNDRY_ENDPOINT", "")
	if _, err := NewAzure("gpt-4o"); err == nil {
		t.Fatal("Expected error when AI_FOUNDRY_ENDPOINT is unset")
	}
}

func TestOpenAI_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: ""}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "test-key",
		model:   "gpt-4o",
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := o.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openaiResponse{Choices: []openaiChoice{}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "test-key",
		model:   "gpt-4o",
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := o.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err == nil {
		t.Error("Expected error for no choices")
	}
}

func TestOpenAI_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "bad-key",
		model:   "gpt-4o",
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := o.Complete(context.Background(), CompletionRequest{
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

func TestOpenAI_ServerErrorNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(503)
		w.Write([]byte(`{"error":"service unavailable"}`))
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "test-key",
		model:   "gpt-4o",
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := o.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err == nil {
		t.Fatal("expected error from 503 response")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (server errors are not retried)", attempts)
	}
}

func TestGemini_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
		w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer server.Close()

	g := &Gemini{
		apiKey: "bad-key",
		model:  "gemini-2.0-flash",
		client: &http.Client{
			Transport: &rewriteTransport{
				base:    server.Client().Transport,
				baseURL: server.URL,
			},
		},
	}

	_, err := g.Complete(context.Background(), CompletionRequest{
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

func TestGemini_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := geminiResponse{Candidates: []geminiCandidate{}}
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

	_, err := g.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err == nil {
		t.Error("Expected error for no candidates")
	}
}

func TestIsAuthError(t *testing.T) {
	if IsAuthError(nil) {
		t.Error("nil should not be auth error")
	}
	if IsAuthError(&rateLimitError{}) {
		t.Error("rateLimitError should not be auth error")
	}
	if !IsAuthError(&authError{message: "test"}) {
		t.Error("authError should be auth error")
	}
}

func TestIsRetryable(t *testing.T) {
	if isRetryable(&authError{message: "test"}) {
		t.Error("authError should not be retryable")
	}
	if !isRetryable(&rateLimitError{}) {
		t.Error("rateLimitError should be retryable")
	}
	if isRetryable(&serverError{statusCode: 500}) {
		t.Error("serverError should not be retryable")
	}
	if isRetryable(context.Canceled) {
		t.Error("context.Canceled should not be retryable")
	}
}

func TestErrorMessages(t *testing.T) {
	rl := &rateLimitError{}
	if rl.Error() != "rate limited" {
		t.Errorf("rateLimitError.Error() = %q", rl.Error())
	}

	se := &serverError{statusCode: 500, body: "oops"}
	if se.Error() != "server error (status 500): oops" {
		t.Errorf("serverError.Error() = %q", se.Error())
	}

	ae := &authError{message: "bad key"}
	if ae.Error() != "authentication error: bad key" {
		t.Errorf("authError.Error() = %q", ae.Error())
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := retryWithBackoff(ctx, 3, func() error {
		return &rateLimitError{}
	})
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestRetryWithBackoff_NonRetryable(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), 3, func() error {
		attempts++
		return &authError{message: "bad"}
	})
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for auth error, got %d", attempts)
	}
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	err := retryWithBackoff(context.Background(), 3, func() error {
		return nil
	})
	if err != nil {
		t.Errorf("Expected nil error, got: %v", err)
	}
}

// rewriteTransport rewrites all request URLs to point at the test server.
type rewriteTransport struct {
	base    http.RoundTripper
	baseURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	req.URL.Host = t.baseURL[len("http://"):]
	if t.base != nil {
		return t.base.RoundTrip(req)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"AI_FOUNDRY_ENDPOINT", "AI_FOUNDRY_TOKEN", "AI_FOUNDRY_MODEL",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	}
	for _, v := range vars {
		t.Setenv(v, "")
	}
}

func TestDetect_NoCredentials(t *testing.T) {
	clearProviderEnv(t)
	if _, err := Detect("gpt-4o"); err == nil {
		t.Fatal("expected error when no provider credentials are set")
	}
}

func TestDetect_PicksFirstConfigured(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")

	p, err := Detect("gpt-4o")
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %q, want %q", p.Name(), "openai")
	}
}

func TestDetect_AzureWinsOverOpenAI(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("AI_FOUNDRY_ENDPOINT", "https://foundry.example.com")
	t.Setenv("AI_FOUNDRY_TOKEN", "test-token")

	p, err := Detect("gpt-4o")
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if p.Name() != "azure" {
		t.Errorf("Name() = %q, want %q", p.Name(), "azure")
	}
}

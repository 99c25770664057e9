//go:build integration

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// providerSpec defines a provider to test.
type providerSpec struct {
	name   string
	model  string
	envVar string // env var that must be set (empty for ollama)
}

var providerSpecs = []providerSpec{
	{"azure", "gpt-4o", "AI_FOUNDRY_ENDPOINT"},
	{"anthropic", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	{"openai", "gpt-4o-mini", "OPENAI_API_KEY"},
	{"gemini", "gemini-2.0-flash", "GEMINI_API_KEY"},
	{"ollama", "llama3", ""},
}

func skipIfEnvMissing(t *testing.T, envVar string) {
	t.Helper()
	if envVar == "" {
		return // no env var needed (e.g. ollama)
	}
	if os.Getenv(envVar) == "" {
		t.Skipf("skipping: %s not set", envVar)
	}
}

func skipIfOllamaUnavailable(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://localhost:11434/api/tags", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Skipf("skipping: ollama not reachable: %v", err)
	}
	resp.Body.Close()
}

func integrationContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	t.Cleanup(cancel)
	return ctx
}

// testSource is a small Go file with an obvious command injection vulnerability.
const testSource = `package cmd

import (
	"fmt"
	"os/exec"
)

func RunUserCommand(userInput string) (string, error) {
	cmd := exec.Command("bash", "-c", userInput)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("command failed: %w", err)
	}
	return string(out), nil
}
`

// qualitySystemPrompt is the quality-gate system prompt (duplicated here to
// avoid importing internal/analysis from internal/providers which would be a
// circular dependency in tests that share the same module).
const qualitySystemPrompt = `You are an expert code reviewer analyzing a pull request for quality issues.

Review the code changes and identify quality, security, maintainability, or performance issues.

You MUST respond with ONLY a JSON array:
[
  {
    "severity": "blocking|warning|advisory",
    "category": "Security|Code Quality|Performance|Maintainability|Best Practices",
    "message": "Description of the issue",
    "file": "path/to/file",
    "line": 42,
    "suggestion": "How to fix it"
  }
]

If there are no issues, respond with an empty array: []`

// testRawIssue mirrors analysis.QualityIssue for JSON parsing in the
// providers package without importing analysis.
type testRawIssue struct {
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Suggestion string `json:"suggestion"`
}

// parseIssuesFromContent parses AI content into testRawIssues, stripping
// markdown fences if present.
func parseIssuesFromContent(content string) ([]testRawIssue, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) >= 2 {
			start := 1
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			if start < end {
				content = strings.Join(lines[start:end], "\n")
			} else {
				content = "[]"
			}
		}
	}
	var issues []testRawIssue
	if err := json.Unmarshal([]byte(content), &issues); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w\ncontent: %s", err, content[:min(len(content), 500)])
	}
	return issues, nil
}

// validSeverities is the set of valid severity strings.
var validSeverities = map[string]bool{
	"blocking": true, "warning": true, "advisory": true,
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

// TestIntegration_Provider_BasicCompletion verifies that each provider returns
// non-empty content and a token count for a simple prompt.
func TestIntegration_Provider_BasicCompletion(t *testing.T) {
	for _, spec := range providerSpecs {
		spec := spec
		t.Run(spec.name, func(t *testing.T) {
			t.Parallel()
			skipIfEnvMissing(t, spec.envVar)
			if spec.name == "ollama" {
				skipIfOllamaUnavailable(t)
			}

			ctx := integrationContext(t)

			provider, err := New(spec.name, spec.model)
			if err != nil {
				t.Fatalf("New(%s, %s): %v", spec.name, spec.model, err)
			}

			resp, err := provider.Complete(ctx, CompletionRequest{
				SystemPrompt: "You are a helpful assistant.",
				UserPrompt:   "Reply with exactly: HELLO INTEGRATION TEST",
				MaxTokens:    256,
			})
			if err != nil {
				t.Fatalf("Complete() error: %v", err)
			}

			if resp.Content == "" {
				t.Fatal("expected non-empty response content")
			}
			if !strings.Contains(strings.ToUpper(resp.Content), "HELLO") {
				t.Logf("warning: response did not contain HELLO: %s", resp.Content)
			}
			t.Logf("provider=%s tokens=%d content_len=%d", spec.name, resp.TokensUsed, len(resp.Content))
		})
	}
}

// TestIntegration_Provider_StructuredIssues verifies that each provider
// returns parseable JSON issues when given the quality-gate system prompt and
// a vulnerable source file. It validates structure but not exact content
// (LLMs are non-deterministic).
func TestIntegration_Provider_StructuredIssues(t *testing.T) {
	userPrompt := fmt.Sprintf("Code changes:\n\n--- File: cmd/run.go (Language: go) ---\n%s\n", testSource)

	for _, spec := range providerSpecs {
		spec := spec
		t.Run(spec.name, func(t *testing.T) {
			t.Parallel()
			skipIfEnvMissing(t, spec.envVar)
			if spec.name == "ollama" {
				skipIfOllamaUnavailable(t)
			}

			ctx := integrationContext(t)

			provider, err := New(spec.name, spec.model)
			if err != nil {
				t.Fatalf("New(%s, %s): %v", spec.name, spec.model, err)
			}

			resp, err := provider.Complete(ctx, CompletionRequest{
				SystemPrompt: qualitySystemPrompt,
				UserPrompt:   userPrompt,
				MaxTokens:    4096,
			})
			if err != nil {
				t.Fatalf("Complete() error: %v", err)
			}

			issues, err := parseIssuesFromContent(resp.Content)
			if err != nil {
				t.Fatalf("failed to parse issues: %v", err)
			}

			t.Logf("provider=%s issues=%d tokens=%d", spec.name, len(issues), resp.TokensUsed)

			if len(issues) == 0 {
				t.Fatal("expected at least one issue for command injection source")
			}

			// Validate structure of each issue
			for i, iss := range issues {
				if iss.Message == "" {
					t.Errorf("issue[%d]: empty message", i)
				}
				if !validSeverities[iss.Severity] {
					t.Errorf("issue[%d]: invalid severity %q", i, iss.Severity)
				}
			}

			// Check if any issue mentions security/injection (warn, non-fatal)
			foundSecurity := false
			for _, iss := range issues {
				lower := strings.ToLower(iss.Category + " " + iss.Message)
				if strings.Contains(lower, "security") ||
					strings.Contains(lower, "injection") ||
					strings.Contains(lower, "command") {
					foundSecurity = true
					break
				}
			}
			if !foundSecurity {
				t.Log("warning: no issue explicitly mentions security/injection/command; the model may have categorized differently")
			}
		})
	}
}

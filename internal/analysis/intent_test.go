package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/emataei/pr-companion/internal/gitctx"
	"github.com/emataei/pr-companion/internal/providers"
)

// stubCompleter returns a canned response or error for AI analyzer tests.
type stubCompleter struct {
	content string
	err     error
}

func (s *stubCompleter) Complete(_ context.Context, _ providers.CompletionRequest) (providers.CompletionResponse, error) {
	if s.err != nil {
		return providers.CompletionResponse{}, s.err
	}
	return providers.CompletionResponse{Content: s.content, TokensUsed: 100}, nil
}

func (s *stubCompleter) Name() string { return "stub" }

func testLogger() zerolog.Logger { return zerolog.Nop() }

func TestClassify_AIResponse(t *testing.T) {
	provider := &stubCompleter{content: `{
		"primaryIntent": "feature",
		"confidence": 0.9,
		"secondaryIntents": [
			{"intent": "testing", "confidence": 0.6},
			{"intent": "bogus", "confidence": 0.5}
		],
		"reasoning": "Adds a new endpoint with tests",
		"affectedAreas": ["api"],
		"businessImpact": "New capability for users",
		"technicalDetails": "REST handler plus unit tests"
	}`}

	c := NewClassifier(provider, testLogger())
	changes := []gitctx.FileChange{
		{Path: "server/api/users.go", ChangeType: "added", LinesAdded: 50},
	}
	got := c.Classify(context.Background(), "Add users endpoint", "", changes)

	if got.PrimaryIntent != IntentFeature {
		t.Errorf("PrimaryIntent = %v, want feature", got.PrimaryIntent)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", got.Confidence)
	}
	if len(got.SecondaryIntents) != 1 || got.SecondaryIntents[0].Intent != IntentTesting {
		t.Errorf("SecondaryIntents = %v, want only testing (bogus filtered)", got.SecondaryIntents)
	}
	if got.Files.TotalFiles != 1 {
		t.Errorf("Files.TotalFiles = %d, want 1", got.Files.TotalFiles)
	}
}

func TestClassify_InvalidPrimaryFallsToMaintenance(t *testing.T) {
	provider := &stubCompleter{content: `{"primaryIntent": "wizardry", "confidence": 2.5}`}

	c := NewClassifier(provider, testLogger())
	got := c.Classify(context.Background(), "Do things", "", nil)

	if got.PrimaryIntent != IntentMaintenance {
		t.Errorf("PrimaryIntent = %v, want maintenance for invalid value", got.PrimaryIntent)
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want clamped to 1.0", got.Confidence)
	}
}

func TestClassify_FallbackOnProviderError(t *testing.T) {
	provider := &stubCompleter{err: errors.New("api down")}

	c := NewClassifier(provider, testLogger())
	got := c.Classify(context.Background(), "Fix broken login redirect", "", nil)

	if got.PrimaryIntent != IntentBugfix {
		t.Errorf("PrimaryIntent = %v, want bugfix from title pattern", got.PrimaryIntent)
	}
	if got.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", got.Confidence)
	}
}

func TestFallbackIntent(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		changes []gitctx.FileChange
		want    Intent
	}{
		{"bugfix title", "Fix crash on startup", nil, IntentBugfix},
		{"feature title", "Add dark mode", nil, IntentFeature},
		{"refactor title", "Refactor session handling", nil, IntentRefactor},
		{"docs title", "Update readme", nil, IntentDocumentation},
		{"dependency title", "Bump lodash to 4.17.21", nil, IntentDependency},
		{"security title", "Patch CVE-2024-1234", nil, IntentSecurity},
		{
			name:  "all test files",
			title: "misc",
			changes: []gitctx.FileChange{
				{Path: "a_test.go", IsTest: true},
				{Path: "b_test.go", IsTest: true},
			},
			want: IntentTesting,
		},
		{
			name:    "markdown only",
			title:   "misc",
			changes: []gitctx.FileChange{{Path: "docs/guide.md"}},
			want:    IntentDocumentation,
		},
		{"no signal", "misc", nil, IntentMaintenance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fallbackIntent(tt.title, "", tt.changes)
			if got.PrimaryIntent != tt.want {
				t.Errorf("fallbackIntent(%q) = %v, want %v", tt.title, got.PrimaryIntent, tt.want)
			}
		})
	}
}

func TestValidIntent(t *testing.T) {
	if !ValidIntent("feature") {
		t.Error("feature should be valid")
	}
	if ValidIntent("wizardry") {
		t.Error("wizardry should be invalid")
	}
}

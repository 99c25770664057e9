package analysis

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emataei/pr-companion/internal/gitctx"
	"github.com/emataei/pr-companion/internal/providers"
)

// Classifier determines the intent behind a change set, using AI when a
// provider is available and falling back to title and file heuristics.
type Classifier struct {
	provider providers.Completer
	log      zerolog.Logger
}

// NewClassifier creates a Classifier. The provider may be nil, in which case
// classification is purely rule-based.
func NewClassifier(p providers.Completer, log zerolog.Logger) *Classifier {
	return &Classifier{provider: p, log: log}
}

// Classify analyzes a change set and returns its intent classification.
// It never fails: AI errors degrade to the rule-based fallback.
func (c *Classifier) Classify(ctx context.Context, title, description string, changes []gitctx.FileChange) IntentResult {
	result, err := c.classifyAI(ctx, title, description, changes)
	if err != nil {
		c.log.Warn().Err(err).Msg("AI intent classification failed, using rule-based fallback")
		result = fallbackIntent(title, description, changes)
	}
	result.Files = Summarize(changes)
	if len(result.AffectedAreas) == 0 {
		result.AffectedAreas = AffectedAreas(changes)
	}
	return result
}

type rawIntent struct {
	PrimaryIntent    string  `json:"primaryIntent"`
	Confidence       float64 `json:"confidence"`
	SecondaryIntents []struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	} `json:"secondaryIntents"`
	Reasoning        string   `json:"reasoning"`
	AffectedAreas    []string `json:"affectedAreas"`
	BusinessImpact   string   `json:"businessImpact"`
	TechnicalDetails string   `json:"technicalDetails"`
}

func (c *Classifier) classifyAI(ctx context.Context, title, description string, changes []gitctx.FileChange) (IntentResult, error) {
	if c.provider == nil {
		return IntentResult{}, errNoProvider
	}

	resp, err := c.provider.Complete(ctx, providers.CompletionRequest{
		SystemPrompt: intentSystemPrompt,
		UserPrompt:   buildIntentPrompt(title, description, changes),
		MaxTokens:    1500,
		Temperature:  0.1,
	})
	if err != nil {
		return IntentResult{}, err
	}

	var raw rawIntent
	if err := extractJSON(resp.Content, &raw); err != nil {
		return IntentResult{}, err
	}

	result := IntentResult{
		PrimaryIntent:    IntentMaintenance,
		Confidence:       ClampConfidence(raw.Confidence),
		Reasoning:        raw.Reasoning,
		AffectedAreas:    raw.AffectedAreas,
		BusinessImpact:   raw.BusinessImpact,
		TechnicalDetails: raw.TechnicalDetails,
	}
	if primary := strings.ToLower(raw.PrimaryIntent); ValidIntent(primary) {
		result.PrimaryIntent = Intent(primary)
	}
	for _, s := range raw.SecondaryIntents {
		intent := strings.ToLower(s.Intent)
		if !ValidIntent(intent) {
			continue
		}
		result.SecondaryIntents = append(result.SecondaryIntents, WeightedIntent{
			Intent:     Intent(intent),
			Confidence: ClampConfidence(s.Confidence),
		})
	}
	return result, nil
}

// Title keyword patterns for the rule-based fallback, checked in order.
var intentTitlePatterns = []struct {
	intent     Intent
	confidence float64
	words      []string
}{
	{IntentBugfix, 0.7, []string{"fix", "bug", "issue", "error", "broken"}},
	{IntentFeature, 0.7, []string{"add", "new", "feature", "implement"}},
	{IntentRefactor, 0.7, []string{"refactor", "restructure", "reorganize"}},
	{IntentSecurity, 0.7, []string{"security", "vulnerability", "cve"}},
	{IntentPerformance, 0.6, []string{"perf", "performance", "optimize", "speed"}},
	{IntentDependency, 0.6, []string{"bump", "upgrade", "dependency", "deps"}},
	{IntentTesting, 0.6, []string{"test", "testing", "spec"}},
	{IntentDocumentation, 0.8, []string{"docs", "documentation", "readme"}},
}

// fallbackIntent is the rule-based classification used when AI is
// unavailable or returns unusable output.
func fallbackIntent(title, description string, changes []gitctx.FileChange) IntentResult {
	titleLower := strings.ToLower(title)

	primary := Intent("")
	confidence := 0.0
	for _, p := range intentTitlePatterns {
		if hasAny(titleLower, p.words...) {
			primary = p.intent
			confidence = p.confidence
			break
		}
	}

	if primary == "" {
		switch {
		case len(changes) > 0 && allTests(changes):
			primary, confidence = IntentTesting, 0.6
		case anyMarkdown(changes):
			primary, confidence = IntentDocumentation, 0.6
		default:
			primary, confidence = IntentMaintenance, 0.4
		}
	}

	areas := AffectedAreas(changes)
	return IntentResult{
		PrimaryIntent:    primary,
		Confidence:       confidence,
		Reasoning:        "Rule-based classification from PR title and file patterns",
		AffectedAreas:    areas,
		BusinessImpact:   "Analysis requires AI capability for detailed assessment",
		TechnicalDetails: "File-based analysis indicates changes in " + strings.Join(areas, ", "),
	}
}

func allTests(changes []gitctx.FileChange) bool {
	for _, c := range changes {
		if !c.IsTest {
			return false
		}
	}
	return true
}

func anyMarkdown(changes []gitctx.FileChange) bool {
	for _, c := range changes {
		if strings.HasSuffix(strings.ToLower(c.Path), ".md") {
			return true
		}
	}
	return false
}

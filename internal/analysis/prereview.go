package analysis

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emataei/pr-companion/internal/providers"
)

const manualReviewRequired = "Manual review required"

// PreReviewer builds the reviewer-facing overview: file categories,
// keyword-based risk assessment, and an AI summary of the change.
type PreReviewer struct {
	provider providers.Completer
	keywords RiskKeywords
	log      zerolog.Logger
}

// NewPreReviewer creates a PreReviewer. The provider may be nil, in which
// case the AI sections carry a manual-review placeholder.
func NewPreReviewer(p providers.Completer, kw RiskKeywords, log zerolog.Logger) *PreReviewer {
	return &PreReviewer{provider: p, keywords: kw, log: log}
}

// Analyze produces the pre-review report for the given change. quality and
// cognitive are optional upstream results folded into the report.
func (r *PreReviewer) Analyze(ctx context.Context, files []string, diff string, quality *QualityResult, cognitive *CognitiveScore) PreReviewReport {
	if len(files) == 0 {
		return PreReviewReport{
			RiskLevel:      RiskNone,
			RiskFactors:    []string{},
			FileCategories: map[string][]string{},
			AI: AISummary{
				Summary:          "No changes to analyze",
				BusinessImpact:   "None",
				TechnicalChanges: "None",
				PotentialIssues:  "None",
			},
			Quality:   quality,
			Cognitive: cognitive,
		}
	}

	riskLevel, riskFactors := AssessRisk(files, diff, r.keywords)
	riskLevel = adjustRiskWithCognitive(riskLevel, riskFactors, cognitive, r.log)

	return PreReviewReport{
		RiskLevel:      riskLevel,
		RiskFactors:    riskFactors,
		FileCategories: CategorizeFiles(files),
		FileCount:      len(files),
		AI:             r.summarize(ctx, diff, files, quality),
		Quality:        quality,
		Cognitive:      cognitive,
	}
}

// adjustRiskWithCognitive downgrades a HIGH keyword-based risk to MEDIUM
// when the cognitive analysis found the change trivially simple and the risk
// comes mostly from keyword matches rather than structurally risky files.
func adjustRiskWithCognitive(level RiskLevel, factors []string, cognitive *CognitiveScore, log zerolog.Logger) RiskLevel {
	if cognitive == nil || level != RiskHigh {
		return level
	}
	if cognitive.Tier != 0 || cognitive.TotalScore >= 25 {
		return level
	}

	keywordRisks, structuralRisks := 0, 0
	for _, f := range factors {
		switch {
		case strings.Contains(f, "High-risk code change detected"):
			keywordRisks++
		case strings.Contains(f, "High-risk file") && !strings.Contains(strings.ToLower(f), "database"):
			structuralRisks++
		}
	}
	if keywordRisks > structuralRisks {
		log.Info().
			Int("tier", cognitive.Tier).
			Int("score", cognitive.TotalScore).
			Msg("downgrading risk from HIGH to MEDIUM based on cognitive analysis")
		return RiskMedium
	}
	return level
}

func (r *PreReviewer) summarize(ctx context.Context, diff string, files []string, quality *QualityResult) AISummary {
	if r.provider == nil {
		return AISummary{
			Summary:          "AI analysis not available",
			BusinessImpact:   manualReviewRequired,
			TechnicalChanges: manualReviewRequired,
			PotentialIssues:  manualReviewRequired,
		}
	}

	resp, err := r.provider.Complete(ctx, providers.CompletionRequest{
		SystemPrompt: summarySystemPrompt,
		UserPrompt:   buildSummaryPrompt(diff, files, quality),
		MaxTokens:    1000,
		Temperature:  0.3,
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("AI summary generation failed")
		return AISummary{
			Summary:          "AI analysis failed",
			BusinessImpact:   manualReviewRequired,
			TechnicalChanges: manualReviewRequired,
			PotentialIssues:  manualReviewRequired,
		}
	}
	return parseSummarySections(resp.Content)
}

// Section header keywords, checked against lowercased lines.
var summarySectionPatterns = []struct {
	section  string
	keywords []string
}{
	{"business_impact", []string{"business impact"}},
	{"technical_changes", []string{"technical changes"}},
	{"potential_issues", []string{"risk assessment", "potential issues"}},
	{"summary", []string{"plain-english summary", "summary"}},
}

// parseSummarySections splits the AI response into the four named sections,
// falling back to a truncated blob when no headers are recognizable.
func parseSummarySections(content string) AISummary {
	sections := map[string]string{}

	current := ""
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if section := identifySection(line); section != "" {
			current = section
			continue
		}
		if current == "" {
			continue
		}
		clean := strings.TrimSpace(strings.NewReplacer("**", "", "*", "", "-", "").Replace(line))
		if clean == "" {
			continue
		}
		if sections[current] != "" {
			sections[current] += " " + clean
		} else {
			sections[current] = clean
		}
	}

	if len(sections) == 0 {
		summary := content
		if len(summary) > 300 {
			summary = summary[:300] + "..."
		}
		return AISummary{
			Summary:          summary,
			BusinessImpact:   "See summary above",
			TechnicalChanges: "See summary above",
			PotentialIssues:  "Manual review recommended",
		}
	}

	return AISummary{
		Summary:          sections["summary"],
		BusinessImpact:   sections["business_impact"],
		TechnicalChanges: sections["technical_changes"],
		PotentialIssues:  sections["potential_issues"],
	}
}

func identifySection(line string) string {
	lower := strings.ToLower(line)
	for _, p := range summarySectionPatterns {
		if hasAny(lower, p.keywords...) {
			return p.section
		}
	}
	return ""
}

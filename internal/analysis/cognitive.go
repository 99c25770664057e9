package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emataei/pr-companion/internal/providers"
)

// Score bounds and tier thresholds.
const (
	impactScoreMax = 30
	aiScoreMax     = 30

	tier0Threshold = 35 // auto-merge
	tier1Threshold = 65 // standard review

	importsPerPoint  = 5
	importsMaxPoints = 5
	databaseAPIBonus = 3

	complexPatternPoints = 5
	businessLogicPoints  = 3
	dataStructurePoints  = 2

	autoMergeMaxFiles = 5
)

// File path weights for the impact score, checked in order.
var fileImpactWeights = []struct {
	pattern string
	weight  int
}{
	{"migration", 10},
	{"schema", 10},
	{"payment", 9},
	{"api", 8},
	{"security", 8},
	{"config", 6},
	{"test", 2},
	{"doc", 1},
}

// Paths matching these never auto-merge regardless of score.
var autoMergeBlockedPatterns = []string{"migration", "schema", "security", "payment"}

var importLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*import\s+`),
	regexp.MustCompile(`^\s*from\s+.*\s+import`),
	regexp.MustCompile(`^\s*#include\s+`),
	regexp.MustCompile(`^\s*using\s+`),
	regexp.MustCompile(`^\s*require\s*\(`),
}

// Scorer computes the tiered cognitive complexity score that routes a
// change set to auto-merge, standard review, or expert review.
type Scorer struct {
	provider providers.Completer
	log      zerolog.Logger

	tier0Max     int
	tier1Max     int
	maxAutoFiles int
	blockedPaths []string
}

// NewScorer creates a Scorer. The provider may be nil, in which case the AI
// component falls back to pattern heuristics.
func NewScorer(p providers.Completer, log zerolog.Logger) *Scorer {
	return &Scorer{
		provider:     p,
		log:          log,
		tier0Max:     tier0Threshold,
		tier1Max:     tier1Threshold,
		maxAutoFiles: autoMergeMaxFiles,
		blockedPaths: autoMergeBlockedPatterns,
	}
}

// ScoringPolicy holds repo-level overrides for tier thresholds and the
// auto-merge rule.
type ScoringPolicy struct {
	Tier0Max              int
	Tier1Max              int
	AutoMergeMaxFiles     int
	AutoMergeBlockedPaths []string
}

// SetPolicy applies threshold overrides. Zero-valued fields keep the
// built-in defaults.
func (s *Scorer) SetPolicy(p ScoringPolicy) {
	if p.Tier0Max > 0 {
		s.tier0Max = p.Tier0Max
	}
	if p.Tier1Max > 0 {
		s.tier1Max = p.Tier1Max
	}
	if p.AutoMergeMaxFiles > 0 {
		s.maxAutoFiles = p.AutoMergeMaxFiles
	}
	if len(p.AutoMergeBlockedPaths) > 0 {
		s.blockedPaths = p.AutoMergeBlockedPaths
	}
}

// Score analyzes the given files and returns the cognitive score with tier
// assignment. qualityPenalty comes from the quality gate and is added to
// the total before tier thresholds apply.
func (s *Scorer) Score(ctx context.Context, files []SourceFile, qualityPenalty int) CognitiveScore {
	metrics := make([]FileMetrics, 0, len(files))
	staticScore := 0
	for _, f := range files {
		m := AnalyzeComplexity(f)
		metrics = append(metrics, m)
		staticScore += m.TotalScore
	}
	if staticScore > staticScoreMax {
		staticScore = staticScoreMax
	}

	impactScore := impactScoreOf(files)
	aiScore := s.aiScore(ctx, files)
	total := staticScore + impactScore + aiScore + qualityPenalty

	tier := tierFor(total, s.tier0Max, s.tier1Max)
	if tier == 0 && !s.autoMergeEligible(files, metrics, total) {
		tier = 1
	}

	return CognitiveScore{
		StaticScore:    staticScore,
		ImpactScore:    impactScore,
		AIScore:        aiScore,
		QualityPenalty: qualityPenalty,
		TotalScore:     total,
		Tier:           tier,
		Reasoning:      scoreReasoning(staticScore, impactScore, aiScore, qualityPenalty),
		Categories:     complexityCategories(files, total),
		FileMetrics:    metrics,
	}
}

// impactScoreOf estimates blast radius from file types, import counts, and
// database/API touchpoints.
func impactScoreOf(files []SourceFile) int {
	score := 0
	for _, f := range files {
		path := strings.ToLower(f.Path)
		for _, fw := range fileImpactWeights {
			if strings.Contains(path, fw.pattern) {
				score += fw.weight
				break
			}
		}

		imports := countImports(f.Content)
		score += min(imports/importsPerPoint, importsMaxPoints)

		content := strings.ToLower(f.Content)
		if hasAny(content, "database", "db.", "api.", "fetch(", "axios") {
			score += databaseAPIBonus
		}
	}
	return min(score, impactScoreMax)
}

func countImports(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		for _, p := range importLinePatterns {
			if p.MatchString(line) {
				count++
				break
			}
		}
	}
	return count
}

func (s *Scorer) aiScore(ctx context.Context, files []SourceFile) int {
	if s.provider == nil {
		return heuristicAIScore(files)
	}

	var combined strings.Builder
	for i, f := range files {
		if i == 3 {
			break
		}
		combined.WriteString(f.Content)
		combined.WriteString("\n")
	}
	code := combined.String()
	if len(code) > 2000 {
		code = code[:2000]
	}

	resp, err := s.provider.Complete(ctx, providers.CompletionRequest{
		UserPrompt:  fmt.Sprintf(cognitivePromptTemplate, code),
		MaxTokens:   10,
		Temperature: 0.1,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("AI cognitive scoring failed, using heuristic fallback")
		return heuristicAIScore(files)
	}

	score, err := extractNumber(resp.Content)
	if err != nil {
		s.log.Warn().Err(err).Msg("unparseable AI cognitive score, using heuristic fallback")
		return heuristicAIScore(files)
	}
	if score < 0 {
		return 0
	}
	return min(score, aiScoreMax)
}

// heuristicAIScore approximates comprehension difficulty with content
// pattern matching when AI is unavailable.
func heuristicAIScore(files []SourceFile) int {
	score := 0
	for _, f := range files {
		content := strings.ToLower(f.Content)

		if hasAny(content, "algorithm", "recursive", "optimization", "performance",
			"threading", "async", "promise", "callback") {
			score += complexPatternPoints
		}
		if hasAny(content, "pricing", "payment", "billing", "discount", "tax",
			"inventory", "order", "subscription") {
			score += businessLogicPoints
		}
		if hasAny(content, "nested", "recursive", "tree", "graph", "matrix") {
			score += dataStructurePoints
		}
	}
	return min(score, aiScoreMax)
}

func assignTier(total int) int {
	return tierFor(total, tier0Threshold, tier1Threshold)
}

func tierFor(total, tier0Max, tier1Max int) int {
	switch {
	case total <= tier0Max:
		return 0
	case total <= tier1Max:
		return 1
	default:
		return 2
	}
}

// autoMergeEligible applies the safety checks beyond the score threshold:
// small change sets only, no high-impact paths, no individually complex file.
func (s *Scorer) autoMergeEligible(files []SourceFile, metrics []FileMetrics, total int) bool {
	if total > s.tier0Max {
		return false
	}
	if len(files) > s.maxAutoFiles {
		return false
	}
	for _, f := range files {
		if hasAny(strings.ToLower(f.Path), s.blockedPaths...) {
			return false
		}
	}
	for _, m := range metrics {
		if m.TotalScore > complexFileThreshold {
			return false
		}
	}
	return true
}

func scoreReasoning(static, impact, ai, qualityPenalty int) string {
	var reasons []string
	if static > 20 {
		reasons = append(reasons, fmt.Sprintf("High static complexity (%d/40)", static))
	}
	if impact > 15 {
		reasons = append(reasons, fmt.Sprintf("Significant impact surface (%d/30)", impact))
	}
	if ai > 20 {
		reasons = append(reasons, fmt.Sprintf("AI flagged as complex (%d/30)", ai))
	}
	if qualityPenalty > 0 {
		reasons = append(reasons, fmt.Sprintf("Quality penalty applied (+%d)", qualityPenalty))
	}
	if len(reasons) == 0 {
		return "Low complexity change, suitable for automated review"
	}
	return "Requires human review: " + strings.Join(reasons, ", ")
}

// complexityCategories grades the change across the four complexity
// dimensions from keyword indicators, scaled up for high-scoring changes.
func complexityCategories(files []SourceFile, total int) ComplexityCategories {
	var architectural, logical, integration, domain int

	for _, f := range files {
		content := strings.ToLower(f.Content)
		path := strings.ToLower(f.Path)

		if hasAny(path, "config", "setup", "architecture", "infrastructure") {
			architectural += 2
		}
		if hasAny(content, "class ", "interface", "abstract", "extends", "implements") {
			architectural++
		}

		if hasAny(content, "if ", "for ", "while ", "switch", "case") {
			logical++
		}
		if hasAny(content, "algorithm", "recursive", "optimize", "complex") {
			logical += 2
		}

		if hasAny(content, "import ", "require(", "api", "http", "request") {
			integration++
		}
		if hasAny(path, "api", "service", "client", "integration") {
			integration += 2
		}

		if hasAny(path, "business", "domain", "model", "entity") {
			domain += 2
		}
		if hasAny(content, "business", "domain", "rule", "policy") {
			domain++
		}
	}

	multiplier := 1.0
	switch {
	case total > 50:
		multiplier = 1.5
	case total > 30:
		multiplier = 1.2
	}

	return ComplexityCategories{
		Architectural: complexityLevel(float64(architectural)*multiplier, 2, 4),
		Logical:       complexityLevel(float64(logical)*multiplier, 3, 6),
		Integration:   complexityLevel(float64(integration)*multiplier, 2, 5),
		Domain:        complexityLevel(float64(domain)*multiplier, 2, 4),
	}
}

func complexityLevel(score float64, mid, high float64) string {
	switch {
	case score >= high*2:
		return "CRITICAL"
	case score >= high:
		return "HIGH"
	case score >= mid:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emataei/pr-companion/internal/gitctx"
	"github.com/emataei/pr-companion/internal/providers"
)

// Predictor forecasts the downstream effects of a change set. It combines
// rule-based predictions for well-known risk patterns with AI predictions,
// then derives test recommendations and a deployment readiness verdict.
type Predictor struct {
	provider providers.Completer
	log      zerolog.Logger
}

// NewPredictor creates a Predictor. The provider may be nil, in which case
// predictions are purely rule-based.
func NewPredictor(p providers.Completer, log zerolog.Logger) *Predictor {
	return &Predictor{provider: p, log: log}
}

// Predict analyzes a change set and returns the full impact report.
func (p *Predictor) Predict(ctx context.Context, title, description string, changes []gitctx.FileChange) ImpactReport {
	impacts := ruleImpacts(changes)

	aiImpacts, err := p.predictAI(ctx, title, description, changes)
	if err != nil {
		p.log.Warn().Err(err).Msg("AI impact prediction failed, using rule-based predictions only")
	}
	impacts = mergeImpacts(impacts, aiImpacts)

	sort.SliceStable(impacts, func(i, j int) bool {
		return SeverityRank(impacts[i].Severity) > SeverityRank(impacts[j].Severity)
	})

	risk := riskScore(impacts)
	return ImpactReport{
		Impacts:                impacts,
		TestRecommendations:    testRecommendations(changes, impacts),
		RiskScore:              risk,
		DeploymentReadiness:    deploymentReadiness(risk, impacts),
		MonitoringSuggestions:  monitoringSuggestions(impacts),
		RollbackConsiderations: rollbackConsiderations(changes, impacts),
		Summary:                impactSummary(impacts, risk),
	}
}

type rawImpact struct {
	Category             string   `json:"category"`
	Severity             string   `json:"severity"`
	Description          string   `json:"description"`
	Confidence           float64  `json:"confidence"`
	AffectedComponents   []string `json:"affectedComponents"`
	RecommendedActions   []string `json:"recommendedActions"`
	RiskFactors          []string `json:"riskFactors"`
	MitigationStrategies []string `json:"mitigationStrategies"`
}

func (p *Predictor) predictAI(ctx context.Context, title, description string, changes []gitctx.FileChange) ([]ImpactPrediction, error) {
	if p.provider == nil {
		return nil, errNoProvider
	}

	resp, err := p.provider.Complete(ctx, providers.CompletionRequest{
		SystemPrompt: impactSystemPrompt,
		UserPrompt:   buildImpactPrompt(title, description, changes, AffectedAreas(changes)),
		MaxTokens:    2000,
		Temperature:  0.2,
	})
	if err != nil {
		return nil, err
	}

	var raw []rawImpact
	if err := extractJSON(resp.Content, &raw); err != nil {
		return nil, err
	}

	var impacts []ImpactPrediction
	for _, r := range raw {
		category := ImpactCategory(strings.ToLower(r.Category))
		if !validImpactCategory(category) {
			category = ImpactMaintainability
		}
		severity := ImpactSeverity(strings.ToLower(r.Severity))
		if SeverityRank(severity) == 0 {
			severity = ImpactLow
		}
		impacts = append(impacts, ImpactPrediction{
			Category:             category,
			Severity:             severity,
			Description:          r.Description,
			Confidence:           ClampConfidence(r.Confidence),
			AffectedComponents:   r.AffectedComponents,
			RecommendedActions:   r.RecommendedActions,
			RiskFactors:          r.RiskFactors,
			MitigationStrategies: r.MitigationStrategies,
		})
	}
	return impacts, nil
}

func validImpactCategory(c ImpactCategory) bool {
	switch c {
	case ImpactPerformance, ImpactSecurity, ImpactCompatibility, ImpactUserExperience,
		ImpactDataIntegrity, ImpactReliability, ImpactMaintainability, ImpactTesting,
		ImpactDeployment, ImpactExternalDeps:
		return true
	}
	return false
}

// ruleImpacts generates predictions for well-known high-risk file patterns.
func ruleImpacts(changes []gitctx.FileChange) []ImpactPrediction {
	var impacts []ImpactPrediction
	seen := make(map[ImpactCategory]bool)

	for _, c := range changes {
		path := strings.ToLower(c.Path)

		if !seen[ImpactDataIntegrity] && hasAny(path, "/migration", ".sql", "/schema") {
			seen[ImpactDataIntegrity] = true
			impacts = append(impacts, ImpactPrediction{
				Category:             ImpactDataIntegrity,
				Severity:             ImpactHigh,
				Description:          "Database schema changes require careful testing",
				Confidence:           0.9,
				AffectedComponents:   []string{"database", "data layer"},
				RecommendedActions:   []string{"Database migration testing", "Backup verification"},
				RiskFactors:          []string{"Data corruption", "Downtime during migration"},
				MitigationStrategies: []string{"Rollback plan", "Staged deployment", "Data backup"},
			})
		}
		if !seen[ImpactSecurity] && hasAny(path, "/auth", "login", "password", "security") {
			seen[ImpactSecurity] = true
			impacts = append(impacts, ImpactPrediction{
				Category:             ImpactSecurity,
				Severity:             ImpactHigh,
				Description:          "Authentication changes require security review",
				Confidence:           0.85,
				AffectedComponents:   []string{"authentication", "user management"},
				RecommendedActions:   []string{"Security testing", "Penetration testing"},
				RiskFactors:          []string{"Unauthorized access", "Authentication bypass"},
				MitigationStrategies: []string{"Security audit", "Access logging", "Multi-factor authentication"},
			})
		}
		if !seen[ImpactCompatibility] && hasAny(path, "/api/", "/routes", "api.") {
			seen[ImpactCompatibility] = true
			impacts = append(impacts, ImpactPrediction{
				Category:             ImpactCompatibility,
				Severity:             ImpactMedium,
				Description:          "API changes may affect client applications",
				Confidence:           0.7,
				AffectedComponents:   []string{"API", "client applications"},
				RecommendedActions:   []string{"API contract testing", "Client compatibility check"},
				RiskFactors:          []string{"Breaking changes", "Client application failures"},
				MitigationStrategies: []string{"API versioning", "Backward compatibility", "Client notification"},
			})
		}
		if !seen[ImpactExternalDeps] && hasAny(path, "package.json", "go.mod", "requirements.txt", "gemfile", "cargo.toml") {
			seen[ImpactExternalDeps] = true
			impacts = append(impacts, ImpactPrediction{
				Category:             ImpactExternalDeps,
				Severity:             ImpactMedium,
				Description:          "Dependency changes may introduce incompatibilities or vulnerabilities",
				Confidence:           0.7,
				AffectedComponents:   []string{"build", "runtime dependencies"},
				RecommendedActions:   []string{"Dependency audit", "Full test suite run"},
				RiskFactors:          []string{"Transitive dependency conflicts", "Supply chain exposure"},
				MitigationStrategies: []string{"Lock file review", "Vulnerability scanning"},
			})
		}
	}
	return impacts
}

// mergeImpacts combines rule-based and AI predictions, keeping the more
// severe prediction when both cover the same category.
func mergeImpacts(rule, ai []ImpactPrediction) []ImpactPrediction {
	byCategory := make(map[ImpactCategory]int, len(rule))
	merged := make([]ImpactPrediction, len(rule))
	copy(merged, rule)
	for i, imp := range merged {
		byCategory[imp.Category] = i
	}

	for _, imp := range ai {
		if i, ok := byCategory[imp.Category]; ok {
			if SeverityRank(imp.Severity) > SeverityRank(merged[i].Severity) {
				merged[i] = imp
			}
			continue
		}
		byCategory[imp.Category] = len(merged)
		merged = append(merged, imp)
	}
	return merged
}

func testRecommendations(changes []gitctx.FileChange, impacts []ImpactPrediction) []TestRecommendation {
	var recs []TestRecommendation

	var paths []string
	for _, c := range changes {
		paths = append(paths, c.Path)
	}
	categories := CategorizeFiles(paths)
	areas := AffectedAreas(changes)

	if len(categories["api"]) > 0 {
		recs = append(recs, TestRecommendation{
			TestType:      "integration",
			Priority:      "high",
			Description:   "Test API endpoints for functionality and contracts",
			SpecificTests: []string{"API integration tests", "Contract tests"},
			Reasoning:     "API changes detected that could affect client integrations",
		})
	}
	if containsString(areas, "authentication") {
		recs = append(recs, TestRecommendation{
			TestType:      "security",
			Priority:      "high",
			Description:   "Security testing for authentication flows",
			SpecificTests: []string{"Authentication flow tests", "Authorization tests", "Session management tests"},
			Reasoning:     "Authentication changes require thorough security validation",
		})
	}
	if len(categories["database"]) > 0 {
		recs = append(recs, TestRecommendation{
			TestType:      "integration",
			Priority:      "high",
			Description:   "Database integration and migration testing",
			SpecificTests: []string{"Migration tests", "Data integrity tests", "Performance tests"},
			Reasoning:     "Database changes require data integrity validation",
		})
	}
	for _, imp := range impacts {
		if imp.Category == ImpactPerformance && SeverityRank(imp.Severity) >= SeverityRank(ImpactHigh) {
			recs = append(recs, TestRecommendation{
				TestType:      "performance",
				Priority:      "high",
				Description:   "Performance testing for potential bottlenecks",
				SpecificTests: []string{"Load tests", "Stress tests", "Performance regression tests"},
				Reasoning:     "High-impact performance changes detected: " + imp.Description,
			})
			break
		}
	}
	return recs
}

// riskScore aggregates predictions into an overall score in [0,1].
func riskScore(impacts []ImpactPrediction) float64 {
	if len(impacts) == 0 {
		return 0
	}
	total := 0.0
	for _, imp := range impacts {
		total += SeverityWeight(imp.Severity) * imp.Confidence
	}
	normalized := total / float64(len(impacts))
	if normalized > 1 {
		normalized = 1
	}
	// Two decimal places, matching the report format.
	return float64(int(normalized*100+0.5)) / 100
}

func deploymentReadiness(risk float64, impacts []ImpactPrediction) string {
	critical, high := 0, 0
	for _, imp := range impacts {
		switch imp.Severity {
		case ImpactCritical:
			critical++
		case ImpactHigh:
			high++
		}
	}
	switch {
	case critical > 0:
		return "HOLD - Critical impacts require mitigation before deployment"
	case risk > 0.8 || high > 2:
		return "CAUTION - High risk deployment, consider staged rollout"
	case risk > 0.5:
		return "READY - Medium risk, standard deployment precautions"
	default:
		return "READY - Low risk deployment"
	}
}

func monitoringSuggestions(impacts []ImpactPrediction) []string {
	var suggestions []string
	add := func(s string) {
		if !containsString(suggestions, s) {
			suggestions = append(suggestions, s)
		}
	}
	for _, imp := range impacts {
		switch imp.Category {
		case ImpactPerformance:
			add("Monitor API response times and database query performance")
			add("Set up alerts for increased error rates")
		case ImpactSecurity:
			add("Monitor authentication failure rates")
			add("Track unusual access patterns")
		case ImpactReliability:
			add("Monitor application error rates and crash reports")
			add("Track system resource usage")
		}
	}
	return suggestions
}

func rollbackConsiderations(changes []gitctx.FileChange, impacts []ImpactPrediction) []string {
	var considerations []string

	hasDB, hasAPI := false, false
	for _, c := range changes {
		path := strings.ToLower(c.Path)
		hasDB = hasDB || hasAny(path, "/migration", ".sql", "/schema")
		hasAPI = hasAPI || hasAny(path, "/api/", "/routes")
	}
	if hasDB {
		considerations = append(considerations, "Database rollback plan required - ensure migration reversibility")
	}
	for _, imp := range impacts {
		if imp.Severity == ImpactCritical {
			considerations = append(considerations, "Critical impact changes - prepare immediate rollback capability")
			break
		}
	}
	if hasAPI {
		considerations = append(considerations, "API changes - coordinate rollback with client applications")
	}
	if len(considerations) == 0 {
		considerations = append(considerations, "Standard rollback procedures apply")
	}
	return considerations
}

func impactSummary(impacts []ImpactPrediction, risk float64) string {
	if len(impacts) == 0 {
		return "No significant impacts identified. Standard review and testing recommended."
	}

	counts := make(map[ImpactSeverity]int)
	for _, imp := range impacts {
		counts[imp.Severity]++
	}

	parts := []string{fmt.Sprintf("Overall risk score: %.0f%%", risk*100)}

	var dist []string
	for _, sev := range []ImpactSeverity{ImpactLow, ImpactMedium, ImpactHigh, ImpactCritical} {
		if counts[sev] > 0 {
			dist = append(dist, fmt.Sprintf("%d %s", counts[sev], sev))
		}
	}
	parts = append(parts, "Impact distribution: "+strings.Join(dist, ", "))

	var concerns []string
	for _, imp := range impacts {
		if SeverityRank(imp.Severity) >= SeverityRank(ImpactHigh) && !containsString(concerns, string(imp.Category)) {
			concerns = append(concerns, string(imp.Category))
		}
	}
	if len(concerns) > 0 {
		parts = append(parts, "Key concerns: "+strings.Join(concerns, ", "))
	}
	return strings.Join(parts, ". ")
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

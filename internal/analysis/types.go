package analysis

// Intent classifies the purpose behind a change.
type Intent string

const (
	IntentFeature       Intent = "feature"
	IntentBugfix        Intent = "bugfix"
	IntentRefactor      Intent = "refactor"
	IntentPerformance   Intent = "performance"
	IntentSecurity      Intent = "security"
	IntentDocumentation Intent = "documentation"
	IntentTesting       Intent = "testing"
	IntentConfiguration Intent = "configuration"
	IntentDependency    Intent = "dependency"
	IntentMaintenance   Intent = "maintenance"
	IntentStyle         Intent = "style"
	IntentArchitecture  Intent = "architecture"
)

// ValidIntent reports whether s names a known intent.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentFeature, IntentBugfix, IntentRefactor, IntentPerformance,
		IntentSecurity, IntentDocumentation, IntentTesting, IntentConfiguration,
		IntentDependency, IntentMaintenance, IntentStyle, IntentArchitecture:
		return true
	}
	return false
}

// WeightedIntent pairs a secondary intent with its confidence.
type WeightedIntent struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// FileSummary aggregates counts over a change set.
type FileSummary struct {
	TotalFiles    int `json:"totalFiles"`
	FilesAdded    int `json:"filesAdded"`
	FilesModified int `json:"filesModified"`
	FilesDeleted  int `json:"filesDeleted"`
	LinesAdded    int `json:"linesAdded"`
	LinesRemoved  int `json:"linesRemoved"`
}

// IntentResult is the outcome of intent classification.
type IntentResult struct {
	PrimaryIntent    Intent           `json:"primaryIntent"`
	Confidence       float64          `json:"confidence"`
	SecondaryIntents []WeightedIntent `json:"secondaryIntents"`
	Reasoning        string           `json:"reasoning"`
	AffectedAreas    []string         `json:"affectedAreas"`
	BusinessImpact   string           `json:"businessImpact"`
	TechnicalDetails string           `json:"technicalDetails"`
	Files            FileSummary      `json:"fileChangesSummary"`
}

// ImpactSeverity grades a predicted impact.
type ImpactSeverity string

const (
	ImpactLow      ImpactSeverity = "low"
	ImpactMedium   ImpactSeverity = "medium"
	ImpactHigh     ImpactSeverity = "high"
	ImpactCritical ImpactSeverity = "critical"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s ImpactSeverity) int {
	switch s {
	case ImpactCritical:
		return 4
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// SeverityWeight returns the weight used in risk score aggregation.
func SeverityWeight(s ImpactSeverity) float64 {
	switch s {
	case ImpactCritical:
		return 1.0
	case ImpactHigh:
		return 0.75
	case ImpactMedium:
		return 0.5
	case ImpactLow:
		return 0.25
	default:
		return 0
	}
}

// ImpactCategory names the dimension an impact falls in.
type ImpactCategory string

const (
	ImpactPerformance     ImpactCategory = "performance"
	ImpactSecurity        ImpactCategory = "security"
	ImpactCompatibility   ImpactCategory = "compatibility"
	ImpactUserExperience  ImpactCategory = "user_experience"
	ImpactDataIntegrity   ImpactCategory = "data_integrity"
	ImpactReliability     ImpactCategory = "reliability"
	ImpactMaintainability ImpactCategory = "maintainability"
	ImpactTesting         ImpactCategory = "testing"
	ImpactDeployment      ImpactCategory = "deployment"
	ImpactExternalDeps    ImpactCategory = "external_dependencies"
)

// ImpactPrediction is a single predicted downstream effect.
type ImpactPrediction struct {
	Category             ImpactCategory `json:"category"`
	Severity             ImpactSeverity `json:"severity"`
	Description          string         `json:"description"`
	Confidence           float64        `json:"confidence"`
	AffectedComponents   []string       `json:"affectedComponents"`
	RecommendedActions   []string       `json:"recommendedActions"`
	RiskFactors          []string       `json:"riskFactors"`
	MitigationStrategies []string       `json:"mitigationStrategies"`
}

// TestRecommendation suggests tests to run for a change set.
type TestRecommendation struct {
	TestType      string   `json:"testType"` // unit, integration, e2e, performance, security
	Priority      string   `json:"priority"` // high, medium, low
	Description   string   `json:"description"`
	SpecificTests []string `json:"specificTests"`
	Reasoning     string   `json:"reasoning"`
}

// ImpactReport is the complete impact analysis for a change set.
type ImpactReport struct {
	Impacts                []ImpactPrediction   `json:"impacts"`
	TestRecommendations    []TestRecommendation `json:"testRecommendations"`
	RiskScore              float64              `json:"overallRiskScore"`
	DeploymentReadiness    string               `json:"deploymentReadiness"`
	MonitoringSuggestions  []string             `json:"monitoringSuggestions"`
	RollbackConsiderations []string             `json:"rollbackConsiderations"`
	Summary                string               `json:"summary"`
}

// QualityLevel grades a quality issue.
type QualityLevel string

const (
	QualityBlocking QualityLevel = "blocking" // must fix
	QualityWarning  QualityLevel = "warning"  // score penalty
	QualityAdvisory QualityLevel = "advisory" // suggestion only
)

// QualityIssue is a single finding from the quality gate.
type QualityIssue struct {
	Level      QualityLevel `json:"level"`
	Category   string       `json:"category"`
	Message    string       `json:"message"`
	Path       string       `json:"file"`
	Line       int          `json:"line,omitempty"`
	Suggestion string       `json:"suggestion,omitempty"`
}

// QualityResult is the outcome of the quality gate.
type QualityResult struct {
	Passed         bool           `json:"passed"`
	Score          int            `json:"score"`   // 0-100, higher is better
	Penalty        int            `json:"penalty"` // added to the cognitive score
	BlockingIssues []QualityIssue `json:"blockingIssues"`
	WarningIssues  []QualityIssue `json:"warningIssues"`
	AdvisoryIssues []QualityIssue `json:"advisoryIssues"`
	Summary        string         `json:"summary"`
}

// ComplexityCategories breaks the cognitive assessment into dimensions,
// each graded LOW, MEDIUM, HIGH or CRITICAL.
type ComplexityCategories struct {
	Architectural string `json:"architectural"`
	Logical       string `json:"logical"`
	Integration   string `json:"integration"`
	Domain        string `json:"domain"`
}

// CognitiveScore is the tiered review-routing score for a change set.
type CognitiveScore struct {
	StaticScore    int                  `json:"staticScore"`
	ImpactScore    int                  `json:"impactScore"`
	AIScore        int                  `json:"aiScore"`
	QualityPenalty int                  `json:"qualityPenalty"`
	TotalScore     int                  `json:"totalScore"`
	Tier           int                  `json:"tier"` // 0 auto-merge, 1 standard, 2 expert
	Reasoning      string               `json:"reasoning"`
	Categories     ComplexityCategories `json:"complexityCategories"`
	FileMetrics    []FileMetrics        `json:"fileMetrics,omitempty"`
}

// RiskLevel is the keyword-based risk bucket for the pre-review report.
type RiskLevel string

const (
	RiskNone   RiskLevel = "NONE"
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// AISummary holds the sectioned AI review summary.
type AISummary struct {
	Summary          string `json:"summary"`
	BusinessImpact   string `json:"businessImpact"`
	TechnicalChanges string `json:"technicalChanges"`
	PotentialIssues  string `json:"potentialIssues"`
}

// PreReviewReport combines all analyses into a reviewer-facing overview.
type PreReviewReport struct {
	RiskLevel      RiskLevel           `json:"riskLevel"`
	RiskFactors    []string            `json:"riskFactors"`
	FileCategories map[string][]string `json:"fileCategories"`
	FileCount      int                 `json:"fileCount"`
	AI             AISummary           `json:"aiAnalysis"`
	Quality        *QualityResult      `json:"qualityGate,omitempty"`
	Cognitive      *CognitiveScore     `json:"cognitive,omitempty"`
	Intent         *IntentResult       `json:"intent,omitempty"`
	Impact         *ImpactReport       `json:"impact,omitempty"`
}

// SourceFile is a changed file with its full content, as analyzed by the
// quality gate and cognitive scorer.
type SourceFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// DetectLanguage maps a file extension to a language name.
func DetectLanguage(path string) string {
	ext := ""
	if i := lastDot(path); i >= 0 {
		ext = path[i:]
	}
	switch ext {
	case ".py":
		return "python"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".java":
		return "java"
	case ".cs":
		return "csharp"
	case ".go":
		return "go"
	case ".rs":
		return "rust"
	case ".rb":
		return "ruby"
	default:
		return "unknown"
	}
}

func lastDot(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return i
		case '/':
			return -1
		}
	}
	return -1
}

// ClampConfidence bounds a confidence value to [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

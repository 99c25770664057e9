package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emataei/pr-companion/internal/providers"
)

// Issue categories.
const (
	categorySecurity      = "Security"
	categoryCodeQuality   = "Code Quality"
	categoryComplexity    = "Complexity"
	categoryDocumentation = "Documentation"
	categoryAIReview      = "AI Review"
)

// Scoring constants: blocking issues are heavily penalized, warnings and
// advisories are capped so they degrade rather than fail the score.
const (
	blockingScorePenalty = 50
	warningScorePenalty  = 5
	warningScoreCap      = 40
	advisoryScoreCap     = 10

	blockingCognitivePenalty = 20
	warningCognitivePenalty  = 5
	cognitivePenaltyCap      = 40

	longFunctionThreshold = 100
)

var securityChecks = []struct {
	message    string
	suggestion string
	patterns   []*regexp.Regexp
}{
	{
		message:    "Potential hardcoded secret detected",
		suggestion: "Use environment variables or a secrets manager",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)password\s*=\s*["'][^"']+["']`),
			regexp.MustCompile(`(?im)api_key\s*=\s*["'][^"']+["']`),
			regexp.MustCompile(`(?im)secret\s*=\s*["'][^"']+["']`),
			regexp.MustCompile(`(?im)token\s*=\s*["'][^"']+["']`),
		},
	},
	{
		message:    "Potential SQL injection vulnerability",
		suggestion: "Use parameterized queries",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)execute\s*\(\s*["'].*%.*["']`),
			regexp.MustCompile(`(?im)query\s*\(\s*["'].*\+.*["']`),
		},
	},
	{
		message:    "Potential unsafe eval vulnerability",
		suggestion: "Avoid dynamic code execution; use explicit dispatch",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)\beval\s*\(`),
			regexp.MustCompile(`(?im)\bexec\s*\(`),
		},
	},
}

var (
	todoPattern      = regexp.MustCompile(`(?i)(?://|#)\s*(TODO|FIXME|HACK|XXX)`)
	ticketPattern    = regexp.MustCompile(`(?i)(JIRA-\d+|#\d+|TICKET-\d+)`)
	printDebugRE     = regexp.MustCompile(`\bprint\s*\(`)
	consoleLogRE     = regexp.MustCompile(`\bconsole\.(log|debug|info)\s*\(`)
	genericFuncDecl  = regexp.MustCompile(`^\s*(function|def|func|fn)\s+(\w+)`)
	functionBoundary = regexp.MustCompile(`^(def|function|func|fn|\s*class|\s*})`)
)

// Gate runs static quality checks over changed files, optionally augmented
// with an AI review pass guided by the project's coding standards.
type Gate struct {
	provider  providers.Completer
	standards Standards
	log       zerolog.Logger
}

// NewGate creates a Gate. The provider may be nil to disable the AI pass.
func NewGate(p providers.Completer, standards Standards, log zerolog.Logger) *Gate {
	return &Gate{provider: p, standards: standards, log: log}
}

// Analyze runs all checks over the given files. The gate passes iff no
// blocking issues are found.
func (g *Gate) Analyze(ctx context.Context, files []SourceFile) QualityResult {
	if len(files) == 0 {
		return QualityResult{
			Passed:         true,
			Score:          100,
			Summary:        "No code changes detected",
			BlockingIssues: []QualityIssue{},
			WarningIssues:  []QualityIssue{},
			AdvisoryIssues: []QualityIssue{},
		}
	}

	var issues []QualityIssue
	for _, f := range files {
		issues = append(issues, checkSecurity(f)...)
		issues = append(issues, checkCodeSmells(f)...)
		issues = append(issues, checkFunctionLength(f)...)
	}

	if g.provider != nil {
		aiIssues, err := g.analyzeAI(ctx, files)
		if err != nil {
			g.log.Warn().Err(err).Msg("AI quality analysis failed, static checks only")
		} else {
			issues = append(issues, aiIssues...)
		}
	}

	result := QualityResult{
		BlockingIssues: []QualityIssue{},
		WarningIssues:  []QualityIssue{},
		AdvisoryIssues: []QualityIssue{},
	}
	for _, iss := range issues {
		switch iss.Level {
		case QualityBlocking:
			result.BlockingIssues = append(result.BlockingIssues, iss)
		case QualityWarning:
			result.WarningIssues = append(result.WarningIssues, iss)
		case QualityAdvisory:
			result.AdvisoryIssues = append(result.AdvisoryIssues, iss)
		}
	}

	result.Passed = len(result.BlockingIssues) == 0
	result.Score = qualityScore(len(result.BlockingIssues), len(result.WarningIssues), len(result.AdvisoryIssues))
	result.Penalty = qualityPenalty(len(result.BlockingIssues), len(result.WarningIssues))
	result.Summary = qualitySummary(result)
	return result
}

func checkSecurity(f SourceFile) []QualityIssue {
	var issues []QualityIssue
	for _, check := range securityChecks {
		for _, pattern := range check.patterns {
			for _, loc := range pattern.FindAllStringIndex(f.Content, -1) {
				issues = append(issues, QualityIssue{
					Level:      QualityBlocking,
					Category:   categorySecurity,
					Message:    check.message,
					Path:       f.Path,
					Line:       lineAt(f.Content, loc[0]),
					Suggestion: check.suggestion,
				})
			}
		}
	}
	return issues
}

func checkCodeSmells(f SourceFile) []QualityIssue {
	var issues []QualityIssue

	lines := strings.Split(f.Content, "\n")
	for _, loc := range todoPattern.FindAllStringIndex(f.Content, -1) {
		lineNo := lineAt(f.Content, loc[0])
		if lineNo <= len(lines) && ticketPattern.MatchString(lines[lineNo-1]) {
			continue
		}
		issues = append(issues, QualityIssue{
			Level:      QualityWarning,
			Category:   categoryCodeQuality,
			Message:    "TODO/FIXME comment without ticket reference",
			Path:       f.Path,
			Line:       lineNo,
			Suggestion: "Add ticket reference or remove comment if resolved",
		})
	}

	switch f.Language {
	case "python":
		for _, loc := range printDebugRE.FindAllStringIndex(f.Content, -1) {
			issues = append(issues, QualityIssue{
				Level:      QualityWarning,
				Category:   categoryCodeQuality,
				Message:    "Debug print statement found",
				Path:       f.Path,
				Line:       lineAt(f.Content, loc[0]),
				Suggestion: "Remove debug prints or use proper logging",
			})
		}
	case "javascript", "typescript":
		for _, loc := range consoleLogRE.FindAllStringIndex(f.Content, -1) {
			issues = append(issues, QualityIssue{
				Level:      QualityWarning,
				Category:   categoryCodeQuality,
				Message:    "Console log statement found",
				Path:       f.Path,
				Line:       lineAt(f.Content, loc[0]),
				Suggestion: "Remove console logs or use proper logging",
			})
		}
	}

	return issues
}

func checkFunctionLength(f SourceFile) []QualityIssue {
	var issues []QualityIssue
	lines := strings.Split(f.Content, "\n")

	inFunction := false
	funcStart := 0
	funcName := "unknown"

	report := func(end int) {
		if end-funcStart > longFunctionThreshold {
			issues = append(issues, QualityIssue{
				Level:      QualityWarning,
				Category:   categoryComplexity,
				Message:    fmt.Sprintf("Function '%s' is too long (%d lines)", funcName, end-funcStart),
				Path:       f.Path,
				Line:       funcStart + 1,
				Suggestion: "Break function into smaller, focused units",
			})
		}
	}

	for i, line := range lines {
		if m := genericFuncDecl.FindStringSubmatch(line); m != nil {
			if inFunction {
				report(i)
			}
			inFunction = true
			funcStart = i
			funcName = m[2]
		} else if inFunction && functionBoundary.MatchString(line) {
			report(i)
			inFunction = false
		}
	}
	if inFunction {
		report(len(lines))
	}
	return issues
}

type rawQualityIssue struct {
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Suggestion string `json:"suggestion"`
}

func (g *Gate) analyzeAI(ctx context.Context, files []SourceFile) ([]QualityIssue, error) {
	systemPrompt := fmt.Sprintf(qualitySystemPromptTemplate, g.standards.PromptContext())

	resp, err := g.provider.Complete(ctx, providers.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildQualityPrompt(files),
		MaxTokens:    2000,
		Temperature:  0.1,
	})
	if err != nil {
		return nil, err
	}

	var raw []rawQualityIssue
	if err := extractJSON(resp.Content, &raw); err != nil {
		return nil, err
	}

	var issues []QualityIssue
	for _, r := range raw {
		level := QualityLevel(strings.ToLower(r.Severity))
		switch level {
		case QualityBlocking, QualityWarning, QualityAdvisory:
		default:
			level = QualityAdvisory
		}
		category := r.Category
		if category == "" {
			category = categoryAIReview
		}
		issues = append(issues, QualityIssue{
			Level:      level,
			Category:   category,
			Message:    "AI: " + r.Message,
			Path:       r.File,
			Line:       r.Line,
			Suggestion: r.Suggestion,
		})
	}
	return issues, nil
}

func qualityScore(blocking, warning, advisory int) int {
	score := 100
	score -= blocking * blockingScorePenalty
	score -= min(warning*warningScorePenalty, warningScoreCap)
	score -= min(advisory, advisoryScoreCap)
	if score < 0 {
		return 0
	}
	return score
}

func qualityPenalty(blocking, warning int) int {
	penalty := blocking*blockingCognitivePenalty + warning*warningCognitivePenalty
	return min(penalty, cognitivePenaltyCap)
}

func qualitySummary(r QualityResult) string {
	switch {
	case !r.Passed:
		return fmt.Sprintf("Quality gate FAILED (Score: %d/100) - %d blocking issues must be fixed",
			r.Score, len(r.BlockingIssues))
	case r.Score < 80:
		return fmt.Sprintf("Quality gate passed with warnings (Score: %d/100) - %d issues to address",
			r.Score, len(r.WarningIssues))
	default:
		return fmt.Sprintf("Quality gate passed (Score: %d/100) - Good code quality", r.Score)
	}
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}

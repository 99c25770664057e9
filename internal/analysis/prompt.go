package analysis

import (
	"fmt"
	"strings"

	"github.com/emataei/pr-companion/internal/gitctx"
)

const intentSystemPrompt = `You are an expert code reviewer analyzing a pull request to determine the intent behind the changes.

Analyze the provided context and classify the changes according to these categories:
- feature: New functionality or capabilities
- bugfix: Fixing defects or issues
- refactor: Restructuring code without changing behavior
- performance: Optimizing speed, memory, or efficiency
- security: Addressing security vulnerabilities or hardening
- documentation: Adding or updating documentation
- testing: Adding or improving tests
- configuration: Changing settings, build, or deployment config
- dependency: Updating dependencies or packages
- maintenance: General upkeep, cleanup, or tooling
- style: Code formatting or style changes
- architecture: Structural or design pattern changes

You MUST respond with ONLY a JSON object. No markdown, no explanation, no preamble.

{
  "primaryIntent": "category",
  "confidence": 0.85,
  "secondaryIntents": [{"intent": "category", "confidence": 0.65}],
  "reasoning": "Why you classified it this way",
  "affectedAreas": ["ui", "api", "database", "authentication"],
  "businessImpact": "How this affects end users or business goals",
  "technicalDetails": "Implementation details and patterns used"
}

Be thorough but concise. Focus on the most significant changes and their implications.`

const impactSystemPrompt = `You are an expert software architect analyzing code changes to predict their potential impacts.

Predict impacts across these categories:
- performance: Effects on speed, memory usage, or scalability
- security: Security implications or vulnerabilities
- compatibility: Breaking changes or backward compatibility issues
- user_experience: Impact on end-user functionality or experience
- data_integrity: Risks to data consistency or corruption
- reliability: Effects on system stability or error handling
- maintainability: Impact on code quality and future development
- testing: Testing requirements or coverage changes
- deployment: Deployment risks or requirements
- external_dependencies: Impact on external services or APIs

You MUST respond with ONLY a JSON array of impact predictions:
[
  {
    "category": "performance",
    "severity": "low|medium|high|critical",
    "description": "What the impact is",
    "confidence": 0.75,
    "affectedComponents": ["user API", "dashboard"],
    "recommendedActions": ["Load testing"],
    "riskFactors": ["High traffic during peak hours"],
    "mitigationStrategies": ["Query caching", "Gradual rollout"]
  }
]

Focus on the most likely and impactful scenarios. Be specific about technical risks.`

const qualitySystemPromptTemplate = `You are an expert code reviewer analyzing a pull request for quality issues.

%s
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

Severity guide: "blocking" for critical security or functionality issues, "warning" for quality concerns, "advisory" for suggestions.

Focus on issues that static analysis might miss: business logic flaws, complex security vulnerabilities, architecture concerns, context-dependent anti-patterns, maintainability red flags.

If there are no issues, respond with an empty array: []`

const summarySystemPrompt = `You are an expert code reviewer. Provide clear, actionable analysis that helps human reviewers understand the change quickly.`

const cognitivePromptTemplate = `Analyze this code change for cognitive complexity. Rate 0-30 based on:
- How difficult is this to understand?
- Are there complex business rules or algorithms?
- Does this use unusual patterns or anti-patterns?
- How much domain knowledge is required?

Code:
%s

Respond with just a number 0-30.`

// buildIntentPrompt assembles the user prompt for intent classification.
func buildIntentPrompt(title, description string, changes []gitctx.FileChange) string {
	var b strings.Builder
	b.WriteString("PR Analysis Context:\n\n")
	fmt.Fprintf(&b, "Title: %s\n\n", title)
	fmt.Fprintf(&b, "Description: %s\n\n", description)
	fmt.Fprintf(&b, "File Changes Summary:\n%s\n", SummarizeChanges(changes))
	if snippets := KeySnippets(changes); snippets != "" {
		fmt.Fprintf(&b, "\nKey Code Changes:\n%s\n", snippets)
	}
	return b.String()
}

// buildImpactPrompt assembles the user prompt for impact prediction.
func buildImpactPrompt(title, description string, changes []gitctx.FileChange, areas []string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "PR Title: %s\n", title)
	}
	if description != "" {
		fmt.Fprintf(&b, "PR Description: %s\n", description)
	}
	b.WriteString("\nFile Changes:\n")
	for i, c := range changes {
		if i == 10 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(changes)-10)
			break
		}
		fmt.Fprintf(&b, "  %s: %s (+%d/-%d)\n", c.ChangeType, c.Path, c.LinesAdded, c.LinesRemoved)
	}
	if len(areas) > 0 {
		fmt.Fprintf(&b, "\nAffected Areas: %s\n", strings.Join(areas, ", "))
	}
	return b.String()
}

// buildQualityPrompt assembles the user prompt for the AI quality pass.
func buildQualityPrompt(files []SourceFile) string {
	const maxBytes = 8000

	var b strings.Builder
	b.WriteString("Code changes:\n")
	for _, f := range files {
		section := fmt.Sprintf("\n--- File: %s (Language: %s) ---\n%s\n", f.Path, f.Language, f.Content)
		if b.Len()+len(section) > maxBytes {
			break
		}
		b.WriteString(section)
	}
	return b.String()
}

// buildSummaryPrompt assembles the user prompt for the pre-review summary.
func buildSummaryPrompt(diff string, files []string, quality *QualityResult) string {
	fileList := strings.Join(files, ", ")
	if len(files) > 10 {
		fileList = strings.Join(files[:10], ", ") + "..."
	}

	var b strings.Builder
	b.WriteString("Analyze this code change and provide a comprehensive review summary.\n\n")
	fmt.Fprintf(&b, "Files changed (%d): %s\n", len(files), fileList)
	if quality != nil {
		fmt.Fprintf(&b, "\nCode Quality Analysis: %s\n", quality.Summary)
	}
	fmt.Fprintf(&b, "\nCode diff:\n%s\n", TruncateDiff(diff, 3000))
	b.WriteString(`
Provide a structured analysis with these sections:

1. **Plain-English Summary**: what this change does, as a bulleted list of key points
2. **Business Impact**: how this affects users, features, or business logic
3. **Technical Changes**: the key implementation details
4. **Risk Assessment**: potential issues or concerns reviewers should watch for

For the summary section, always use bullet points so it is easy to scan. Each bullet should be concise and focused on one key change.
`)
	return b.String()
}

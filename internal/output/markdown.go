package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emataei/pr-companion/internal/analysis"
	"github.com/emataei/pr-companion/internal/github"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report. The output
// starts with the managed comment marker so posting it is idempotent.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *analysis.PreReviewReport) error {
	fmt.Fprintf(w, "%s\n## Pull Request Analysis\n\n", github.CommentMarker)

	if report.Cognitive != nil {
		c := report.Cognitive
		fmt.Fprintf(w, "**Review Tier:** %s %s (score %d)\n", tierIcon(c.Tier), tierLabel(c.Tier), c.TotalScore)
	}
	fmt.Fprintf(w, "**Risk Level:** %s %s\n", riskIcon(report.RiskLevel), report.RiskLevel)
	if report.Intent != nil {
		fmt.Fprintf(w, "**Intent:** %s (%.0f%% confidence)\n", report.Intent.PrimaryIntent, report.Intent.Confidence*100)
	}
	fmt.Fprintln(w)

	writeAISummary(w, report.AI)
	if report.Quality != nil {
		writeQualitySection(w, report.Quality)
	}
	if report.Impact != nil {
		writeImpactSection(w, report.Impact)
	}
	writeRiskFactors(w, report.RiskFactors)
	writeFileCategories(w, report.FileCategories, report.FileCount)

	if report.Cognitive != nil && report.Cognitive.Reasoning != "" {
		fmt.Fprintf(w, "*%s*\n", report.Cognitive.Reasoning)
	}
	return nil
}

func writeAISummary(w io.Writer, ai analysis.AISummary) {
	if ai.Summary == "" {
		return
	}
	fmt.Fprintf(w, "### Summary\n\n%s\n\n", ai.Summary)
	fmt.Fprintf(w, "**Business Impact:** %s\n\n", ai.BusinessImpact)
	fmt.Fprintf(w, "**Technical Changes:** %s\n\n", ai.TechnicalChanges)
	fmt.Fprintf(w, "**Potential Issues:** %s\n\n", ai.PotentialIssues)
}

func writeQualitySection(w io.Writer, q *analysis.QualityResult) {
	status := ":white_check_mark: Passed"
	if !q.Passed {
		status = ":x: Failed"
	}
	fmt.Fprintf(w, "### Quality Gate: %s (score %d/100)\n\n", status, q.Score)

	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| Blocking | %d |\n", len(q.BlockingIssues))
	fmt.Fprintf(w, "| Warning  | %d |\n", len(q.WarningIssues))
	fmt.Fprintf(w, "| Advisory | %d |\n\n", len(q.AdvisoryIssues))

	writeIssueGroup(w, ":red_circle: Blocking", q.BlockingIssues)
	writeIssueGroup(w, ":orange_circle: Warnings", q.WarningIssues)
	writeIssueGroup(w, ":yellow_circle: Advisory", q.AdvisoryIssues)
}

func writeIssueGroup(w io.Writer, label string, issues []analysis.QualityIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "<details>\n<summary>%s (%d)</summary>\n\n", label, len(issues))

	sorted := make([]analysis.QualityIssue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Line < sorted[j].Line
	})

	for _, issue := range sorted {
		loc := issue.Path
		if issue.Line > 0 {
			loc = fmt.Sprintf("%s:%d", issue.Path, issue.Line)
		}
		fmt.Fprintf(w, "- **`%s`** [%s] %s\n", loc, issue.Category, issue.Message)
		if issue.Suggestion != "" {
			if looksLikeCode(issue.Suggestion) {
				fmt.Fprintf(w, "\n  ```%s\n  %s\n  ```\n", inferLang(issue.Path),
					strings.ReplaceAll(issue.Suggestion, "\n", "\n  "))
			} else {
				fmt.Fprintf(w, "  > %s\n", strings.ReplaceAll(issue.Suggestion, "\n", "\n  > "))
			}
		}
	}
	fmt.Fprintf(w, "\n</details>\n\n")
}

func writeImpactSection(w io.Writer, impact *analysis.ImpactReport) {
	fmt.Fprintf(w, "### Impact\n\n")
	fmt.Fprintf(w, "**Risk score:** %.0f%% | **Deployment:** %s\n\n", impact.RiskScore*100, impact.DeploymentReadiness)

	if len(impact.Impacts) > 0 {
		sorted := make([]analysis.ImpactPrediction, len(impact.Impacts))
		copy(sorted, impact.Impacts)
		sort.SliceStable(sorted, func(i, j int) bool {
			return analysis.SeverityRank(sorted[i].Severity) > analysis.SeverityRank(sorted[j].Severity)
		})
		for _, p := range sorted {
			fmt.Fprintf(w, "- **%s** (%s): %s\n", p.Category, strings.ToUpper(string(p.Severity)), p.Description)
		}
		fmt.Fprintln(w)
	}

	if len(impact.TestRecommendations) > 0 {
		fmt.Fprintf(w, "**Recommended tests:**\n")
		for _, rec := range impact.TestRecommendations {
			fmt.Fprintf(w, "- %s (%s priority): %s\n", rec.TestType, rec.Priority, rec.Description)
		}
		fmt.Fprintln(w)
	}
}

func writeRiskFactors(w io.Writer, factors []string) {
	if len(factors) == 0 {
		return
	}
	fmt.Fprintf(w, "<details>\n<summary>Risk factors (%d)</summary>\n\n", len(factors))
	for _, f := range factors {
		fmt.Fprintf(w, "- %s\n", f)
	}
	fmt.Fprintf(w, "\n</details>\n\n")
}

func writeFileCategories(w io.Writer, categories map[string][]string, total int) {
	if total == 0 {
		return
	}
	fmt.Fprintf(w, "<details>\n<summary>Changed files (%d)</summary>\n\n", total)

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		files := categories[name]
		if len(files) == 0 {
			continue
		}
		fmt.Fprintf(w, "**%s**\n", name)
		for _, f := range files {
			fmt.Fprintf(w, "- `%s`\n", f)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "</details>\n\n")
}

func tierLabel(tier int) string {
	switch tier {
	case 0:
		return "Tier 0 (auto-merge eligible)"
	case 1:
		return "Tier 1 (standard review)"
	default:
		return "Tier 2 (expert review)"
	}
}

func tierIcon(tier int) string {
	switch tier {
	case 0:
		return ":green_circle:"
	case 1:
		return ":yellow_circle:"
	default:
		return ":red_circle:"
	}
}

func riskIcon(level analysis.RiskLevel) string {
	switch level {
	case analysis.RiskHigh:
		return ":red_circle:"
	case analysis.RiskMedium:
		return ":orange_circle:"
	case analysis.RiskLow:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

func looksLikeCode(s string) bool {
	codeIndicators := []string{
		"func ", "if ", "for ", "return ", "var ", "const ",
		"def ", "class ", "import ", "from ",
		"{", "}", "=>", "->", ":=", "==",
		"()", "[];",
	}
	for _, indicator := range codeIndicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}

func inferLang(path string) string {
	langMap := map[string]string{
		".go":   "go",
		".py":   "python",
		".js":   "javascript",
		".ts":   "typescript",
		".tsx":  "tsx",
		".jsx":  "jsx",
		".rs":   "rust",
		".java": "java",
		".rb":   "ruby",
		".cpp":  "cpp",
		".c":    "c",
		".cs":   "csharp",
		".php":  "php",
		".sh":   "bash",
		".sql":  "sql",
		".yaml": "yaml",
		".yml":  "yaml",
		".json": "json",
		".tf":   "hcl",
	}
	for ext, lang := range langMap {
		if strings.HasSuffix(path, ext) {
			return lang
		}
	}
	return ""
}

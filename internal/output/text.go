package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/emataei/pr-companion/internal/analysis"
)

// TextWriter outputs a human-readable text report for terminals.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *analysis.PreReviewReport) error {
	ew := &errWriter{w: w}

	ew.printf("Pull Request Analysis\n")
	ew.println(strings.Repeat("─", 60))
	ew.printf("Risk level: %s\n", colorRisk(report.RiskLevel))
	if report.Cognitive != nil {
		c := report.Cognitive
		ew.printf("Review tier: %s (score %d: static %d + impact %d + ai %d + penalty %d)\n",
			colorTier(c.Tier), c.TotalScore, c.StaticScore, c.ImpactScore, c.AIScore, c.QualityPenalty)
	}
	if report.Intent != nil {
		ew.printf("Intent: %s (%.0f%% confidence)\n", report.Intent.PrimaryIntent, report.Intent.Confidence*100)
	}
	ew.printf("Files changed: %d\n", report.FileCount)
	ew.println(strings.Repeat("─", 60))

	if report.AI.Summary != "" {
		ew.printf("\nSummary\n")
		for _, line := range wrapText(report.AI.Summary, 70) {
			ew.printf("  %s\n", line)
		}
		ew.printf("  Business impact:   %s\n", report.AI.BusinessImpact)
		ew.printf("  Technical changes: %s\n", report.AI.TechnicalChanges)
		ew.printf("  Potential issues:  %s\n", report.AI.PotentialIssues)
	}

	if q := report.Quality; q != nil {
		status := color.GreenString("PASSED")
		if !q.Passed {
			status = color.RedString("FAILED")
		}
		ew.printf("\nQuality gate: %s (score %d/100)\n", status, q.Score)
		writeTextIssues(ew, "[!!]", q.BlockingIssues)
		writeTextIssues(ew, "[!]", q.WarningIssues)
		writeTextIssues(ew, "[-]", q.AdvisoryIssues)
	}

	if impact := report.Impact; impact != nil {
		ew.printf("\nImpact: risk %.0f%%, deployment %s\n", impact.RiskScore*100, impact.DeploymentReadiness)
		for _, p := range impact.Impacts {
			ew.printf("  %s (%s): %s\n", p.Category, strings.ToUpper(string(p.Severity)), p.Description)
		}
	}

	if len(report.RiskFactors) > 0 {
		ew.printf("\nRisk factors:\n")
		for _, f := range report.RiskFactors {
			ew.printf("  - %s\n", f)
		}
	}

	return ew.err
}

func writeTextIssues(ew *errWriter, marker string, issues []analysis.QualityIssue) {
	for _, issue := range issues {
		loc := issue.Path
		if issue.Line > 0 {
			loc = fmt.Sprintf("%s:%d", issue.Path, issue.Line)
		}
		ew.printf("  %s %s  %s\n", marker, loc, issue.Message)
		if issue.Suggestion != "" {
			for _, line := range wrapText(issue.Suggestion, 66) {
				ew.printf("      %s\n", line)
			}
		}
	}
}

func colorRisk(level analysis.RiskLevel) string {
	switch level {
	case analysis.RiskHigh:
		return color.New(color.FgRed, color.Bold).Sprint(string(level))
	case analysis.RiskMedium:
		return color.YellowString(string(level))
	case analysis.RiskLow:
		return color.GreenString(string(level))
	default:
		return string(level)
	}
}

func colorTier(tier int) string {
	switch tier {
	case 0:
		return color.GreenString("Tier 0")
	case 1:
		return color.YellowString("Tier 1")
	default:
		return color.New(color.FgRed, color.Bold).Sprint("Tier 2")
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

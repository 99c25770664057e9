package output

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/emataei/pr-companion/internal/analysis"
)

// SARIFWriter outputs quality-gate issues in SARIF v2.1.0 format for upload
// to GitHub code scanning.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *analysis.PreReviewReport) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

type sarifFix struct {
	Description sarifMessage `json:"description"`
}

func buildSARIF(report *analysis.PreReviewReport) sarifLog {
	var issues []analysis.QualityIssue
	if report.Quality != nil {
		issues = append(issues, report.Quality.BlockingIssues...)
		issues = append(issues, report.Quality.WarningIssues...)
		issues = append(issues, report.Quality.AdvisoryIssues...)
	}

	rulesMap := make(map[string]sarifRule)
	var ruleOrder []string
	var results []sarifResult

	for _, issue := range issues {
		ruleID := generateRuleID(issue)
		if _, ok := rulesMap[ruleID]; !ok {
			rulesMap[ruleID] = sarifRule{
				ID:               ruleID,
				Name:             issue.Category,
				ShortDescription: sarifMessage{Text: issue.Message},
				DefaultConfig:    sarifDefaultConfig{Level: levelToSARIF(issue.Level)},
			}
			ruleOrder = append(ruleOrder, ruleID)
		}

		result := sarifResult{
			RuleID:  ruleID,
			Level:   levelToSARIF(issue.Level),
			Message: sarifMessage{Text: issue.Message},
		}
		if issue.Path != "" {
			line := issue.Line
			if line == 0 {
				line = 1
			}
			result.Locations = append(result.Locations, sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: issue.Path},
					Region:           sarifRegion{StartLine: line, EndLine: line},
				},
			})
		}
		if issue.Suggestion != "" {
			result.Fixes = append(result.Fixes, sarifFix{
				Description: sarifMessage{Text: issue.Suggestion},
			})
		}
		results = append(results, result)
	}

	rules := make([]sarifRule, 0, len(ruleOrder))
	for _, id := range ruleOrder {
		rules = append(rules, rulesMap[id])
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "pr-companion",
						Version:        "dev",
						InformationURI: "https://github.com/emataei/pr-companion",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// levelToSARIF maps a quality level to a SARIF level.
func levelToSARIF(l analysis.QualityLevel) string {
	switch l {
	case analysis.QualityBlocking:
		return "error"
	case analysis.QualityWarning:
		return "warning"
	default:
		return "note"
	}
}

// generateRuleID creates a stable rule ID from category + message.
func generateRuleID(issue analysis.QualityIssue) string {
	data := fmt.Sprintf("%s/%s", issue.Category, issue.Message)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("pr-companion/%s/%x", issue.Category, h[:4])
}

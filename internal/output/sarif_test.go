package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/emataei/pr-companion/internal/analysis"
)

func TestSARIFWriter_Empty(t *testing.T) {
	report := &analysis.PreReviewReport{RiskLevel: analysis.RiskNone}

	var buf bytes.Buffer
	w := &SARIFWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}
	if sarif.Version != "2.1.0" {
		t.Errorf("Version = %q, want %q", sarif.Version, "2.1.0")
	}
	if len(sarif.Runs) != 1 {
		t.Fatalf("Runs count = %d, want 1", len(sarif.Runs))
	}
	if sarif.Runs[0].Tool.Driver.Name != "pr-companion" {
		t.Errorf("Driver name = %q", sarif.Runs[0].Tool.Driver.Name)
	}
	if len(sarif.Runs[0].Results) != 0 {
		t.Errorf("Results count = %d, want 0", len(sarif.Runs[0].Results))
	}
}

func TestSARIFWriter_LevelMapping(t *testing.T) {
	report := &analysis.PreReviewReport{
		Quality: &analysis.QualityResult{
			BlockingIssues: []analysis.QualityIssue{
				{Level: analysis.QualityBlocking, Category: "secrets", Message: "Hardcoded credential", Path: "internal/auth/login.go", Line: 14},
			},
			WarningIssues: []analysis.QualityIssue{
				{Level: analysis.QualityWarning, Category: "complexity", Message: "Function exceeds 50 lines", Path: "internal/auth/login.go", Line: 30},
			},
			AdvisoryIssues: []analysis.QualityIssue{
				{Level: analysis.QualityAdvisory, Category: "style", Message: "Prefer early return", Path: "internal/auth/session.go"},
			},
		},
	}

	var buf bytes.Buffer
	w := &SARIFWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}

	results := sarif.Runs[0].Results
	if len(results) != 3 {
		t.Fatalf("Results count = %d, want 3", len(results))
	}
	wantLevels := []string{"error", "warning", "note"}
	for i, want := range wantLevels {
		if results[i].Level != want {
			t.Errorf("result %d level = %q, want %q", i, results[i].Level, want)
		}
	}
	if len(sarif.Runs[0].Tool.Driver.Rules) != 3 {
		t.Errorf("Rules count = %d, want 3", len(sarif.Runs[0].Tool.Driver.Rules))
	}
}

func TestSARIFWriter_Locations(t *testing.T) {
	report := &analysis.PreReviewReport{
		Quality: &analysis.QualityResult{
			WarningIssues: []analysis.QualityIssue{
				{Level: analysis.QualityWarning, Category: "complexity", Message: "Deep nesting", Path: "svc/handler.go", Line: 42, Suggestion: "Extract a helper."},
				{Level: analysis.QualityWarning, Category: "docs", Message: "Missing description", Path: "README.md"},
			},
		},
	}

	var buf bytes.Buffer
	w := &SARIFWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}

	results := sarif.Runs[0].Results
	loc := results[0].Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "svc/handler.go" {
		t.Errorf("URI = %q", loc.ArtifactLocation.URI)
	}
	if loc.Region.StartLine != 42 {
		t.Errorf("StartLine = %d, want 42", loc.Region.StartLine)
	}
	if len(results[0].Fixes) != 1 || results[0].Fixes[0].Description.Text != "Extract a helper." {
		t.Errorf("Fixes = %+v", results[0].Fixes)
	}

	// Zero line defaults to 1 so GitHub accepts the region.
	if results[1].Locations[0].PhysicalLocation.Region.StartLine != 1 {
		t.Errorf("default StartLine = %d, want 1", results[1].Locations[0].PhysicalLocation.Region.StartLine)
	}
}

func TestGenerateRuleID_Stable(t *testing.T) {
	issue := analysis.QualityIssue{Category: "secrets", Message: "Hardcoded credential"}
	a := generateRuleID(issue)
	b := generateRuleID(issue)
	if a != b {
		t.Errorf("rule ID not stable: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "pr-companion/secrets/") {
		t.Errorf("rule ID = %q, want pr-companion/secrets/ prefix", a)
	}

	other := generateRuleID(analysis.QualityIssue{Category: "secrets", Message: "Different"})
	if a == other {
		t.Error("distinct messages should yield distinct rule IDs")
	}
}

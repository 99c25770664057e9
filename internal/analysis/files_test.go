package analysis

import (
	"strings"
	"testing"

	"github.com/emataei/pr-companion/internal/gitctx"
)

func TestCategorizeFile(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/components/Button.tsx", "ui"},
		{"styles/main.scss", "ui"},
		{"server/api/users.go", "api"},
		{"app/controllers/auth_controller.rb", "api"},
		{"db/migrations/001_init.sql", "database"},
		{"docker-compose.yml", "config"},
		{".env", "config"},
		{"pkg/store/store_test.go", "test"},
		{"README.md", "documentation"},
		{"main.go", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := CategorizeFile(tt.path); got != tt.want {
				t.Errorf("CategorizeFile(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCategorizeFiles_AllKeysPresent(t *testing.T) {
	got := CategorizeFiles([]string{"main.go"})
	for _, key := range []string{"ui", "api", "database", "config", "test", "documentation", "other"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing category key %q", key)
		}
	}
	if len(got["other"]) != 1 {
		t.Errorf("other = %v, want [main.go]", got["other"])
	}
}

func TestAssessRisk(t *testing.T) {
	kw := DefaultRiskKeywords()

	tests := []struct {
		name  string
		files []string
		diff  string
		want  RiskLevel
	}{
		{
			name:  "low risk docs change",
			files: []string{"README.md"},
			diff:  "+ documentation update",
			want:  RiskLow,
		},
		{
			name:  "medium from api file",
			files: []string{"server/api/users.go", "server/api/posts.go"},
			diff:  "",
			want:  RiskMedium,
		},
		{
			name:  "high from auth file and keyword diff",
			files: []string{"internal/auth/login.go"},
			diff:  "+ password = hash(input)",
			want:  RiskHigh,
		},
		{
			name:  "high from multiple security files",
			files: []string{"auth/token.go", "billing/payment.go"},
			diff:  "",
			want:  RiskHigh,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, factors := AssessRisk(tt.files, tt.diff, kw)
			if got != tt.want {
				t.Errorf("AssessRisk() = %v, want %v (factors: %v)", got, tt.want, factors)
			}
			if got != RiskLow && len(factors) == 0 {
				t.Error("expected risk factors for elevated risk")
			}
		})
	}
}

func TestAffectedAreas(t *testing.T) {
	changes := []gitctx.FileChange{
		{Path: "web/components/App.tsx"},
		{Path: "server/api/users.go"},
		{Path: "internal/auth/session.go"},
		{Path: "db/migration/002_add_users.sql"},
	}
	got := AffectedAreas(changes)

	for _, want := range []string{"ui", "api", "authentication", "database"} {
		found := false
		for _, area := range got {
			if area == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("AffectedAreas() = %v, missing %q", got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	changes := []gitctx.FileChange{
		{Path: "a.go", ChangeType: "added", LinesAdded: 100},
		{Path: "b.go", ChangeType: "modified", LinesAdded: 10, LinesRemoved: 5},
		{Path: "c.go", ChangeType: "deleted", LinesRemoved: 50},
	}
	s := Summarize(changes)
	if s.TotalFiles != 3 || s.FilesAdded != 1 || s.FilesModified != 1 || s.FilesDeleted != 1 {
		t.Errorf("Summarize() counts = %+v", s)
	}
	if s.LinesAdded != 110 || s.LinesRemoved != 55 {
		t.Errorf("Summarize() lines = +%d/-%d, want +110/-55", s.LinesAdded, s.LinesRemoved)
	}
}

func TestSummarizeChanges_GroupsAndCaps(t *testing.T) {
	var changes []gitctx.FileChange
	for i := 0; i < 8; i++ {
		changes = append(changes, gitctx.FileChange{
			Path:       strings.Repeat("x", i+1) + ".go",
			ChangeType: "modified",
			LinesAdded: 1,
		})
	}
	out := SummarizeChanges(changes)
	if !strings.Contains(out, "Modified 8 files:") {
		t.Errorf("missing group header in %q", out)
	}
	if !strings.Contains(out, "... and 3 more") {
		t.Errorf("missing overflow marker in %q", out)
	}
}

package analysis

import (
	"fmt"
	"strings"

	"github.com/emataei/pr-companion/internal/gitctx"
)

// File categorization patterns, checked in order.
var fileCategoryPatterns = []struct {
	name     string
	patterns []string
}{
	{"ui", []string{".tsx", ".jsx", ".vue", ".svelte", ".css", ".scss", ".less"}},
	{"api", []string{"/api/", "/routes/", "/controllers/", "/handlers/"}},
	{"database", []string{"/migrations/", "/models/", "/schemas/", ".sql"}},
	{"config", []string{".config.", ".env", "dockerfile", "docker-compose", ".yml", ".yaml", ".json"}},
	{"test", []string{".test.", ".spec.", "__tests__/", "/tests/", "_test.go"}},
	{"documentation", []string{".md", ".txt", ".rst", "readme", "changelog"}},
}

// CategorizeFile returns the category bucket for a single path.
func CategorizeFile(path string) string {
	lower := strings.ToLower(path)
	for _, cat := range fileCategoryPatterns {
		for _, p := range cat.patterns {
			if strings.Contains(lower, p) {
				return cat.name
			}
		}
	}
	return "other"
}

// CategorizeFiles buckets paths by category. Every known category key is
// present in the result, even when empty.
func CategorizeFiles(paths []string) map[string][]string {
	categories := make(map[string][]string, len(fileCategoryPatterns)+1)
	for _, cat := range fileCategoryPatterns {
		categories[cat.name] = []string{}
	}
	categories["other"] = []string{}
	for _, p := range paths {
		cat := CategorizeFile(p)
		categories[cat] = append(categories[cat], p)
	}
	return categories
}

// AffectedAreas derives the codebase areas a change set touches.
func AffectedAreas(changes []gitctx.FileChange) []string {
	seen := make(map[string]bool)
	var areas []string
	add := func(area string) {
		if !seen[area] {
			seen[area] = true
			areas = append(areas, area)
		}
	}

	for _, c := range changes {
		path := strings.ToLower(c.Path)
		switch {
		case hasAny(path, ".tsx", ".jsx", ".vue", ".css", ".scss"):
			add("ui")
		case strings.Contains(path, "/api/") || strings.Contains(path, "/routes/"):
			add("api")
		case strings.Contains(path, "/test") || strings.Contains(path, ".test."):
			add("testing")
		case strings.Contains(path, "/config") || strings.Contains(path, ".config."):
			add("configuration")
		case strings.Contains(path, "auth"):
			add("authentication")
		case strings.Contains(path, "/db") || strings.Contains(path, "/migration"):
			add("database")
		case strings.Contains(path, ".md") || strings.Contains(path, "readme"):
			add("documentation")
		}
	}
	return areas
}

// RiskKeywords holds the path/diff keyword lists used for risk assessment.
type RiskKeywords struct {
	High   []string
	Medium []string
}

// DefaultRiskKeywords returns the built-in keyword lists.
func DefaultRiskKeywords() RiskKeywords {
	return RiskKeywords{
		High: []string{
			"auth", "security", "password", "token", "credential",
			"payment", "billing", "transaction", "money",
			"permission", "role", "admin", "user_management",
			"migration", "schema", "database", "sql",
		},
		Medium: []string{
			"api", "endpoint", "route", "controller",
			"config", "environment", "setting",
			"validation", "sanitization", "input",
		},
	}
}

// AssessRisk scores files and diff content against the risk keyword lists
// and returns the aggregate level plus the triggering factors.
func AssessRisk(files []string, diff string, kw RiskKeywords) (RiskLevel, []string) {
	total := 0
	var factors []string

	for _, file := range files {
		lower := strings.ToLower(file)
		matched := false
		for _, pat := range kw.High {
			if strings.Contains(lower, pat) {
				total += 3
				factors = append(factors, fmt.Sprintf("High-risk file: %s (contains %q)", file, pat))
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for _, pat := range kw.Medium {
			if strings.Contains(lower, pat) {
				total++
				factors = append(factors, fmt.Sprintf("Medium-risk file: %s (contains %q)", file, pat))
				break
			}
		}
	}

	diffLower := strings.ToLower(diff)
	for _, pat := range kw.High {
		if strings.Contains(diffLower, pat) {
			total += 2
			factors = append(factors, fmt.Sprintf("High-risk code change detected: %q", pat))
		}
	}

	switch {
	case total >= 5:
		return RiskHigh, factors
	case total >= 2:
		return RiskMedium, factors
	default:
		return RiskLow, factors
	}
}

// Summarize aggregates a change set into counts.
func Summarize(changes []gitctx.FileChange) FileSummary {
	var s FileSummary
	s.TotalFiles = len(changes)
	for _, c := range changes {
		switch c.ChangeType {
		case "added":
			s.FilesAdded++
		case "modified":
			s.FilesModified++
		case "deleted":
			s.FilesDeleted++
		}
		s.LinesAdded += c.LinesAdded
		s.LinesRemoved += c.LinesRemoved
	}
	return s
}

// SummarizeChanges renders a change set grouped by change type, limiting
// each group to the first few entries.
func SummarizeChanges(changes []gitctx.FileChange) string {
	const maxPerGroup = 5

	byType := make(map[string][]gitctx.FileChange)
	for _, c := range changes {
		byType[c.ChangeType] = append(byType[c.ChangeType], c)
	}

	var b strings.Builder
	writeGroup := func(changeType, verb, marker string, format func(gitctx.FileChange) string) {
		group := byType[changeType]
		if len(group) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s %d files:\n", verb, len(group))
		for i, c := range group {
			if i == maxPerGroup {
				fmt.Fprintf(&b, "  ... and %d more\n", len(group)-maxPerGroup)
				break
			}
			fmt.Fprintf(&b, "  %s %s\n", marker, format(c))
		}
	}

	writeGroup("added", "Added", "+", func(c gitctx.FileChange) string {
		return fmt.Sprintf("%s (%d lines)", c.Path, c.LinesAdded)
	})
	writeGroup("modified", "Modified", "~", func(c gitctx.FileChange) string {
		return fmt.Sprintf("%s (+%d/-%d)", c.Path, c.LinesAdded, c.LinesRemoved)
	})
	writeGroup("deleted", "Deleted", "-", func(c gitctx.FileChange) string {
		return c.Path
	})
	writeGroup("renamed", "Renamed", ">", func(c gitctx.FileChange) string {
		return c.Path
	})

	return strings.TrimRight(b.String(), "\n")
}

func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

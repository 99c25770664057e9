package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Standards captures project coding conventions parsed from a Copilot
// instructions file, injected as context into AI quality prompts.
type Standards struct {
	KeyPrinciples       string
	PreferredPatterns   []string
	DiscouragedPatterns []string
	CodeOrganization    []string
	ErrorHandlingFocus  bool
	TypeSafetyFocus     bool
	PerformanceFocus    bool
	DocumentationFocus  bool
	TestingFocus        bool
}

// instructionpaths are checked relative to the repo root, first match wins.
var instructionPaths = []string{
	filepath.Join(".github", "copilot-instructions.md"),
	filepath.Join(".github", "instructions.md"),
	"copilot-instructions.md",
}

// LoadStandards reads the project's instruction file if one exists.
// A missing file yields empty Standards and no error.
func LoadStandards(repoRoot string) (Standards, error) {
	for _, rel := range instructionPaths {
		data, err := os.ReadFile(filepath.Join(repoRoot, rel))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Standards{}, fmt.Errorf("reading instructions file: %w", err)
		}
		return ParseStandards(string(data)), nil
	}
	return Standards{}, nil
}

// ParseStandards extracts coding standards from instruction markdown.
func ParseStandards(content string) Standards {
	var s Standards
	lower := strings.ToLower(content)

	s.ErrorHandlingFocus = strings.Contains(lower, "error handling")
	s.TypeSafetyFocus = strings.Contains(lower, "type safety") || strings.Contains(lower, "type hints")
	s.PerformanceFocus = strings.Contains(lower, "performance")
	s.DocumentationFocus = strings.Contains(lower, "documentation") || strings.Contains(lower, "docstring")
	s.TestingFocus = strings.Contains(lower, "test coverage") || strings.Contains(lower, "unit test")

	section := ""
	var principles []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			section = sectionKind(trimmed)
			continue
		}
		item, ok := bulletText(trimmed)
		if !ok {
			if section == "principles" && trimmed != "" {
				principles = append(principles, trimmed)
			}
			continue
		}
		switch section {
		case "principles":
			principles = append(principles, item)
		case "preferred":
			s.PreferredPatterns = append(s.PreferredPatterns, item)
		case "discouraged":
			s.DiscouragedPatterns = append(s.DiscouragedPatterns, item)
		case "organization":
			s.CodeOrganization = append(s.CodeOrganization, item)
		}
	}
	s.KeyPrinciples = strings.Join(principles, "\n")
	return s
}

// PromptContext renders the standards as prompt guidance for the AI
// reviewer. Empty standards produce a generic instruction.
func (s Standards) PromptContext() string {
	var parts []string

	if s.KeyPrinciples != "" {
		parts = append(parts, "Project coding standards:\n"+s.KeyPrinciples)
	}
	if len(s.PreferredPatterns) > 0 {
		parts = append(parts, "Preferred patterns:\n"+bulletList(s.PreferredPatterns, 5))
	}
	if len(s.DiscouragedPatterns) > 0 {
		parts = append(parts, "Discouraged patterns:\n"+bulletList(s.DiscouragedPatterns, 5))
	}
	if len(s.CodeOrganization) > 0 {
		parts = append(parts, "Code organization requirements:\n"+bulletList(s.CodeOrganization, 5))
	}

	var emphasis []string
	if s.ErrorHandlingFocus {
		emphasis = append(emphasis, "- Proper error handling is required")
	}
	if s.TypeSafetyFocus {
		emphasis = append(emphasis, "- Type safety is emphasized")
	}
	if s.PerformanceFocus {
		emphasis = append(emphasis, "- Performance considerations are important")
	}
	if s.DocumentationFocus {
		emphasis = append(emphasis, "- Code documentation is required")
	}
	if s.TestingFocus {
		emphasis = append(emphasis, "- Testing coverage is emphasized")
	}
	if len(emphasis) > 0 {
		parts = append(parts, "Project emphasis:\n"+strings.Join(emphasis, "\n"))
	}

	if len(parts) == 0 {
		return "Apply general coding best practices when reviewing.\n"
	}
	return "Consider the following project-specific standards when reviewing:\n\n" +
		strings.Join(parts, "\n\n") + "\n"
}

// EmphasisAreas lists the human-readable emphasis flags that are set.
func (s Standards) EmphasisAreas() []string {
	var areas []string
	if s.ErrorHandlingFocus {
		areas = append(areas, "Error Handling")
	}
	if s.TypeSafetyFocus {
		areas = append(areas, "Type Safety")
	}
	if s.PerformanceFocus {
		areas = append(areas, "Performance")
	}
	if s.DocumentationFocus {
		areas = append(areas, "Documentation")
	}
	if s.TestingFocus {
		areas = append(areas, "Testing")
	}
	return areas
}

func sectionKind(heading string) string {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "principle") || strings.Contains(h, "standard") || strings.Contains(h, "guideline"):
		return "principles"
	case strings.Contains(h, "prefer") || strings.Contains(h, "do use") || strings.Contains(h, "best practice"):
		return "preferred"
	case strings.Contains(h, "avoid") || strings.Contains(h, "discourag") || strings.Contains(h, "don't") || strings.Contains(h, "do not"):
		return "discouraged"
	case strings.Contains(h, "organization") || strings.Contains(h, "structure") || strings.Contains(h, "layout"):
		return "organization"
	default:
		return ""
	}
}

func bulletText(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

func bulletList(items []string, max int) string {
	if len(items) > max {
		items = items[:max]
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}

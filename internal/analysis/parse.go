package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// errNoProvider signals that an analyzer was built without an AI provider
// and should use its rule-based fallback.
var errNoProvider = errors.New("no AI provider configured")

var (
	jsonObjectPattern  = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArrayPattern   = regexp.MustCompile(`(?s)\[.*\]`)
	firstNumberPattern = regexp.MustCompile(`\d+`)
)

// extractJSON unmarshals the first JSON value of the wanted shape found in
// an LLM response. It tolerates markdown code fences and surrounding prose.
func extractJSON(content string, v any) error {
	content = stripCodeFences(content)

	if err := json.Unmarshal([]byte(content), v); err == nil {
		return nil
	}
	for _, pattern := range []*regexp.Regexp{jsonArrayPattern, jsonObjectPattern} {
		match := pattern.FindString(content)
		if match == "" {
			continue
		}
		if err := json.Unmarshal([]byte(match), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no parseable JSON found in response")
}

// extractNumber pulls the first integer out of an LLM response.
func extractNumber(content string) (int, error) {
	m := firstNumberPattern.FindString(content)
	if m == "" {
		return 0, fmt.Errorf("no number found in response")
	}
	var n int
	if _, err := fmt.Sscanf(m, "%d", &n); err != nil {
		return 0, err
	}
	return n, nil
}

func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}

package analysis

import (
	"regexp"
	"strings"
)

// Static scoring thresholds.
const (
	staticScoreMax        = 40
	staticScorePerFileMax = 40

	funcLengthLargeThreshold  = 50
	funcLengthMediumThreshold = 20
	funcLengthLargePenalty    = 3
	funcLengthMediumPenalty   = 1

	largeFileThreshold  = 100
	largeFilePenalty    = 5
	mediumFileThreshold = 50
	mediumFilePenalty   = 2

	complexFileThreshold = 15
)

// FileMetrics holds the static complexity breakdown for one file.
type FileMetrics struct {
	Path                  string `json:"path"`
	Language              string `json:"language"`
	CyclomaticComplexity  int    `json:"cyclomaticComplexity"`
	NestingDepth          int    `json:"nestingDepth"`
	FunctionCount         int    `json:"functionCount"`
	ControlStructures     int    `json:"controlStructures"`
	FunctionLengthPenalty int    `json:"functionLengthPenalty"`
	FileSizePenalty       int    `json:"fileSizePenalty"`
	TotalScore            int    `json:"totalScore"`
}

var (
	controlKeywordPattern = regexp.MustCompile(`\b(if|else if|elif|for|while|switch|case|catch|except|select)\b`)
	boolOpPattern         = regexp.MustCompile(`(&&|\|\||\band\b|\bor\b)`)
	funcDeclPattern       = regexp.MustCompile(`^\s*(?:export\s+)?(?:public\s+|private\s+|protected\s+|static\s+|async\s+)*(?:function|def|func|fn)\s+\w+`)
)

// AnalyzeComplexity computes static complexity metrics for a source file
// using language-keyword heuristics over its text.
func AnalyzeComplexity(f SourceFile) FileMetrics {
	m := FileMetrics{Path: f.Path, Language: f.Language}
	lines := strings.Split(f.Content, "\n")

	// Cyclomatic complexity estimate: one per decision point plus one.
	m.ControlStructures = len(controlKeywordPattern.FindAllString(f.Content, -1))
	m.CyclomaticComplexity = 1 + m.ControlStructures + len(boolOpPattern.FindAllString(f.Content, -1))

	m.NestingDepth = maxNestingDepth(lines)
	m.FunctionCount, m.FunctionLengthPenalty = functionStats(lines)

	switch {
	case len(lines) > largeFileThreshold:
		m.FileSizePenalty = largeFilePenalty
	case len(lines) > mediumFileThreshold:
		m.FileSizePenalty = mediumFilePenalty
	}

	m.TotalScore = m.ControlStructures + m.NestingDepth +
		m.FunctionLengthPenalty + m.FileSizePenalty
	if m.TotalScore > staticScorePerFileMax {
		m.TotalScore = staticScorePerFileMax
	}
	return m
}

// ComplexityIssues names the dominant complexity problems in a file.
func ComplexityIssues(m FileMetrics) []string {
	var issues []string
	if m.CyclomaticComplexity > 10 {
		issues = append(issues, "high cyclomatic complexity")
	}
	if m.NestingDepth > 4 {
		issues = append(issues, "deep nesting")
	}
	if m.FunctionLengthPenalty > 1 {
		issues = append(issues, "long functions")
	}
	if m.ControlStructures > 15 {
		issues = append(issues, "many control structures")
	}
	if len(issues) == 0 {
		issues = append(issues, "multiple complexity factors")
	}
	return issues
}

// maxNestingDepth estimates nesting from brace balance, falling back to
// indentation for brace-free languages.
func maxNestingDepth(lines []string) int {
	depth, max := 0, 0
	sawBrace := false
	for _, line := range lines {
		for _, r := range line {
			switch r {
			case '{':
				sawBrace = true
				depth++
				if depth > max {
					max = depth
				}
			case '}':
				if depth > 0 {
					depth--
				}
			}
		}
	}
	if sawBrace {
		return max
	}
	return indentDepth(lines)
}

func indentDepth(lines []string) int {
	max := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		spaces := 0
		for _, r := range line {
			if r == ' ' {
				spaces++
			} else if r == '\t' {
				spaces += 4
			} else {
				break
			}
		}
		if d := spaces / 4; d > max {
			max = d
		}
	}
	return max
}

// functionStats counts function declarations and accumulates length
// penalties for long ones.
func functionStats(lines []string) (count, penalty int) {
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		length := end - start
		switch {
		case length > funcLengthLargeThreshold:
			penalty += funcLengthLargePenalty
		case length > funcLengthMediumThreshold:
			penalty += funcLengthMediumPenalty
		}
	}
	for i, line := range lines {
		if funcDeclPattern.MatchString(line) {
			flush(i)
			start = i
			count++
		}
	}
	flush(len(lines))
	return count, penalty
}

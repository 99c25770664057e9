package analysis

import (
	"strings"
	"testing"
)

func TestAnalyzeComplexity_TrivialFile(t *testing.T) {
	m := AnalyzeComplexity(SourceFile{
		Path:     "doc.go",
		Language: "go",
		Content:  "// Package doc.\npackage doc\n",
	})
	if m.TotalScore != 0 {
		t.Errorf("TotalScore = %d, want 0", m.TotalScore)
	}
	if m.CyclomaticComplexity != 1 {
		t.Errorf("CyclomaticComplexity = %d, want 1", m.CyclomaticComplexity)
	}
}

func TestAnalyzeComplexity_ControlFlow(t *testing.T) {
	content := `package p

func pick(a, b int) int {
	if a > 0 && b > 0 {
		for i := 0; i < a; i++ {
			if i == b {
				return i
			}
		}
	}
	return b
}
`
	m := AnalyzeComplexity(SourceFile{Path: "pick.go", Language: "go", Content: content})
	if m.ControlStructures != 3 {
		t.Errorf("ControlStructures = %d, want 3", m.ControlStructures)
	}
	// 1 + 3 control keywords + 1 boolean operator
	if m.CyclomaticComplexity != 5 {
		t.Errorf("CyclomaticComplexity = %d, want 5", m.CyclomaticComplexity)
	}
	if m.NestingDepth != 4 {
		t.Errorf("NestingDepth = %d, want 4", m.NestingDepth)
	}
	if m.FunctionCount != 1 {
		t.Errorf("FunctionCount = %d, want 1", m.FunctionCount)
	}
}

func TestAnalyzeComplexity_IndentFallback(t *testing.T) {
	content := "def f():\n    if x:\n        if y:\n            return 1\n"
	m := AnalyzeComplexity(SourceFile{Path: "f.py", Language: "python", Content: content})
	if m.NestingDepth != 3 {
		t.Errorf("NestingDepth = %d, want 3 (indentation-based)", m.NestingDepth)
	}
}

func TestAnalyzeComplexity_FileSizePenalty(t *testing.T) {
	tests := []struct {
		lines int
		want  int
	}{
		{30, 0},
		{60, mediumFilePenalty},
		{150, largeFilePenalty},
	}
	for _, tt := range tests {
		content := strings.Repeat("x = 1\n", tt.lines)
		m := AnalyzeComplexity(SourceFile{Path: "big.py", Content: content})
		if m.FileSizePenalty != tt.want {
			t.Errorf("%d lines: FileSizePenalty = %d, want %d", tt.lines, m.FileSizePenalty, tt.want)
		}
	}
}

func TestAnalyzeComplexity_FunctionLengthPenalty(t *testing.T) {
	var b strings.Builder
	b.WriteString("func long() {\n")
	for i := 0; i < 60; i++ {
		b.WriteString("\tx++\n")
	}
	b.WriteString("}\n")
	b.WriteString("func medium() {\n")
	for i := 0; i < 30; i++ {
		b.WriteString("\tx++\n")
	}
	b.WriteString("}\n")

	m := AnalyzeComplexity(SourceFile{Path: "funcs.go", Language: "go", Content: b.String()})
	if m.FunctionCount != 2 {
		t.Errorf("FunctionCount = %d, want 2", m.FunctionCount)
	}
	want := funcLengthLargePenalty + funcLengthMediumPenalty
	if m.FunctionLengthPenalty != want {
		t.Errorf("FunctionLengthPenalty = %d, want %d", m.FunctionLengthPenalty, want)
	}
}

func TestAnalyzeComplexity_ScoreCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("if a { if b { if c { } } }\n")
	}
	m := AnalyzeComplexity(SourceFile{Path: "dense.go", Content: b.String()})
	if m.TotalScore != staticScorePerFileMax {
		t.Errorf("TotalScore = %d, want capped at %d", m.TotalScore, staticScorePerFileMax)
	}
}

func TestComplexityIssues(t *testing.T) {
	tests := []struct {
		name    string
		metrics FileMetrics
		want    string
	}{
		{"cyclomatic", FileMetrics{CyclomaticComplexity: 12}, "high cyclomatic complexity"},
		{"nesting", FileMetrics{NestingDepth: 5}, "deep nesting"},
		{"long functions", FileMetrics{FunctionLengthPenalty: 3}, "long functions"},
		{"control structures", FileMetrics{ControlStructures: 16}, "many control structures"},
		{"fallback", FileMetrics{}, "multiple complexity factors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ComplexityIssues(tt.metrics)
			found := false
			for _, issue := range issues {
				if issue == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("ComplexityIssues() = %v, want to contain %q", issues, tt.want)
			}
		})
	}
}

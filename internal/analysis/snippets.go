package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emataei/pr-companion/internal/gitctx"
)

const (
	maxSnippets        = 3
	maxSnippetLines    = 20
	snippetLineMinimum = 1
)

// KeySnippets selects the most relevant diff excerpts for AI prompts.
// Larger, non-test changes win; each excerpt keeps only meaningful diff
// lines and is capped in length.
func KeySnippets(changes []gitctx.FileChange) string {
	ranked := make([]gitctx.FileChange, len(changes))
	copy(ranked, changes)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IsTest != b.IsTest {
			return !a.IsTest // non-test files first
		}
		sizeA := a.LinesAdded + a.LinesRemoved
		sizeB := b.LinesAdded + b.LinesRemoved
		if sizeA != sizeB {
			return sizeA > sizeB
		}
		return len(a.Patch) > len(b.Patch)
	})

	var b strings.Builder
	count := 0
	for _, c := range ranked {
		if count == maxSnippets {
			break
		}
		lines := meaningfulDiffLines(c.Patch)
		if len(lines) < snippetLineMinimum {
			continue
		}
		if len(lines) > maxSnippetLines {
			lines = lines[:maxSnippetLines]
		}
		fmt.Fprintf(&b, "\n%s:\n%s\n", c.Path, strings.Join(lines, "\n"))
		count++
	}
	return strings.TrimRight(b.String(), "\n")
}

// meaningfulDiffLines filters a unified diff down to its hunk headers and
// changed lines, dropping git bookkeeping.
func meaningfulDiffLines(patch string) []string {
	var lines []string
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"), strings.HasPrefix(line, "index "):
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, "-"), strings.HasPrefix(line, "@@"):
			lines = append(lines, line)
		case strings.TrimSpace(line) != "":
			lines = append(lines, line)
		}
	}
	return lines
}

// TruncateDiff caps a diff at maxBytes, cutting at a line boundary.
func TruncateDiff(diff string, maxBytes int) string {
	if maxBytes <= 0 || len(diff) <= maxBytes {
		return diff
	}
	cut := diff[:maxBytes]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return cut + "\n[diff truncated]"
}

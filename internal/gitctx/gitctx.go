package gitctx

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// FileChange represents a single changed file with its diff context.
type FileChange struct {
	Path         string `json:"path"`
	ChangeType   string `json:"changeType"` // added, modified, deleted, renamed
	LinesAdded   int    `json:"linesAdded"`
	LinesRemoved int    `json:"linesRemoved"`
	Patch        string `json:"patch,omitempty"`
	IsTest       bool   `json:"isTest"`
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string `json:"root"`
	Head   string `json:"head"`
	Branch string `json:"branch"`
}

// DiffOptions controls how diffs are gathered.
type DiffOptions struct {
	ContextLines int
	MaxDiffBytes int
}

// GetRepoMeta collects repository metadata from git.
func GetRepoMeta(repoPath string) (RepoMeta, error) {
	root, err := gitOutput(repoPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput(repoPath, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput(repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Changes returns the per-file changes between two revisions.
func Changes(repoPath, base, head string, opts DiffOptions) ([]FileChange, error) {
	out, err := gitOutput(repoPath, "diff", "--name-status", base+".."+head)
	if err != nil {
		return nil, fmt.Errorf("git diff --name-status %s..%s: %w", base, head, err)
	}

	var changes []FileChange
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		status, path := parts[0], parts[1]
		if strings.HasPrefix(status, "R") && len(parts) > 2 {
			path = parts[2] // renamed: use the new path
		}

		patch, err := fileDiff(repoPath, base, head, path, opts)
		if err != nil {
			patch = ""
		}
		added, removed := CountDiffLines(patch)

		changes = append(changes, FileChange{
			Path:         path,
			ChangeType:   changeType(status),
			LinesAdded:   added,
			LinesRemoved: removed,
			Patch:        patch,
			IsTest:       IsTestPath(path),
		})
	}
	return changes, nil
}

// StagedChanges returns the per-file changes staged in the index.
func StagedChanges(repoPath string, opts DiffOptions) ([]FileChange, error) {
	out, err := gitOutput(repoPath, "diff", "--cached", "--name-status")
	if err != nil {
		return nil, fmt.Errorf("git diff --cached --name-status: %w", err)
	}

	var changes []FileChange
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		status, path := parts[0], parts[1]
		if strings.HasPrefix(status, "R") && len(parts) > 2 {
			path = parts[2]
		}

		patch, err := stagedFileDiff(repoPath, path, opts)
		if err != nil {
			patch = ""
		}
		added, removed := CountDiffLines(patch)

		changes = append(changes, FileChange{
			Path:         path,
			ChangeType:   changeType(status),
			LinesAdded:   added,
			LinesRemoved: removed,
			Patch:        patch,
			IsTest:       IsTestPath(path),
		})
	}
	return changes, nil
}

// StagedDiff returns the combined staged diff text, truncated to
// opts.MaxDiffBytes when set.
func StagedDiff(repoPath string, opts DiffOptions) (string, error) {
	args := []string{"diff", "--cached"}
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	diff, err := gitOutput(repoPath, args...)
	if err != nil {
		return "", fmt.Errorf("git diff --cached: %w", err)
	}
	if opts.MaxDiffBytes > 0 && len(diff) > opts.MaxDiffBytes {
		diff = diff[:opts.MaxDiffBytes]
	}
	return diff, nil
}

// RangeDiff returns the combined diff text for base..head, truncated to
// opts.MaxDiffBytes when set.
func RangeDiff(repoPath, base, head string, opts DiffOptions) (string, error) {
	args := []string{"diff"}
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	args = append(args, base+".."+head)
	diff, err := gitOutput(repoPath, args...)
	if err != nil {
		return "", fmt.Errorf("git diff %s..%s: %w", base, head, err)
	}
	if opts.MaxDiffBytes > 0 && len(diff) > opts.MaxDiffBytes {
		diff = diff[:opts.MaxDiffBytes]
	}
	return diff, nil
}

// CountDiffLines counts added and removed lines in a unified diff,
// excluding the +++/--- file headers.
func CountDiffLines(patch string) (added, removed int) {
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// IsTestPath reports whether a path looks like a test file.
func IsTestPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "/test") ||
		strings.Contains(lower, ".test.") ||
		strings.Contains(lower, ".spec.") ||
		strings.Contains(lower, "__tests__") ||
		strings.HasSuffix(lower, "_test.go")
}

var remoteURLPattern = regexp.MustCompile(`(?:github\.com[:/])([^/]+)/([^/.]+?)(?:\.git)?/?$`)

// DetectRepo determines the owner and repository name from the origin remote.
func DetectRepo(repoPath string) (owner, repo string, err error) {
	out, err := gitOutput(repoPath, "remote", "get-url", "origin")
	if err != nil {
		return "", "", fmt.Errorf("no origin remote: %w", err)
	}
	m := remoteURLPattern.FindStringSubmatch(strings.TrimSpace(out))
	if m == nil {
		return "", "", fmt.Errorf("cannot parse GitHub owner/repo from remote %q", strings.TrimSpace(out))
	}
	return m[1], m[2], nil
}

func changeType(status string) string {
	switch {
	case strings.HasPrefix(status, "A"):
		return "added"
	case strings.HasPrefix(status, "D"):
		return "deleted"
	case strings.HasPrefix(status, "R"):
		return "renamed"
	default:
		return "modified"
	}
}

func stagedFileDiff(repoPath, path string, opts DiffOptions) (string, error) {
	args := []string{"diff", "--cached"}
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	args = append(args, "--", path)
	diff, err := gitOutput(repoPath, args...)
	if err != nil {
		return "", err
	}
	if opts.MaxDiffBytes > 0 && len(diff) > opts.MaxDiffBytes {
		diff = diff[:opts.MaxDiffBytes]
	}
	return diff, nil
}

func fileDiff(repoPath, base, head, path string, opts DiffOptions) (string, error) {
	args := []string{"diff"}
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	args = append(args, base+".."+head, "--", path)
	diff, err := gitOutput(repoPath, args...)
	if err != nil {
		return "", err
	}
	if opts.MaxDiffBytes > 0 && len(diff) > opts.MaxDiffBytes {
		diff = diff[:opts.MaxDiffBytes]
	}
	return diff, nil
}

func gitOutput(repoPath string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	if repoPath != "" {
		cmd.Dir = filepath.Clean(repoPath)
	}
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

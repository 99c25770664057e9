package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// assignRepl keeps the key name and separator of an assignment-shaped match
// so static analysis downstream still sees `password = "..."` and friends.
const assignRepl = `${1}${2}"` + placeholder + `"`

// secretRule pairs a pattern with a name so tests and future reporting can
// refer to what matched. An empty repl replaces the whole match with the
// placeholder.
type secretRule struct {
	name string
	re   *regexp.Regexp
	repl string
}

var secretRules = []secretRule{
	{"generic-api-key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)(\s*[:=]\s*)["']?[A-Za-z0-9/+=_-]{20,}["']?`), assignRepl},
	{"aws-access-key-id", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), ""},
	{"aws-secret-access-key", regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)(\s*[:=]\s*)["']?[A-Za-z0-9/+=]{40}["']?`), assignRepl},
	{"credential-assignment", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)(\s*[:=]\s*)["'][^"']{8,}["']`), assignRepl},
	{"bearer-token", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`), ""},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`), ""},
	{"private-key-block", regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`), ""},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`), ""},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`), ""},
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`), ""},
	{"google-key", regexp.MustCompile(`AIza[A-Za-z0-9_-]{35}`), ""},
	{"openai-key", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`), ""},
	{"hex-secret", regexp.MustCompile(`(?i)(key|secret|token)(\s*[:=]\s*)["']?[0-9a-f]{32,}["']?`), assignRepl},
}

// Secrets replaces detected secret values with [REDACTED]. Assignment-shaped
// matches keep their key and separator so `password = "hunter2"` becomes
// `password = "[REDACTED]"` rather than vanishing entirely.
func Secrets(text string) string {
	result := text
	for _, rule := range secretRules {
		repl := rule.repl
		if repl == "" {
			repl = placeholder
		}
		result = rule.re.ReplaceAllString(result, repl)
	}
	return result
}

// ShouldRedactPath reports whether path matches any of the redaction globs.
// Patterns with a leading **/ also match on the bare filename, since
// filepath.Match has no recursive wildcard.
func ShouldRedactPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		if bare := strings.TrimPrefix(pattern, "**/"); bare != pattern {
			if matched, err := filepath.Match(bare, filepath.Base(path)); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// Content redacts secrets from file content. Files matching a redaction glob
// are blanked entirely instead of scanned.
func Content(content, path string, redactPaths []string) string {
	if ShouldRedactPath(path, redactPaths) {
		return placeholder + " (file content redacted by path policy)\n"
	}
	return Secrets(content)
}

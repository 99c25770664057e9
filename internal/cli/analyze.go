package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emataei/pr-companion/internal/analysis"
	"github.com/emataei/pr-companion/internal/cache"
	"github.com/emataei/pr-companion/internal/config"
	"github.com/emataei/pr-companion/internal/github"
	"github.com/emataei/pr-companion/internal/gitctx"
	"github.com/emataei/pr-companion/internal/providers"
	"github.com/emataei/pr-companion/internal/redact"
)

const defaultRange = "origin/main..HEAD"

// Shared analysis flags
var (
	flagPR           int
	flagRepo         string
	flagRange        string
	flagStaged       bool
	flagTitle        string
	flagDescription  string
	flagProvider     string
	flagModel        string
	flagFormat       string
	flagOut          string
	flagOutputDir    string
	flagPolicy       string
	flagFailOn       string
	flagMaxDiffBytes int
	flagNoAI         bool
	flagNoRedact     bool
)

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagPR, "pr", 0, "GitHub pull request number to analyze")
	cmd.Flags().StringVar(&flagRepo, "repo", "", "GitHub repository as owner/name (auto-detected if omitted)")
	cmd.Flags().StringVar(&flagRange, "range", "", "Local revision range base..head (default: "+defaultRange+")")
	cmd.Flags().BoolVar(&flagStaged, "staged", false, "Analyze staged changes instead of a revision range")
	cmd.Flags().StringVar(&flagTitle, "title", "", "Change title for local analysis")
	cmd.Flags().StringVar(&flagDescription, "description", "", "Change description for local analysis")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "AI provider (auto, anthropic, openai, azure, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for result artifacts")
	cmd.Flags().StringVar(&flagPolicy, "policy", "", "Scoring policy file path")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail when the quality gate blocks (none, blocking)")
	cmd.Flags().IntVar(&flagMaxDiffBytes, "max-diff-bytes", 0, "Maximum diff size in bytes")
	cmd.Flags().BoolVar(&flagNoAI, "no-ai", false, "Skip AI analysis, use heuristics only")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagOutputDir != "" {
		m["outputDir"] = flagOutputDir
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagMaxDiffBytes > 0 {
		m["maxDiffBytes"] = fmt.Sprintf("%d", flagMaxDiffBytes)
	}
	if flagPolicy != "" {
		m["policyFile"] = flagPolicy
	}
	if flagRepo != "" {
		m["repo"] = flagRepo
	}
	return m
}

// changeSet is the analyzer input: either a GitHub PR or a local diff.
type changeSet struct {
	Title       string
	Description string
	Number      int
	Changes     []gitctx.FileChange
	Diff        string
}

func (cs *changeSet) paths() []string {
	paths := make([]string, 0, len(cs.Changes))
	for _, c := range cs.Changes {
		paths = append(paths, c.Path)
	}
	return paths
}

// loadChangeSet gathers the change set from GitHub (--pr) or local git.
// The returned client is non-nil only in PR mode.
func loadChangeSet(ctx context.Context, cfg config.Config) (changeSet, *github.Client, error) {
	if flagPR > 0 {
		client, err := newGitHubClient(cfg)
		if err != nil {
			return changeSet{}, nil, err
		}
		pr, err := client.FetchPRContext(ctx, flagPR)
		if err != nil {
			return changeSet{}, nil, fmt.Errorf("fetching PR #%d: %w", flagPR, err)
		}
		return changeSet{
			Title:       pr.Title,
			Description: pr.Description,
			Number:      pr.Number,
			Changes:     pr.Changes,
			Diff:        pr.Diff,
		}, client, nil
	}

	opts := gitctx.DiffOptions{MaxDiffBytes: cfg.MaxDiffBytes}

	if flagStaged {
		changes, err := gitctx.StagedChanges("", opts)
		if err != nil {
			return changeSet{}, nil, err
		}
		diff, err := gitctx.StagedDiff("", opts)
		if err != nil {
			return changeSet{}, nil, err
		}
		fallback := "Staged changes"
		if meta, err := gitctx.GetRepoMeta(""); err == nil && meta.Branch != "" {
			fallback = "Staged changes on " + meta.Branch
		}
		return changeSet{
			Title:       titleOr(fallback),
			Description: flagDescription,
			Changes:     changes,
			Diff:        diff,
		}, nil, nil
	}

	revRange := flagRange
	if revRange == "" {
		revRange = defaultRange
	}
	base, head, ok := strings.Cut(revRange, "..")
	if !ok || base == "" || head == "" {
		return changeSet{}, nil, fmt.Errorf("invalid revision range %q, expected base..head", revRange)
	}

	changes, err := gitctx.Changes("", base, head, opts)
	if err != nil {
		return changeSet{}, nil, err
	}
	diff, err := gitctx.RangeDiff("", base, head, opts)
	if err != nil {
		return changeSet{}, nil, err
	}
	return changeSet{
		Title:       titleOr(revRange),
		Description: flagDescription,
		Changes:     changes,
		Diff:        diff,
	}, nil, nil
}

func titleOr(fallback string) string {
	if flagTitle != "" {
		return flagTitle
	}
	return fallback
}

func newGitHubClient(cfg config.Config) (*github.Client, error) {
	owner, repo := cfg.GitHub.Owner, cfg.GitHub.Repo
	if owner == "" || repo == "" {
		detectedOwner, detectedRepo, err := gitctx.DetectRepo("")
		if err != nil {
			return nil, fmt.Errorf("cannot determine repository (set --repo or GITHUB_REPOSITORY): %w", err)
		}
		if owner == "" {
			owner = detectedOwner
		}
		if repo == "" {
			repo = detectedRepo
		}
	}
	return github.NewClient(os.Getenv("GITHUB_TOKEN"), owner, repo, log)
}

// redactChangeSet strips secrets from everything that may reach a provider.
func redactChangeSet(cs *changeSet, cfg config.Config) {
	if !cfg.Privacy.RedactSecrets || flagNoRedact {
		if flagNoRedact {
			fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
		}
		return
	}
	cs.Diff = redact.Secrets(cs.Diff)
	for i := range cs.Changes {
		cs.Changes[i].Patch = redact.Secrets(cs.Changes[i].Patch)
	}
}

// sourceFiles builds the full-content view of the change set used by the
// quality gate and cognitive scorer. Files that cannot be read locally
// (deleted, or PR-only analysis outside a checkout) fall back to their
// patch text.
func sourceFiles(cs *changeSet, cfg config.Config) []analysis.SourceFile {
	files := make([]analysis.SourceFile, 0, len(cs.Changes))
	for _, c := range cs.Changes {
		if c.ChangeType == "deleted" {
			continue
		}
		content := ""
		if data, err := os.ReadFile(c.Path); err == nil {
			content = string(data)
		} else {
			content = c.Patch
		}
		if cfg.Privacy.RedactSecrets && !flagNoRedact {
			content = redact.Content(content, c.Path, cfg.Privacy.RedactPaths)
		}
		files = append(files, analysis.SourceFile{
			Path:     c.Path,
			Content:  content,
			Language: analysis.DetectLanguage(c.Path),
		})
	}
	return files
}

// buildProvider returns the configured AI provider, wrapped with the
// response cache. An empty or "auto" provider setting picks the first
// provider with credentials in the environment. Returns nil when AI is
// disabled or unconfigured; the analyzers degrade to heuristics on nil.
func buildProvider(cfg config.Config) providers.Completer {
	if flagNoAI {
		return nil
	}
	var p providers.Completer
	var err error
	if cfg.Provider == "" || cfg.Provider == "auto" {
		p, err = providers.Detect(cfg.Model)
	} else {
		p, err = providers.New(cfg.Provider, cfg.Model)
	}
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.Provider).Msg("AI provider unavailable, using heuristics")
		return nil
	}
	store, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		return p
	}
	return providers.WithCache(p, cfg.Model, store)
}

func riskKeywordsFrom(policy config.Policy) analysis.RiskKeywords {
	kw := analysis.DefaultRiskKeywords()
	if len(policy.Risk.HighKeywords) > 0 {
		kw.High = policy.Risk.HighKeywords
	}
	if len(policy.Risk.MediumKeywords) > 0 {
		kw.Medium = policy.Risk.MediumKeywords
	}
	return kw
}

func scoringPolicyFrom(policy config.Policy) analysis.ScoringPolicy {
	return analysis.ScoringPolicy{
		Tier0Max:              policy.Tiers.Tier0Max,
		Tier1Max:              policy.Tiers.Tier1Max,
		AutoMergeMaxFiles:     policy.AutoMerge.MaxFiles,
		AutoMergeBlockedPaths: policy.AutoMerge.BlockedPaths,
	}
}

// buildLabels derives the managed label set for a report.
func buildLabels(policy config.Policy, report *analysis.PreReviewReport) []string {
	var labels []string
	if report.Cognitive != nil {
		labels = append(labels, fmt.Sprintf("%s%d", policy.Labels.TierPrefix, report.Cognitive.Tier))
	}
	if report.Intent != nil {
		labels = append(labels, policy.Labels.IntentPrefix+string(report.Intent.PrimaryIntent))
	}
	if report.RiskLevel != analysis.RiskNone {
		labels = append(labels, policy.Labels.RiskPrefix+string(report.RiskLevel))
	}
	return labels
}

func managedPrefixes(policy config.Policy) []string {
	return []string{policy.Labels.TierPrefix, policy.Labels.IntentPrefix, policy.Labels.RiskPrefix}
}

// writeResult writes v as indented JSON to path, or stdout when path is "".
func writeResult(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if path == "" {
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// appendStepOutputs appends key=value pairs to $GITHUB_OUTPUT when running
// inside a workflow step.
func appendStepOutputs(pairs [][2]string) {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Warn().Err(err).Msg("cannot write step outputs")
		return
	}
	defer f.Close()
	for _, kv := range pairs {
		fmt.Fprintf(f, "%s=%s\n", kv[0], kv[1])
	}
}

package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emataei/pr-companion/internal/analysis"
	"github.com/emataei/pr-companion/internal/config"
	"github.com/emataei/pr-companion/internal/github"
	"github.com/emataei/pr-companion/internal/output"
	"github.com/emataei/pr-companion/internal/providers"
)

const (
	intentArtifact    = "intent.json"
	impactArtifact    = "impact.json"
	prereviewArtifact = "prereview.json"
	reportArtifact    = "report.md"
)

var flagDryRun bool

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run the full analysis pipeline",
	Long: "Run quality gate, cognitive scoring, intent classification, impact prediction\n" +
		"and the pre-review summary. Writes all result artifacts to the output directory.\n" +
		"With --pr, posts or updates the PR comment and managed labels.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		policy, err := config.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return err
		}

		ctx := context.Background()
		cs, client, err := loadChangeSet(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		redactChangeSet(&cs, cfg)

		provider := buildProvider(cfg)
		report := runPipeline(ctx, &cs, cfg, policy, provider)

		writeArtifacts(&report, cfg)

		if err := output.WriteReport(&report, cfg.Format, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if flagPR > 0 {
			if flagDryRun {
				fmt.Fprintf(os.Stderr, "Dry run: not posting to PR #%d (labels: %v)\n",
					flagPR, buildLabels(policy, &report))
			} else if err := publishToPR(ctx, client, &report, policy); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
		}

		if report.Quality != nil && !report.Quality.Passed && cfg.FailOn == "blocking" {
			exitCode = ExitGateFailure
		}
		return nil
	},
}

// runPipeline executes every analyzer in dependency order: quality feeds its
// penalty into cognitive scoring, and both feed the pre-review report.
func runPipeline(ctx context.Context, cs *changeSet, cfg config.Config, policy config.Policy, provider providers.Completer) analysis.PreReviewReport {
	quality := runQualityGate(ctx, cs, cfg, provider)

	scorer := analysis.NewScorer(provider, log)
	scorer.SetPolicy(scoringPolicyFrom(policy))
	cognitive := scorer.Score(ctx, sourceFiles(cs, cfg), quality.Penalty)

	classifier := analysis.NewClassifier(provider, log)
	intent := classifier.Classify(ctx, cs.Title, cs.Description, cs.Changes)

	predictor := analysis.NewPredictor(provider, log)
	impact := predictor.Predict(ctx, cs.Title, cs.Description, cs.Changes)

	prereviewer := analysis.NewPreReviewer(provider, riskKeywordsFrom(policy), log)
	report := prereviewer.Analyze(ctx, cs.paths(), cs.Diff, &quality, &cognitive)
	report.Intent = &intent
	report.Impact = &impact
	return report
}

// writeArtifacts persists every analyzer result plus the Markdown report to
// the output directory. Artifact failures are logged, never fatal.
func writeArtifacts(report *analysis.PreReviewReport, cfg config.Config) {
	artifacts := []struct {
		name string
		v    any
	}{
		{qualityArtifact, report.Quality},
		{cognitiveArtifact, report.Cognitive},
		{intentArtifact, report.Intent},
		{impactArtifact, report.Impact},
		{prereviewArtifact, report},
	}
	for _, a := range artifacts {
		if err := writeResult(a.v, filepath.Join(cfg.OutputDir, a.name)); err != nil {
			log.Warn().Err(err).Str("artifact", a.name).Msg("cannot write artifact")
		}
	}

	body, err := renderMarkdown(report)
	if err != nil {
		log.Warn().Err(err).Msg("cannot render markdown report")
		return
	}
	path := filepath.Join(cfg.OutputDir, reportArtifact)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		log.Warn().Err(err).Str("artifact", reportArtifact).Msg("cannot write artifact")
	}
}

func renderMarkdown(report *analysis.PreReviewReport) ([]byte, error) {
	var buf bytes.Buffer
	w := &output.MarkdownWriter{}
	if err := w.Write(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// publishToPR upserts the analysis comment and reconciles managed labels.
func publishToPR(ctx context.Context, client *github.Client, report *analysis.PreReviewReport, policy config.Policy) error {
	body, err := renderMarkdown(report)
	if err != nil {
		return fmt.Errorf("rendering comment: %w", err)
	}
	if err := client.UpsertComment(ctx, flagPR, string(body)); err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}
	if err := client.ApplyLabels(ctx, flagPR, buildLabels(policy, report), managedPrefixes(policy)); err != nil {
		return fmt.Errorf("applying labels: %w", err)
	}
	log.Info().Int("pr", flagPR).Msg("posted analysis comment and labels")
	return nil
}

func init() {
	addAnalyzeFlags(reviewCmd)
	reviewCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Run analysis but don't post to GitHub")
}

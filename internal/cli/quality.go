package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emataei/pr-companion/internal/analysis"
	"github.com/emataei/pr-companion/internal/config"
	"github.com/emataei/pr-companion/internal/providers"
)

const qualityArtifact = "quality.json"

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Run the quality gate over changed files",
	Long: "Run security, code-smell and complexity checks (plus optional AI review) over the\n" +
		"changed files. Exits 1 when blocking issues are found and --fail-on is \"blocking\".",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		ctx := context.Background()
		cs, _, err := loadChangeSet(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		redactChangeSet(&cs, cfg)

		result := runQualityGate(ctx, &cs, cfg, buildProvider(cfg))

		if err := writeResult(result, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if err := writeResult(result, filepath.Join(cfg.OutputDir, qualityArtifact)); err != nil {
			log.Warn().Err(err).Msg("cannot write quality artifact")
		}

		appendStepOutputs([][2]string{
			{"quality_gate_passed", strconv.FormatBool(result.Passed)},
			{"quality_score", strconv.Itoa(result.Score)},
			{"quality_penalty", strconv.Itoa(result.Penalty)},
		})

		if !result.Passed && cfg.FailOn == "blocking" {
			exitCode = ExitGateFailure
		}
		return nil
	},
}

// runQualityGate assembles standards and source files and runs the gate.
func runQualityGate(ctx context.Context, cs *changeSet, cfg config.Config, provider providers.Completer) analysis.QualityResult {
	standards, err := analysis.LoadStandards(".")
	if err != nil {
		log.Warn().Err(err).Msg("cannot load coding standards")
	}
	gate := analysis.NewGate(provider, standards, log)
	result := gate.Analyze(ctx, sourceFiles(cs, cfg))
	capFindings(&result, cfg.MaxFindings)
	return result
}

// capFindings trims the reported issue lists to max entries in total,
// keeping blocking issues first. The score and penalty are computed from the
// full set before trimming.
func capFindings(result *analysis.QualityResult, max int) {
	if max <= 0 {
		return
	}
	for _, issues := range []*[]analysis.QualityIssue{
		&result.BlockingIssues, &result.WarningIssues, &result.AdvisoryIssues,
	} {
		if len(*issues) > max {
			*issues = (*issues)[:max]
		}
		max -= len(*issues)
	}
}

func init() {
	addAnalyzeFlags(qualityCmd)
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emataei/pr-companion/internal/analysis"
	"github.com/emataei/pr-companion/internal/config"
)

const cognitiveArtifact = "cognitive.json"

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute the cognitive complexity score and review tier",
	Long: "Score a change set for cognitive complexity and assign a review tier.\n" +
		"Folds in the quality penalty from an earlier quality run when present.",
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
		cs, _, err := loadChangeSet(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		redactChangeSet(&cs, cfg)

		penalty := qualityPenaltyFor(ctx, &cs, cfg)

		scorer := analysis.NewScorer(buildProvider(cfg), log)
		scorer.SetPolicy(scoringPolicyFrom(policy))
		result := scorer.Score(ctx, sourceFiles(&cs, cfg), penalty)

		if err := writeResult(result, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if err := writeResult(result, filepath.Join(cfg.OutputDir, cognitiveArtifact)); err != nil {
			log.Warn().Err(err).Msg("cannot write cognitive artifact")
		}

		appendStepOutputs([][2]string{
			{"review_tier", strconv.Itoa(result.Tier)},
			{"total_score", strconv.Itoa(result.TotalScore)},
		})
		return nil
	},
}

// qualityPenaltyFor reads the penalty from a prior quality artifact; when
// none exists it runs the local gate checks (no AI) to derive one.
func qualityPenaltyFor(ctx context.Context, cs *changeSet, cfg config.Config) int {
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, qualityArtifact))
	if err == nil {
		var prior analysis.QualityResult
		if err := json.Unmarshal(data, &prior); err == nil {
			return prior.Penalty
		}
	}
	result := runQualityGate(ctx, cs, cfg, nil)
	return result.Penalty
}

func init() {
	addAnalyzeFlags(scoreCmd)
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emataei/pr-companion/internal/analysis"
	"github.com/emataei/pr-companion/internal/config"
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Predict downstream impact of a change",
	Long:  "Predict impacts, test recommendations, risk score and deployment readiness for a pull request or local change set.",
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

		predictor := analysis.NewPredictor(buildProvider(cfg), log)
		result := predictor.Predict(ctx, cs.Title, cs.Description, cs.Changes)

		if err := writeResult(result, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	addAnalyzeFlags(impactCmd)
}

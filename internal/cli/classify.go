package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emataei/pr-companion/internal/analysis"
	"github.com/emataei/pr-companion/internal/config"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the intent behind a change",
	Long:  "Classify a pull request or local change set into an intent category with confidence and secondary intents.",
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

		classifier := analysis.NewClassifier(buildProvider(cfg), log)
		result := classifier.Classify(ctx, cs.Title, cs.Description, cs.Changes)

		if err := writeResult(result, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	addAnalyzeFlags(classifyCmd)
}

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
	"github.com/emataei/pr-companion/internal/config"
)

var flagLabelsDryRun bool

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Apply managed analysis labels to a pull request",
	Long: "Apply the tier, intent and risk labels derived from the latest analysis run.\n" +
		"Stale labels under the managed prefixes are removed; other labels are untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagPR <= 0 {
			fmt.Fprintln(os.Stderr, "Error: --pr is required")
			exitCode = ExitUsageError
			return nil
		}

		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		policy, err := config.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(filepath.Join(cfg.OutputDir, prereviewArtifact))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: no analysis artifact found in %s, run \"pr-companion review\" first\n", cfg.OutputDir)
			exitCode = ExitRuntimeError
			return nil
		}
		var report analysis.PreReviewReport
		if err := json.Unmarshal(data, &report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: parsing %s: %v\n", prereviewArtifact, err)
			exitCode = ExitRuntimeError
			return nil
		}

		desired := buildLabels(policy, &report)
		if flagLabelsDryRun {
			fmt.Fprintf(os.Stdout, "Would apply: %s\n", strings.Join(desired, ", "))
			return nil
		}

		client, err := newGitHubClient(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}
		if err := client.ApplyLabels(context.Background(), flagPR, desired, managedPrefixes(policy)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stdout, "Labels applied to %s/%s#%d: %s\n", client.Owner(), client.Repo(), flagPR, strings.Join(desired, ", "))
		return nil
	},
}

func init() {
	addAnalyzeFlags(labelsCmd)
	labelsCmd.Flags().BoolVar(&flagLabelsDryRun, "dry-run", false, "Print labels without applying them")
}

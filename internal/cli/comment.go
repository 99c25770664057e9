package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emataei/pr-companion/internal/analysis"
	"github.com/emataei/pr-companion/internal/config"
)

var flagBodyFile string

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Post or update the analysis comment on a pull request",
	Long: "Post the Markdown analysis report as a PR comment. An existing comment from a\n" +
		"previous run is updated in place, never duplicated. The body comes from --body-file\n" +
		"or from the report artifact written by a prior \"review\" run.",
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

		body, err := commentBody(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		client, err := newGitHubClient(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		if err := client.UpsertComment(context.Background(), flagPR, body); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stdout, "Comment posted to %s/%s#%d.\n", client.Owner(), client.Repo(), flagPR)
		return nil
	},
}

// commentBody loads the comment text: an explicit file, the Markdown report
// artifact, or a render of the pre-review artifact, in that order.
func commentBody(cfg config.Config) (string, error) {
	if flagBodyFile != "" {
		data, err := os.ReadFile(flagBodyFile)
		if err != nil {
			return "", fmt.Errorf("reading body file: %w", err)
		}
		return string(data), nil
	}

	if data, err := os.ReadFile(filepath.Join(cfg.OutputDir, reportArtifact)); err == nil {
		return string(data), nil
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, prereviewArtifact))
	if err != nil {
		return "", fmt.Errorf("no report artifact found in %s, run \"pr-companion review\" first", cfg.OutputDir)
	}
	var report analysis.PreReviewReport
	if err := json.Unmarshal(data, &report); err != nil {
		return "", fmt.Errorf("parsing %s: %w", prereviewArtifact, err)
	}
	body, err := renderMarkdown(&report)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func init() {
	addAnalyzeFlags(commentCmd)
	commentCmd.Flags().StringVar(&flagBodyFile, "body-file", "", "Markdown file to post as the comment body")
}

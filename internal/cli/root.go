package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes reported to CI.
const (
	ExitSuccess      = 0
	ExitGateFailure  = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var (
	flagLogLevel string
	log          zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pr-companion",
	Short: "Pull request analysis toolkit",
	Long: "pr-companion analyzes pull requests and local change sets: intent\n" +
		"classification, impact prediction, a quality gate, cognitive scoring,\n" +
		"and managed PR comments and labels.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = newLogger(flagLogLevel)
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print pr-companion version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "pr-companion version %s\n", version)
	},
}

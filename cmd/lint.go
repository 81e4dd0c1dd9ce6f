package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tspack/tspack/pkg/pipeline"
)

func init() {
	rootCmd.AddCommand(newLintCmd())
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [-- <extra linter args>]",
		Short: "Lint the build output",
		Long: `Runs the configured linter over the emitted JavaScript directory and
prints its summary. This is the post-job hook on its own; it expects a
previous build to have produced output.`,
		Args: cobra.ArbitraryArgs,
		RunE: runLint,
	}
}

func runLint(cmd *cobra.Command, args []string) error {
	s, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	p := pipeline.New(s, log)
	p.LintArgs = append(p.LintArgs, args...)
	p.SkipLint = false // asking for lint explicitly overrides skip-lint

	return p.Lint(cmd.Context())
}

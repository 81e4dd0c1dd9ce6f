package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tspack/tspack/pkg/logger"
	"github.com/tspack/tspack/pkg/settings"
)

var rootCmd = &cobra.Command{
	Use:   "tspack",
	Short: "Build adapter for TypeScript packages",
	Long: `tspack validates a TypeScript package, compiles it with the
project-local tsc, lints the emitted JavaScript, and patches the package
manifest with default entry points.

It can run standalone or be driven hook-by-hook by a host packaging tool:
validate (pre-build), build, lint (post-job), and manifest each map to one
lifecycle hook.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("project", "C", ".", "Project directory to operate on")
	flags.String("out-dir", "dist-src", "Directory receiving emitted JavaScript")
	flags.String("types-dir", "dist-types", "Directory receiving emitted type declarations")
	flags.String("linter", "eslint", "Linter binary resolved from node_modules/.bin")
	flags.Bool("skip-lint", false, "Skip the post-build lint step")
	flags.BoolP("verbose", "v", false, "Verbose output; streams raw compiler output")
	flags.Bool("no-color", false, "Disable colored output")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadSettings resolves layered settings for the invoked command and
// builds the logger to match.
func loadSettings(cmd *cobra.Command) (*settings.Settings, *logrus.Logger, error) {
	s, err := settings.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	return s, logger.New(s.Verbose), nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tspack/tspack/pkg/pipeline"
)

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the project without building it",
		Long: `Runs the validation hooks only: tsconfig.json inspection, source layout
checks, and compiler resolution. Configuration mismatches are warnings;
missing files and a missing compiler are errors.`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	color := colorEnabled(s.NoColor)

	p := pipeline.New(s, log)
	ctx := cmd.Context()

	if err := p.ValidateConfig(ctx); err != nil {
		return err
	}
	fmt.Printf("%s tsconfig.json\n", render(successStyle, "ok", color))

	if err := p.ValidateLayout(); err != nil {
		return err
	}
	fmt.Printf("%s source layout\n", render(successStyle, "ok", color))

	bin, err := p.ResolveCompiler()
	if err != nil {
		return err
	}
	fmt.Printf("%s compiler (%s)\n", render(successStyle, "ok", color), bin)

	return nil
}

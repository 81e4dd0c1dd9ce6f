package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tspack/tspack/pkg/pipeline"
)

var buildDryRun bool

func init() {
	rootCmd.AddCommand(newBuildCmd())
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [-- <extra tsc args>]",
		Short: "Compile the package and run the full lifecycle",
		Long: `Runs the complete build lifecycle: tsconfig validation, source layout
validation, compilation with the project-local tsc, lint over the emitted
JavaScript, and manifest patching.

Arguments after -- are appended to the tsc invocation:

  tspack build -- --strict --noUnusedLocals

On a terminal the build runs under a compact progress UI; use --verbose to
stream the raw compiler output instead.`,
		Args: cobra.ArbitraryArgs,
		RunE: runBuild,
	}

	cmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Print the compiler invocation without running it")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	p := pipeline.New(s, log)
	p.ExtraArgs = append(p.ExtraArgs, args...)
	p.DryRun = buildDryRun

	ctx := cmd.Context()
	color := colorEnabled(s.NoColor)

	if !color || s.Verbose || buildDryRun {
		if err := p.Run(ctx); err != nil {
			return err
		}
		if !buildDryRun {
			fmt.Println(render(successStyle, "Build complete", color))
		}
		return nil
	}

	// TUI path: validations run plain, the compile streams into the
	// progress UI, then lint and manifest patching run plain again.
	if err := p.ValidateConfig(ctx); err != nil {
		return err
	}
	if err := p.ValidateLayout(); err != nil {
		return err
	}
	bin, err := p.ResolveCompiler()
	if err != nil {
		return err
	}
	if err := runBuildTUI(ctx, bin, p.CompilerOptions()); err != nil {
		return err
	}
	if err := p.Lint(ctx); err != nil {
		return err
	}
	if err := p.PatchManifest(); err != nil {
		return err
	}

	fmt.Println(render(successStyle, "Build complete", true))
	return nil
}

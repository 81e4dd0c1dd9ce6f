package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tspack/tspack/pkg/pipeline"
)

func init() {
	rootCmd.AddCommand(newManifestCmd())
}

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Patch package.json with default entry points",
		Long: `Sets the "source" and "types" fields of package.json to the build
output's entry points. Fields that are already set are left alone.`,
		Args: cobra.NoArgs,
		RunE: runManifest,
	}
}

func runManifest(cmd *cobra.Command, args []string) error {
	s, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	p := pipeline.New(s, log)
	if err := p.PatchManifest(); err != nil {
		return err
	}

	fmt.Println(render(successStyle, "package.json up to date", colorEnabled(s.NoColor)))
	return nil
}

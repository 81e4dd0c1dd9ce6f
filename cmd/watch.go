package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tspack/tspack/pkg/pipeline"
	"github.com/tspack/tspack/pkg/watcher"
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [-- <extra tsc args>]",
		Short: "Rebuild whenever sources change",
		Long: `Runs the build lifecycle once, then watches src/ and the project
configuration files and reruns it after every change. A failing rebuild is
reported and the watch continues.`,
		Args: cobra.ArbitraryArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	p := pipeline.New(s, log)
	p.ExtraArgs = append(p.ExtraArgs, args...)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial build; a failure here is reported but does not stop the
	// watch, the whole point is iterating until it passes.
	if err := p.Run(ctx); err != nil {
		log.WithError(err).Error("build failed")
	}

	w, err := watcher.New(s.Project, []string{s.OutDir, s.TypesDir}, log)
	if err != nil {
		return err
	}

	err = w.Run(ctx, func(ctx context.Context) error {
		return p.Run(ctx)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

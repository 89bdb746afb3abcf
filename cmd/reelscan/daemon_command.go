package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelscan/internal/daemon"
	"reelscan/internal/watch"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the reelscan daemon",
		Long:  "Runs the media watcher, periodic sweeps, and the HTTP API in the foreground until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.buildLogger(true)
			if err != nil {
				return err
			}
			pipeline, err := ctx.buildPipeline(logger)
			if err != nil {
				return err
			}

			watcher := watch.New(cfg, pipeline.Scanner, pipeline.Registry, logger)
			d, err := daemon.New(cfg, pipeline.Store, pipeline.Registry, pipeline.Scanner, watcher, pipeline.Posters, logger)
			if err != nil {
				_ = pipeline.Close()
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				_ = d.Close()
				return err
			}
			<-runCtx.Done()
			return d.Close()
		},
	}
}

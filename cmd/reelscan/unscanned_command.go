package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelscan/internal/config"
)

func newUnscannedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unscanned [dir]",
		Short: "List recognized video files not yet scanned",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				dir, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				cfg.Paths.MediaDir = dir
			}

			logger, err := ctx.buildLogger(false)
			if err != nil {
				return err
			}
			pipeline, err := ctx.buildPipeline(logger)
			if err != nil {
				return err
			}
			defer pipeline.Close()

			records, err := pipeline.Store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}
			pipeline.Registry.Load(records)

			unscanned, err := pipeline.Scanner.ListUnscanned()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(unscanned) == 0 {
				fmt.Fprintln(out, "No unscanned files found.")
				return nil
			}
			for _, path := range unscanned {
				fmt.Fprintln(out, path)
			}
			fmt.Fprintf(out, "%d unscanned file(s)\n", len(unscanned))
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelscan/internal/config"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <path>",
		Short: "Characterize a single video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if !cfg.RecognizedExtension(path) {
				return fmt.Errorf("%s is not a recognized video file", path)
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

			result := pipeline.Scanner.Characterize(cmd.Context(), path)
			out := cmd.OutOrStdout()
			if !result.Success {
				fmt.Fprintln(out, result.Message)
				return nil
			}

			record := result.Record
			fmt.Fprintf(out, "%s: %s\n", record.Filename, result.Message)
			rows := [][]string{
				{"Format", formatDetail(record.Format, record.FormatDetail)},
				{"Resolution", record.Resolution},
				{"Audio", record.AudioCodec},
				{"Video bitrate", formatKbps(record.VideoBitrateKbps)},
				{"Audio bitrate", formatKbps(record.AudioBitrateKbps)},
				{"Duration", formatDuration(record.DurationSeconds)},
				{"Size", formatSize(record.FileSizeBytes)},
			}
			if record.Title != "" {
				rows = append(rows, []string{"Title", record.Title})
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

func formatDetail(format, detail string) string {
	if detail == "" {
		return format
	}
	return fmt.Sprintf("%s (%s)", format, detail)
}

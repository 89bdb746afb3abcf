package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"reelscan/internal/registry"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scanned files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := registry.OpenStore(cfg.Paths.DataDir)
			if err != nil {
				return fmt.Errorf("open registry store: %w", err)
			}
			defer store.Close()

			records, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No files scanned yet.")
				return nil
			}

			sort.Slice(records, func(i, j int) bool {
				return records[i].Filename < records[j].Filename
			})
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.Filename,
					formatDetail(record.Format, record.FormatDetail),
					record.Resolution,
					record.AudioCodec,
					formatSize(record.FileSizeBytes),
				})
			}
			headers := []string{"File", "Format", "Resolution", "Audio", "Size"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "%d file(s) scanned\n", len(records))
			return nil
		},
	}
}

package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var healthFlag bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show transcription counts per channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()

			if healthFlag {
				health, err := st.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Database: %s\n", health.DBPath)
				fmt.Fprintf(out, "Exists: %s  Readable: %s  Integrity: %s\n",
					yesNo(health.DatabaseExists), yesNo(health.DatabaseReadable), yesNo(health.IntegrityCheck))
				if len(health.MissingTables) > 0 {
					fmt.Fprintf(out, "Missing tables: %v\n", health.MissingTables)
				}
				fmt.Fprintf(out, "Rows: %d processed, %d pending\n", health.ProcessedRows, health.PendingRows)
				return nil
			}

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if len(stats.PerChannel) == 0 && stats.PendingCount == 0 {
				fmt.Fprintln(out, "No transcriptions recorded yet")
				return nil
			}

			channels := make([]string, 0, len(stats.PerChannel))
			for channel := range stats.PerChannel {
				channels = append(channels, channel)
			}
			sort.Strings(channels)

			rows := make([][]string, 0, len(channels))
			for _, channel := range channels {
				entry := stats.PerChannel[channel]
				rows = append(rows, []string{
					channel,
					strconv.Itoa(entry.Success),
					strconv.Itoa(entry.Failed),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Channel", "Succeeded", "Failed"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Pending: %d\n", stats.PendingCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&healthFlag, "health", false, "Check state database health instead of showing counts")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPendingCommand(ctx *commandContext) *cobra.Command {
	var channelFlag string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List jobs waiting on the transcription service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPendingList(ctx, cmd, channelFlag)
		},
	}

	cmd.Flags().StringVar(&channelFlag, "channel", "", "Restrict listing to one channel")
	return cmd
}

func runPendingList(ctx *commandContext, cmd *cobra.Command, channel string) error {
	st, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	jobs, err := st.ListPending(cmd.Context(), channel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No pending transcriptions")
		return nil
	}

	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.Channel,
			truncate(job.Title, 48),
			job.TranscriptionID,
			formatSince(job.SubmittedAt),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Channel", "Title", "Job ID", "Submitted"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}

func newFailedCommand(ctx *commandContext) *cobra.Command {
	var channelFlag string

	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List episodes whose transcription failed",
		Long: `Failed lists episodes recorded with a failed outcome. A failed episode is
eligible again: the next submit pass will create a fresh job for it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			episodes, err := st.ListFailed(cmd.Context(), channelFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(episodes) == 0 {
				fmt.Fprintln(out, "No failed transcriptions")
				return nil
			}

			rows := make([][]string, 0, len(episodes))
			for _, ep := range episodes {
				rows = append(rows, []string{
					ep.Channel,
					truncate(ep.Title, 48),
					ep.ProcessedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Channel", "Title", "Failed At"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&channelFlag, "channel", "", "Restrict listing to one channel")
	return cmd
}

func truncate(value string, max int) string {
	if max <= 3 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func formatSince(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	elapsed := time.Since(t)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return t.Local().Format("2006-01-02")
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podscribe/internal/output"
	"podscribe/internal/reconciler"
)

func newPollCommand(ctx *commandContext) *cobra.Command {
	var channelFlag string
	var listFlag bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Check pending transcriptions and collect finished results",
		Long: `Poll checks every pending job against the transcription service. Finished
jobs have their transcripts written to the output directory and move to the
processed table; jobs that failed remotely are recorded as failed. Transient
errors leave jobs pending for the next poll.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listFlag {
				return runPendingList(ctx, cmd, channelFlag)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.withLock(func() error {
				st, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer st.Close()

				svc, err := ctx.speechClient()
				if err != nil {
					return err
				}

				rec := reconciler.New(st, svc, output.NewWriter(cfg.Paths.OutputDir), ctx.ensureLogger())
				totals, err := rec.ReconcileAll(cmd.Context(), channelFlag)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%d completed, %d still running, %d failed, %d errors\n",
					totals.Completed, totals.StillRunning, totals.Failed, totals.Errored)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&channelFlag, "channel", "", "Restrict polling to one channel")
	cmd.Flags().BoolVar(&listFlag, "list", false, "List pending jobs instead of polling")
	return cmd
}

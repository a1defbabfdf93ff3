package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"podscribe/internal/config"
	"podscribe/internal/feed"
	"podscribe/internal/submitter"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var nameFlag string
	var langFlag string
	var maxFlag int
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "submit [rss-url]",
		Short: "Submit new feed episodes for transcription",
		Long: `Submit fetches a podcast RSS feed, skips episodes already transcribed or
in flight, and creates a remote transcription job for each new episode.

With --all every channel from the configuration file is processed instead
of a single feed URL.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if allFlag == (len(args) == 1) {
				return errors.New("provide either an rss url or --all")
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

				sub := submitter.New(st, svc, ctx.ensureLogger())
				feeds := feed.NewClient()
				out := cmd.OutOrStdout()

				if allFlag {
					if len(cfg.Channels) == 0 {
						return errors.New("no channels configured; add [[channels]] entries or pass an rss url")
					}
					for _, channel := range cfg.Channels {
						summary, err := submitChannel(cmd, feeds, sub, channel)
						if err != nil {
							fmt.Fprintf(out, "%s: %v\n", channel.Name, err)
							continue
						}
						printSummary(cmd, channel.Name, summary)
					}
					return nil
				}

				channel := config.Channel{
					Name:        nameFlag,
					URL:         args[0],
					Language:    langFlag,
					MaxEpisodes: maxFlag,
				}
				summary, err := submitChannel(cmd, feeds, sub, channel)
				if err != nil {
					return err
				}
				printSummary(cmd, channel.Name, summary)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Channel name (defaults to a slug of the feed title)")
	cmd.Flags().StringVarP(&langFlag, "lang", "l", "auto", "Transcription language (BCP-47 locale or \"auto\")")
	cmd.Flags().IntVar(&maxFlag, "max", 5, "Maximum episodes to consider per feed")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Submit every configured channel")
	return cmd
}

func submitChannel(cmd *cobra.Command, feeds *feed.Client, sub *submitter.Submitter, channel config.Channel) (submitter.Summary, error) {
	parsed, err := feeds.Fetch(cmd.Context(), channel.URL, channel.MaxEpisodes)
	if err != nil {
		return submitter.Summary{}, fmt.Errorf("fetch feed: %w", err)
	}

	name := channel.Name
	if name == "" {
		name = parsed.ChannelSlug()
	}
	language := channel.Language
	if language == "" {
		language = "auto"
	}

	return sub.SubmitAll(cmd.Context(), parsed.Episodes, name, language)
}

func printSummary(cmd *cobra.Command, channel string, summary submitter.Summary) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d submitted, %d skipped, %d failed\n",
		channel, summary.Submitted, summary.Skipped, summary.Failed)
}

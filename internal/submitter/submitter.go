// Package submitter dedups episodes against recorded state and creates
// remote transcription jobs for the ones that still need one.
package submitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"podscribe/internal/feed"
	"podscribe/internal/logging"
	"podscribe/internal/services"
	"podscribe/internal/speech"
	"podscribe/internal/store"
)

// Submitter submits feed episodes for transcription.
type Submitter struct {
	store  *store.Store
	speech speech.Service
	logger *slog.Logger
}

// New creates a Submitter.
func New(st *store.Store, svc speech.Service, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Submitter{
		store:  st,
		speech: svc,
		logger: logging.NewComponentLogger(logger, "submitter"),
	}
}

// Submit dedups one episode and, when new, creates a remote job and records
// it as pending. Returns the remote job id. Duplicate episodes return
// ErrAlreadyProcessed or ErrAlreadyPending; a rejected remote call returns
// ErrSubmit and writes no local state.
func (s *Submitter) Submit(ctx context.Context, episode feed.Episode, channel, language string) (string, error) {
	id := store.Identity{EpisodeID: episode.ID, Channel: channel}

	processed, err := s.store.IsProcessedSuccess(ctx, id)
	if err != nil {
		return "", services.Wrap(services.ErrStore, "submitter", "submit", "check processed", err)
	}
	if processed {
		return "", services.Wrap(services.ErrAlreadyProcessed, "submitter", "submit", episode.Title, nil)
	}

	pending, err := s.store.IsPending(ctx, id)
	if err != nil {
		return "", services.Wrap(services.ErrStore, "submitter", "submit", "check pending", err)
	}
	if pending {
		return "", services.Wrap(services.ErrAlreadyPending, "submitter", "submit", episode.Title, nil)
	}

	jobID, err := s.speech.CreateJob(ctx, speech.CreateJobRequest{
		AudioURL: episode.AudioURL,
		Language: language,
	})
	if err != nil {
		return "", services.Wrap(services.ErrSubmit, "submitter", "submit", fmt.Sprintf("create job for %q", episode.Title), err)
	}

	if err := s.store.UpsertPending(ctx, store.PendingJob{
		EpisodeID:       episode.ID,
		Channel:         channel,
		Title:           episode.Title,
		AudioURL:        episode.AudioURL,
		TranscriptionID: jobID,
		Published:       episode.Published,
		Duration:        episode.Duration,
	}); err != nil {
		// The remote job exists but we failed to record it. Surface the
		// store error; the next submit pass would otherwise duplicate it.
		return "", services.Wrap(services.ErrStore, "submitter", "submit", "record pending job", err)
	}

	s.logger.Info("submitted episode",
		logging.String(logging.FieldChannel, channel),
		logging.String(logging.FieldEpisode, episode.ID),
		logging.String(logging.FieldJobID, jobID))
	return jobID, nil
}

// Summary aggregates a batch submission pass.
type Summary struct {
	Submitted int
	Skipped   int
	Failed    int
}

// SubmitAll submits every episode in the slice, skipping duplicates and
// counting per-episode failures without aborting the batch. Store faults
// abort: state visibility is gone at that point.
func (s *Submitter) SubmitAll(ctx context.Context, episodes []feed.Episode, channel, language string) (Summary, error) {
	var summary Summary
	for _, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		_, err := s.Submit(ctx, episode, channel, language)
		switch {
		case err == nil:
			summary.Submitted++
		case services.IsSkip(err):
			summary.Skipped++
			s.logger.Debug("skipped episode",
				logging.String(logging.FieldChannel, channel),
				logging.String(logging.FieldEpisode, episode.ID),
				logging.Error(err))
		default:
			if isStoreFault(err) {
				return summary, err
			}
			summary.Failed++
			s.logger.Warn("episode submission failed",
				logging.String(logging.FieldChannel, channel),
				logging.String(logging.FieldEpisode, episode.ID),
				logging.Error(err))
		}
	}
	return summary, nil
}

func isStoreFault(err error) bool {
	return errors.Is(err, services.ErrStore)
}

// Package reconciler polls in-flight transcription jobs and drives each one
// to its terminal state: artifacts written and a processed outcome recorded.
package reconciler

import (
	"context"
	"log/slog"

	"podscribe/internal/logging"
	"podscribe/internal/output"
	"podscribe/internal/services"
	"podscribe/internal/speech"
	"podscribe/internal/store"
	"podscribe/internal/transcript"
)

// OutcomeKind classifies the result of reconciling one pending job.
type OutcomeKind string

const (
	// OutcomeCompleted means artifacts were written and a success recorded.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeStillRunning means the remote job has not finished yet.
	OutcomeStillRunning OutcomeKind = "still-running"
	// OutcomeFailed means a terminal failure was recorded.
	OutcomeFailed OutcomeKind = "failed"
	// OutcomeError means a transient fault left the job pending for retry.
	OutcomeError OutcomeKind = "error"
)

// Outcome reports what happened to a single pending job.
type Outcome struct {
	Kind       OutcomeKind
	OutputPath string
	Err        error
}

// Totals aggregates a full reconciliation pass.
type Totals struct {
	Completed    int
	StillRunning int
	Failed       int
	Errored      int
}

// Reconciler advances pending jobs based on remote status.
type Reconciler struct {
	store  *store.Store
	speech speech.Service
	writer *output.Writer
	logger *slog.Logger
}

// New creates a Reconciler.
func New(st *store.Store, svc speech.Service, writer *output.Writer, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{
		store:  st,
		speech: svc,
		writer: writer,
		logger: logging.NewComponentLogger(logger, "reconciler"),
	}
}

// ReconcileOne checks one pending job and applies the matching transition.
// Transient faults (network, result fetch, artifact writes) leave the
// pending record and remote job untouched and surface in Outcome.Err; only
// store faults return a non-nil error.
func (r *Reconciler) ReconcileOne(ctx context.Context, job store.PendingJob) (Outcome, error) {
	status, err := r.speech.GetStatus(ctx, job.TranscriptionID)
	if err != nil {
		return r.transient(job, "get status", err), nil
	}

	switch status.State {
	case speech.StateNotStarted, speech.StateRunning:
		return Outcome{Kind: OutcomeStillRunning}, nil

	case speech.StateFailed:
		if err := r.recordTerminal(ctx, job, "", store.StatusFailed); err != nil {
			return Outcome{}, err
		}
		r.logger.Warn("transcription failed remotely",
			logging.String(logging.FieldChannel, job.Channel),
			logging.String(logging.FieldEpisode, job.EpisodeID),
			logging.String(logging.FieldJobID, job.TranscriptionID),
			logging.String("reason", status.Message))
		return Outcome{Kind: OutcomeFailed, Err: services.Wrap(services.ErrTerminal, "reconciler", "poll", status.Message, nil)}, nil

	case speech.StateSucceeded:
		return r.complete(ctx, job)

	default:
		return r.transient(job, "status", services.Wrap(services.ErrTransient, "reconciler", "poll", "unexpected state "+string(status.State), nil)), nil
	}
}

func (r *Reconciler) complete(ctx context.Context, job store.PendingJob) (Outcome, error) {
	segments, err := r.speech.FetchSegments(ctx, job.TranscriptionID)
	if err != nil {
		return r.transient(job, "fetch result", err), nil
	}

	// A succeeded job with nothing recognized will never produce more on a
	// retry, so it resolves as a permanent failure.
	if len(segments) == 0 {
		if err := r.recordTerminal(ctx, job, "", store.StatusFailed); err != nil {
			return Outcome{}, err
		}
		r.logger.Warn("transcription succeeded with no recognized speech",
			logging.String(logging.FieldChannel, job.Channel),
			logging.String(logging.FieldEpisode, job.EpisodeID),
			logging.String(logging.FieldJobID, job.TranscriptionID))
		return Outcome{Kind: OutcomeFailed, Err: services.Wrap(services.ErrTerminal, "reconciler", "poll", "no recognized speech", nil)}, nil
	}

	meta := transcript.Metadata{
		Title:     job.Title,
		Channel:   job.Channel,
		Published: job.Published,
		Duration:  job.Duration,
	}
	path, err := r.writer.Write(meta, segments)
	if err != nil {
		// Keep the pending entry and the remote job: the result still
		// exists remotely and the write can be retried.
		return r.transient(job, "write artifacts", err), nil
	}

	if err := r.recordTerminal(ctx, job, path, store.StatusSuccess); err != nil {
		return Outcome{}, err
	}
	r.logger.Info("transcription completed",
		logging.String(logging.FieldChannel, job.Channel),
		logging.String(logging.FieldEpisode, job.EpisodeID),
		logging.String("output", path))
	return Outcome{Kind: OutcomeCompleted, OutputPath: path}, nil
}

// recordTerminal writes the processed outcome, removes the pending row, and
// deletes the remote job. Remote cleanup is best effort: a leaked job costs
// storage quota, not correctness.
func (r *Reconciler) recordTerminal(ctx context.Context, job store.PendingJob, outputPath string, status store.OutcomeStatus) error {
	id := job.Identity()
	if err := r.store.UpsertProcessed(ctx, id, job.Title, outputPath, status); err != nil {
		return services.Wrap(services.ErrStore, "reconciler", "reconcile", "record outcome", err)
	}
	if err := r.store.RemovePending(ctx, id); err != nil {
		return services.Wrap(services.ErrStore, "reconciler", "reconcile", "remove pending", err)
	}
	if err := r.speech.DeleteJob(ctx, job.TranscriptionID); err != nil {
		r.logger.Warn("failed to delete remote job",
			logging.String(logging.FieldJobID, job.TranscriptionID),
			logging.Error(err))
	}
	return nil
}

func (r *Reconciler) transient(job store.PendingJob, operation string, err error) Outcome {
	wrapped := err
	if !services.IsTransient(wrapped) {
		wrapped = services.Wrap(services.ErrTransient, "reconciler", operation, job.EpisodeID, err)
	}
	r.logger.Warn("transient reconcile failure, will retry",
		logging.String(logging.FieldChannel, job.Channel),
		logging.String(logging.FieldEpisode, job.EpisodeID),
		logging.String(logging.FieldJobID, job.TranscriptionID),
		logging.Error(wrapped))
	return Outcome{Kind: OutcomeError, Err: wrapped}
}

// ReconcileAll runs one pass over every pending job, optionally restricted
// to a channel. Individual job faults never abort the pass.
func (r *Reconciler) ReconcileAll(ctx context.Context, channel string) (Totals, error) {
	jobs, err := r.store.ListPending(ctx, channel)
	if err != nil {
		return Totals{}, services.Wrap(services.ErrStore, "reconciler", "reconcile", "list pending", err)
	}

	var totals Totals
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return totals, err
		}
		outcome, err := r.ReconcileOne(ctx, job)
		if err != nil {
			return totals, err
		}
		switch outcome.Kind {
		case OutcomeCompleted:
			totals.Completed++
		case OutcomeStillRunning:
			totals.StillRunning++
		case OutcomeFailed:
			totals.Failed++
		case OutcomeError:
			totals.Errored++
		}
	}
	return totals, nil
}

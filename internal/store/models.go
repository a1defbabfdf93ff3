package store

import (
	"strings"
	"time"
)

// Identity is the composite deduplication key for an episode. EpisodeID is
// supplied by the feed source and is only unique within a channel.
type Identity struct {
	EpisodeID string
	Channel   string
}

// OutcomeStatus is the terminal state recorded for a processed episode.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailed  OutcomeStatus = "failed"
)

// ParseOutcomeStatus converts a string into a known OutcomeStatus.
func ParseOutcomeStatus(value string) (OutcomeStatus, bool) {
	normalized := OutcomeStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StatusSuccess, StatusFailed:
		return normalized, true
	}
	return "", false
}

// PendingJob is one in-flight transcription job. At most one pending row
// exists per identity, enforced by a unique constraint.
type PendingJob struct {
	ID              int64
	EpisodeID       string
	Channel         string
	Title           string
	AudioURL        string
	TranscriptionID string
	SubmittedAt     time.Time
	Published       *time.Time
	Duration        string
}

// Identity returns the deduplication key for the job.
func (j PendingJob) Identity() Identity {
	return Identity{EpisodeID: j.EpisodeID, Channel: j.Channel}
}

// ProcessedEpisode is one resolved outcome. OutputPath is set only for
// successful outcomes.
type ProcessedEpisode struct {
	ID          int64
	EpisodeID   string
	Channel     string
	Title       string
	ProcessedAt time.Time
	Status      OutcomeStatus
	OutputPath  string
}

// ChannelStats counts terminal outcomes for one channel.
type ChannelStats struct {
	Success int
	Failed  int
}

// Stats aggregates processed outcomes per channel plus the number of jobs
// still in flight across all channels.
type Stats struct {
	PerChannel   map[string]ChannelStats
	PendingCount int
}

// DatabaseHealth captures diagnostic information about the state database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	ProcessedRows    int
	PendingRows      int
	Error            string
}

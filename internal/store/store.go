package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"podscribe/internal/config"
)

// Store manages transcription job state backed by SQLite. Two tables hold the
// full lifecycle: pending_episodes for in-flight jobs and processed_episodes
// for terminal outcomes, both uniquely keyed by (episode_id, channel).
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the state database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the state database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// IsProcessedSuccess reports whether a processed record with status success
// exists for the identity. Failed outcomes deliberately do not count: they
// remain eligible for resubmission.
func (s *Store) IsProcessedSuccess(ctx context.Context, id Identity) (bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT 1 FROM processed_episodes WHERE episode_id = ? AND channel = ? AND status = ?`,
		id.EpisodeID, id.Channel, StatusSuccess,
	)
	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check processed: %w", err)
	}
	return true, nil
}

// IsPending reports whether an in-flight job exists for the identity.
func (s *Store) IsPending(ctx context.Context, id Identity) (bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT 1 FROM pending_episodes WHERE episode_id = ? AND channel = ?`,
		id.EpisodeID, id.Channel,
	)
	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check pending: %w", err)
	}
	return true, nil
}

// UpsertProcessed creates or replaces the terminal outcome for an identity.
// A later resubmission overwrites the prior outcome: the store records
// current truth, not history. Any pending row for the same identity is left
// alone; callers remove it explicitly.
func (s *Store) UpsertProcessed(ctx context.Context, id Identity, title, outputPath string, status OutcomeStatus) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO processed_episodes (episode_id, channel, title, processed_at, status, output_path)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (episode_id, channel) DO UPDATE SET
             title = excluded.title,
             processed_at = excluded.processed_at,
             status = excluded.status,
             output_path = excluded.output_path`,
		id.EpisodeID, id.Channel, title, now, status, nullableString(outputPath),
	)
	if err != nil {
		return fmt.Errorf("upsert processed: %w", err)
	}
	return nil
}

// UpsertPending creates or replaces the in-flight record for an identity and
// stamps SubmittedAt. The unique constraint guarantees at most one pending
// job per identity even if two invocations race.
func (s *Store) UpsertPending(ctx context.Context, job PendingJob) error {
	if strings.TrimSpace(job.TranscriptionID) == "" {
		return errors.New("transcription id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO pending_episodes (episode_id, channel, title, audio_url, transcription_id, submitted_at, published, duration)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (episode_id, channel) DO UPDATE SET
             title = excluded.title,
             audio_url = excluded.audio_url,
             transcription_id = excluded.transcription_id,
             submitted_at = excluded.submitted_at,
             published = excluded.published,
             duration = excluded.duration`,
		job.EpisodeID, job.Channel, job.Title, job.AudioURL, job.TranscriptionID,
		now, nullableTime(job.Published), nullableString(job.Duration),
	)
	if err != nil {
		return fmt.Errorf("upsert pending: %w", err)
	}
	return nil
}

// RemovePending deletes the in-flight record if present; a no-op when absent.
func (s *Store) RemovePending(ctx context.Context, id Identity) error {
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM pending_episodes WHERE episode_id = ? AND channel = ?`,
		id.EpisodeID, id.Channel,
	)
	if err != nil {
		return fmt.Errorf("remove pending: %w", err)
	}
	return nil
}

// GetPending fetches the in-flight record for an identity, or nil when absent.
func (s *Store) GetPending(ctx context.Context, id Identity) (*PendingJob, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+pendingColumns+` FROM pending_episodes WHERE episode_id = ? AND channel = ?`,
		id.EpisodeID, id.Channel,
	)
	job, err := scanPending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending: %w", err)
	}
	return job, nil
}

// ListPending returns all in-flight jobs, optionally restricted to one
// channel, ordered by submission time.
func (s *Store) ListPending(ctx context.Context, channel string) ([]PendingJob, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if channel == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+pendingColumns+` FROM pending_episodes ORDER BY submitted_at`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+pendingColumns+` FROM pending_episodes WHERE channel = ? ORDER BY submitted_at`, channel)
	}
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var jobs []PendingJob
	for rows.Next() {
		job, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// ListFailed returns processed records with status failed, optionally
// restricted to one channel, ordered by resolution time.
func (s *Store) ListFailed(ctx context.Context, channel string) ([]ProcessedEpisode, error) {
	var (
		rows *sql.Rows
		err  error
	)
	base := `SELECT ` + processedColumns + ` FROM processed_episodes WHERE status = ?`
	if channel == "" {
		rows, err = s.db.QueryContext(ctx, base+` ORDER BY processed_at`, StatusFailed)
	} else {
		rows, err = s.db.QueryContext(ctx, base+` AND channel = ? ORDER BY processed_at`, StatusFailed, channel)
	}
	if err != nil {
		return nil, fmt.Errorf("list failed: %w", err)
	}
	defer rows.Close()

	var episodes []ProcessedEpisode
	for rows.Next() {
		ep, err := scanProcessed(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, *ep)
	}
	return episodes, rows.Err()
}

// Stats returns processed counts grouped by channel and status plus the
// total number of in-flight jobs.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{PerChannel: make(map[string]ChannelStats)}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT channel, status, COUNT(1) FROM processed_episodes GROUP BY channel, status`,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("stats query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var channel, statusStr string
		var count int
		if err := rows.Scan(&channel, &statusStr, &count); err != nil {
			return Stats{}, err
		}
		entry := stats.PerChannel[channel]
		switch OutcomeStatus(statusStr) {
		case StatusSuccess:
			entry.Success = count
		case StatusFailed:
			entry.Failed = count
		}
		stats.PerChannel[channel] = entry
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM pending_episodes`)
	if err := row.Scan(&stats.PendingCount); err != nil {
		return Stats{}, fmt.Errorf("count pending: %w", err)
	}
	return stats, nil
}

// CheckHealth returns diagnostic information about the state database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("state database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat state database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("state database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("state database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping state database: %w", err)
	}
	health.DatabaseReadable = true

	expected := []string{"processed_episodes", "pending_episodes"}
	for _, table := range expected {
		var name string
		row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		if err := row.Scan(&name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				health.MissingTables = append(health.MissingTables, table)
				continue
			}
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
		health.TablesPresent = append(health.TablesPresent, name)
	}

	if len(health.MissingTables) == 0 {
		row := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM processed_episodes")
		if err := row.Scan(&health.ProcessedRows); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count processed rows: %w", err)
		}
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM pending_episodes")
		if err := row.Scan(&health.PendingRows); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count pending rows: %w", err)
		}
	}

	row := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

const pendingColumns = "id, episode_id, channel, title, audio_url, transcription_id, submitted_at, published, duration"

const processedColumns = "id, episode_id, channel, title, processed_at, status, output_path"

func scanPending(scanner interface{ Scan(dest ...any) error }) (*PendingJob, error) {
	var (
		id           int64
		episodeID    string
		channel      string
		title        sql.NullString
		audioURL     string
		jobID        string
		submittedRaw sql.NullString
		publishedRaw sql.NullString
		duration     sql.NullString
	)

	if err := scanner.Scan(&id, &episodeID, &channel, &title, &audioURL, &jobID, &submittedRaw, &publishedRaw, &duration); err != nil {
		return nil, err
	}

	job := &PendingJob{
		ID:              id,
		EpisodeID:       episodeID,
		Channel:         channel,
		Title:           title.String,
		AudioURL:        audioURL,
		TranscriptionID: jobID,
		Duration:        duration.String,
	}
	if submittedRaw.Valid {
		submitted, err := parseTimeString(submittedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse submitted_at %q: %w", submittedRaw.String, err)
		}
		job.SubmittedAt = submitted
	}
	if publishedRaw.Valid {
		published, err := parseTimeString(publishedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse published %q: %w", publishedRaw.String, err)
		}
		job.Published = &published
	}
	return job, nil
}

func scanProcessed(scanner interface{ Scan(dest ...any) error }) (*ProcessedEpisode, error) {
	var (
		id           int64
		episodeID    string
		channel      string
		title        sql.NullString
		processedRaw sql.NullString
		statusStr    string
		outputPath   sql.NullString
	)

	if err := scanner.Scan(&id, &episodeID, &channel, &title, &processedRaw, &statusStr, &outputPath); err != nil {
		return nil, err
	}

	ep := &ProcessedEpisode{
		ID:         id,
		EpisodeID:  episodeID,
		Channel:    channel,
		Title:      title.String,
		Status:     OutcomeStatus(statusStr),
		OutputPath: outputPath.String,
	}
	if processedRaw.Valid {
		processed, err := parseTimeString(processedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse processed_at %q: %w", processedRaw.String, err)
		}
		ep.ProcessedAt = processed
	}
	return ep, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// Package store persists transcription job state in a single SQLite
// database. Pending jobs move to processed outcomes exactly once; a
// unique (episode_id, channel) key on both tables dedups submissions.
package store

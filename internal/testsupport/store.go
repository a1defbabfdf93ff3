package testsupport

import (
	"context"
	"testing"

	"podscribe/internal/config"
	"podscribe/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SeedPending inserts a pending job for tests.
func SeedPending(t testing.TB, st *store.Store, job store.PendingJob) {
	t.Helper()

	if err := st.UpsertPending(context.Background(), job); err != nil {
		t.Fatalf("store.UpsertPending: %v", err)
	}
}

// SeedProcessed inserts a processed outcome for tests.
func SeedProcessed(t testing.TB, st *store.Store, id store.Identity, title, outputPath string, status store.OutcomeStatus) {
	t.Helper()

	if err := st.UpsertProcessed(context.Background(), id, title, outputPath, status); err != nil {
		t.Fatalf("store.UpsertProcessed: %v", err)
	}
}

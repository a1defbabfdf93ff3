package submitter_test

import (
	"context"
	"errors"
	"testing"

	"podscribe/internal/feed"
	"podscribe/internal/services"
	"podscribe/internal/speech"
	"podscribe/internal/store"
	"podscribe/internal/submitter"
	"podscribe/internal/testsupport"
	"podscribe/internal/transcript"
)

type fakeSpeech struct {
	nextJobID string
	createErr error
	created   []speech.CreateJobRequest
}

func (f *fakeSpeech) CreateJob(_ context.Context, req speech.CreateJobRequest) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, req)
	return f.nextJobID, nil
}

func (f *fakeSpeech) GetStatus(context.Context, string) (speech.JobStatus, error) {
	return speech.JobStatus{State: speech.StateRunning}, nil
}

func (f *fakeSpeech) FetchSegments(context.Context, string) ([]transcript.Segment, error) {
	return nil, nil
}

func (f *fakeSpeech) DeleteJob(context.Context, string) error {
	return nil
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	return testsupport.MustOpenStore(t, testsupport.NewConfig(t))
}

func episode(id string) feed.Episode {
	return feed.Episode{
		ID:       id,
		Title:    "Episode " + id,
		AudioURL: "https://cdn.example.com/" + id + ".mp3",
		Duration: "100",
	}
}

func TestSubmitNewEpisode(t *testing.T) {
	st := openStore(t)
	svc := &fakeSpeech{nextJobID: "job-1"}
	sub := submitter.New(st, svc, nil)
	ctx := context.Background()

	jobID, err := sub.Submit(ctx, episode("ep-1"), "daily-tech", "en-US")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if jobID != "job-1" {
		t.Errorf("job id = %q", jobID)
	}
	if len(svc.created) != 1 {
		t.Fatalf("expected 1 remote creation, got %d", len(svc.created))
	}
	if svc.created[0].Language != "en-US" {
		t.Errorf("language = %q", svc.created[0].Language)
	}

	pending, err := st.IsPending(ctx, store.Identity{EpisodeID: "ep-1", Channel: "daily-tech"})
	if err != nil {
		t.Fatalf("IsPending: %v", err)
	}
	if !pending {
		t.Error("expected pending record after submit")
	}
}

func TestSubmitSkipsPendingDuplicate(t *testing.T) {
	st := openStore(t)
	svc := &fakeSpeech{nextJobID: "job-1"}
	sub := submitter.New(st, svc, nil)
	ctx := context.Background()

	if _, err := sub.Submit(ctx, episode("ep-1"), "daily-tech", "auto"); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	_, err := sub.Submit(ctx, episode("ep-1"), "daily-tech", "auto")
	if !errors.Is(err, services.ErrAlreadyPending) {
		t.Fatalf("err = %v, want ErrAlreadyPending", err)
	}
	if len(svc.created) != 1 {
		t.Errorf("duplicate must not create a second remote job, got %d", len(svc.created))
	}
}

func TestSubmitSkipsProcessedSuccess(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	id := store.Identity{EpisodeID: "ep-1", Channel: "daily-tech"}
	if err := st.UpsertProcessed(ctx, id, "Episode ep-1", "/out/ep1.md", store.StatusSuccess); err != nil {
		t.Fatalf("UpsertProcessed: %v", err)
	}

	svc := &fakeSpeech{nextJobID: "job-1"}
	sub := submitter.New(st, svc, nil)

	_, err := sub.Submit(ctx, episode("ep-1"), "daily-tech", "auto")
	if !errors.Is(err, services.ErrAlreadyProcessed) {
		t.Fatalf("err = %v, want ErrAlreadyProcessed", err)
	}
	if len(svc.created) != 0 {
		t.Error("processed success must not be resubmitted")
	}
}

func TestSubmitFailedOutcomeIsResubmittable(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	id := store.Identity{EpisodeID: "ep-1", Channel: "daily-tech"}
	if err := st.UpsertProcessed(ctx, id, "Episode ep-1", "", store.StatusFailed); err != nil {
		t.Fatalf("UpsertProcessed: %v", err)
	}

	svc := &fakeSpeech{nextJobID: "job-2"}
	sub := submitter.New(st, svc, nil)

	jobID, err := sub.Submit(ctx, episode("ep-1"), "daily-tech", "auto")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if jobID != "job-2" {
		t.Errorf("job id = %q", jobID)
	}
}

func TestSubmitRemoteFailureWritesNoState(t *testing.T) {
	st := openStore(t)
	svc := &fakeSpeech{createErr: errors.New("503 service unavailable")}
	sub := submitter.New(st, svc, nil)
	ctx := context.Background()

	_, err := sub.Submit(ctx, episode("ep-1"), "daily-tech", "auto")
	if !errors.Is(err, services.ErrSubmit) {
		t.Fatalf("err = %v, want ErrSubmit", err)
	}

	pending, err := st.IsPending(ctx, store.Identity{EpisodeID: "ep-1", Channel: "daily-tech"})
	if err != nil {
		t.Fatalf("IsPending: %v", err)
	}
	if pending {
		t.Error("rejected submission must leave no pending record")
	}
}

func TestSubmitAll(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	// ep-2 is already in flight, ep-3 already succeeded.
	testsupport.SeedPending(t, st, store.PendingJob{
		EpisodeID:       "ep-2",
		Channel:         "daily-tech",
		AudioURL:        "https://cdn.example.com/ep-2.mp3",
		TranscriptionID: "job-old",
	})
	testsupport.SeedProcessed(t, st, store.Identity{EpisodeID: "ep-3", Channel: "daily-tech"}, "Episode ep-3", "/out/3.md", store.StatusSuccess)

	svc := &fakeSpeech{nextJobID: "job-new"}
	sub := submitter.New(st, svc, nil)

	episodes := []feed.Episode{episode("ep-1"), episode("ep-2"), episode("ep-3")}
	summary, err := sub.SubmitAll(ctx, episodes, "daily-tech", "auto")
	if err != nil {
		t.Fatalf("SubmitAll: %v", err)
	}
	if summary.Submitted != 1 || summary.Skipped != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want {Submitted:1 Skipped:2 Failed:0}", summary)
	}
}

func TestSubmitAllContinuesPastFailures(t *testing.T) {
	st := openStore(t)
	svc := &fakeSpeech{createErr: errors.New("rejected")}
	sub := submitter.New(st, svc, nil)

	summary, err := sub.SubmitAll(context.Background(), []feed.Episode{episode("a"), episode("b")}, "daily-tech", "auto")
	if err != nil {
		t.Fatalf("SubmitAll: %v", err)
	}
	if summary.Failed != 2 || summary.Submitted != 0 {
		t.Errorf("summary = %+v, want 2 failures", summary)
	}
}

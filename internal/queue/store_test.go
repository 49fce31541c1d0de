package queue_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"clipforge/internal/queue"
	"clipforge/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job, err := store.NewJob(ctx, "/videos/clip.mp4", "batch-1")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected job ID to be assigned")
	}
	if job.Title != "clip" {
		t.Fatalf("expected title derived from filename, got %q", job.Title)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Status != queue.StatusPending {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}
}

func TestNewJobRequiresSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.NewJob(context.Background(), "  ", "batch-1"); err == nil {
		t.Fatal("expected error when source path missing")
	}
}

func TestUpdateRejectsStatusRegression(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "/videos/clip.mp4", "batch-1")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	job.Status = queue.StatusRendering
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("advance to rendering: %v", err)
	}

	job.Status = queue.StatusTranscribing
	err = store.Update(ctx, job)
	if !errors.Is(err, queue.ErrStatusRegression) {
		t.Fatalf("expected status regression error, got %v", err)
	}
}

func TestFailedReachableFromAnyProcessingStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "/videos/clip.mp4", "batch-1")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	job.Status = queue.StatusDubbing
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("advance to dubbing: %v", err)
	}
	job.SetFailed("synthesis unavailable")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("fail job: %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusFailed || fetched.ErrorMessage == "" {
		t.Fatalf("unexpected failed job: %#v", fetched)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stuck := []queue.Status{queue.StatusLoading, queue.StatusRendering, queue.StatusValidating}
	for i, status := range stuck {
		job, err := store.NewJob(ctx, fmt.Sprintf("/videos/clip-%d.mp4", i), "batch-1")
		if err != nil {
			t.Fatalf("NewJob failed: %v", err)
		}
		job.Status = status
		if err := store.Update(ctx, job); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	done, err := store.NewJob(ctx, "/videos/done.mp4", "batch-1")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	done.SetCompleted("/out/done.webm")
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("complete job: %v", err)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if count != int64(len(stuck)) {
		t.Fatalf("expected %d jobs reset, got %d", len(stuck), count)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Pending != len(stuck) || health.Completed != 1 || health.Processing != 0 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}

func TestNextForStatusesHonorsQueueOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := store.NewJob(ctx, "/videos/a.mp4", "batch-1")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if _, err := store.NewJob(ctx, "/videos/b.mp4", "batch-1"); err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected first queued job, got %#v", next)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "/videos/clip.mp4", "batch-1")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	job.SetFailed("decode error")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("fail job: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 job retried, got %d", count)
	}
	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusPending || fetched.ErrorMessage != "" {
		t.Fatalf("unexpected retried job: %#v", fetched)
	}
}

func TestProgressNeverRegresses(t *testing.T) {
	var job queue.Job
	job.SetProgress("rendering", "halfway", 50)
	job.SetProgress("rendering", "stale update", 30)
	if job.ProgressPercent != 50 {
		t.Fatalf("progress regressed to %v", job.ProgressPercent)
	}
	job.SetProgress("rendering", "overflow", 140)
	if job.ProgressPercent != 100 {
		t.Fatalf("progress not clamped: %v", job.ProgressPercent)
	}
}

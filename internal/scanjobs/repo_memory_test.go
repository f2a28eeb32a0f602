package scanjobs

import (
	"context"
	"testing"
	"time"
)

func newQueuedJob(id string) ScanJob {
	return ScanJob{
		ID:        id,
		TenantID:  "tenant-1",
		UserID:    "user-1",
		Status:    StatusQueued,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryRepoLifecycle(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if _, ok, err := repo.NextQueued(ctx); err != nil || ok {
		t.Fatalf("NextQueued on empty repo = ok %v err %v", ok, err)
	}

	if err := repo.Create(ctx, newQueuedJob("job-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, newQueuedJob("job-2")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	next, ok, err := repo.NextQueued(ctx)
	if err != nil || !ok {
		t.Fatalf("NextQueued = ok %v err %v", ok, err)
	}
	if next.ID != "job-1" {
		t.Fatalf("NextQueued = %s, want oldest job-1", next.ID)
	}

	claimed, err := repo.MarkProcessing(ctx, "job-1")
	if err != nil || !claimed {
		t.Fatalf("MarkProcessing = %v err %v, want claimed", claimed, err)
	}
	// A second claim must lose.
	claimed, err = repo.MarkProcessing(ctx, "job-1")
	if err != nil || claimed {
		t.Fatalf("second MarkProcessing = %v err %v, want not claimed", claimed, err)
	}

	job, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != StatusProcessing || job.StartedAt == nil {
		t.Fatalf("job after claim = %+v", job)
	}
	if !job.Active() {
		t.Fatalf("processing job reported inactive")
	}

	// The processing job no longer appears in the queue.
	next, ok, _ = repo.NextQueued(ctx)
	if !ok || next.ID != "job-2" {
		t.Fatalf("NextQueued = %s ok %v, want job-2", next.ID, ok)
	}

	if err := repo.SetTotal(ctx, "job-1", 40); err != nil {
		t.Fatalf("SetTotal: %v", err)
	}
	if err := repo.UpdateProgress(ctx, "job-1", 10, 3); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if err := repo.MarkCompleted(ctx, "job-1", 40, 12); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	job, _ = repo.Get(ctx, "job-1")
	if job.Status != StatusCompleted || job.CompletedAt == nil {
		t.Fatalf("job after completion = %+v", job)
	}
	if job.TotalDocuments != 40 || job.ProcessedDocuments != 40 || job.InvoicesFound != 12 {
		t.Fatalf("counters = %d/%d/%d, want 40/40/12", job.TotalDocuments, job.ProcessedDocuments, job.InvoicesFound)
	}
	if job.Active() {
		t.Fatalf("completed job reported active")
	}
}

func TestMemoryRepoMarkFailed(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if err := repo.Create(ctx, newQueuedJob("job-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.MarkFailed(ctx, "job-1", "search inbox: boom"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	job, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != StatusFailed || job.ErrorMessage != "search inbox: boom" {
		t.Fatalf("job = %+v", job)
	}
	if job.CompletedAt == nil {
		t.Fatalf("failed job missing completion time")
	}
}

func TestMemoryRepoUnknownJob(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
	if _, err := repo.MarkProcessing(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("MarkProcessing error = %v, want ErrNotFound", err)
	}
	if err := repo.MarkFailed(ctx, "missing", "x"); err != ErrNotFound {
		t.Fatalf("MarkFailed error = %v, want ErrNotFound", err)
	}
}

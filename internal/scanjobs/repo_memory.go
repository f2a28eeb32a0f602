package scanjobs

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.Mutex
	jobs map[string]*ScanJob
	seq  []string // ids in creation order, for NextQueued
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]*ScanJob)}
}

// Create stores a new job.
func (r *MemoryRepo) Create(ctx context.Context, job ScanJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j := job
	r.jobs[j.ID] = &j
	r.seq = append(r.seq, j.ID)
	return nil
}

// Get returns a job by id.
func (r *MemoryRepo) Get(ctx context.Context, jobID string) (ScanJob, error) {
	if err := ctx.Err(); err != nil {
		return ScanJob{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return ScanJob{}, ErrNotFound
	}
	return *j, nil
}

// NextQueued returns the oldest queued job, if any.
func (r *MemoryRepo) NextQueued(ctx context.Context) (ScanJob, bool, error) {
	if err := ctx.Err(); err != nil {
		return ScanJob{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.seq {
		if j := r.jobs[id]; j.Status == StatusQueued {
			return *j, true, nil
		}
	}
	return ScanJob{}, false, nil
}

// MarkProcessing transitions queued -> processing if the job is still queued.
func (r *MemoryRepo) MarkProcessing(ctx context.Context, jobID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return false, ErrNotFound
	}
	if j.Status != StatusQueued {
		return false, nil
	}
	now := time.Now().UTC()
	j.Status = StatusProcessing
	j.StartedAt = &now
	return true, nil
}

// SetTotal records the candidate document count.
func (r *MemoryRepo) SetTotal(ctx context.Context, jobID string, total int) error {
	return r.update(ctx, jobID, func(j *ScanJob) {
		j.TotalDocuments = total
	})
}

// UpdateProgress records processed and found counters.
func (r *MemoryRepo) UpdateProgress(ctx context.Context, jobID string, processed, found int) error {
	return r.update(ctx, jobID, func(j *ScanJob) {
		j.ProcessedDocuments = processed
		j.InvoicesFound = found
	})
}

// MarkCompleted transitions to the completed terminal state.
func (r *MemoryRepo) MarkCompleted(ctx context.Context, jobID string, processed, found int) error {
	return r.update(ctx, jobID, func(j *ScanJob) {
		now := time.Now().UTC()
		j.Status = StatusCompleted
		j.ProcessedDocuments = processed
		j.InvoicesFound = found
		j.CompletedAt = &now
	})
}

// MarkFailed transitions to the failed terminal state with an error message.
func (r *MemoryRepo) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	return r.update(ctx, jobID, func(j *ScanJob) {
		now := time.Now().UTC()
		j.Status = StatusFailed
		j.ErrorMessage = errMsg
		j.CompletedAt = &now
	})
}

func (r *MemoryRepo) update(ctx context.Context, jobID string, fn func(*ScanJob)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	fn(j)
	return nil
}

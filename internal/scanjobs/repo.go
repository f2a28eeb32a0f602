package scanjobs

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("scan job not found")

// Repo defines persistence operations for scan jobs.
//
// MarkProcessing performs the conditional queued -> processing transition and
// reports whether this caller won it; a job that is already processing or
// terminal is never restarted. NextQueued lets the worker discover the oldest
// queued job without transitioning it.
type Repo interface {
	Get(ctx context.Context, jobID string) (ScanJob, error)
	NextQueued(ctx context.Context) (ScanJob, bool, error)
	MarkProcessing(ctx context.Context, jobID string) (bool, error)
	SetTotal(ctx context.Context, jobID string, total int) error
	UpdateProgress(ctx context.Context, jobID string, processed, found int) error
	MarkCompleted(ctx context.Context, jobID string, processed, found int) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
}

package scanjobs

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, tenant_id, user_id, status, start_date, end_date,
	total_documents, processed_documents, invoices_found,
	error_message, started_at, completed_at, created_at`

// Create inserts a new queued job.
func (r *PGRepo) Create(ctx context.Context, job ScanJob) error {
	const query = `
INSERT INTO scan_jobs (
	id, tenant_id, user_id, status, start_date, end_date, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		job.ID, job.TenantID, job.UserID, string(job.Status),
		job.StartDate, job.EndDate, job.CreatedAt,
	)
	return err
}

// Get returns a job by id.
func (r *PGRepo) Get(ctx context.Context, jobID string) (ScanJob, error) {
	query := `SELECT ` + jobColumns + ` FROM scan_jobs WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, jobID)
	job, err := scanJobRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ScanJob{}, ErrNotFound
	}
	return job, err
}

// NextQueued returns the oldest queued job. SKIP LOCKED keeps concurrent
// workers from racing on the same row.
func (r *PGRepo) NextQueued(ctx context.Context) (ScanJob, bool, error) {
	query := `
SELECT ` + jobColumns + `
FROM scan_jobs
WHERE status = 'queued'
ORDER BY created_at ASC
LIMIT 1
FOR UPDATE SKIP LOCKED`
	row := r.DB.QueryRowContext(ctx, query)
	job, err := scanJobRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ScanJob{}, false, nil
	}
	if err != nil {
		return ScanJob{}, false, err
	}
	return job, true, nil
}

// MarkProcessing performs the conditional queued -> processing transition.
func (r *PGRepo) MarkProcessing(ctx context.Context, jobID string) (bool, error) {
	const query = `
UPDATE scan_jobs
SET status = 'processing', started_at = $2
WHERE id = $1 AND status = 'queued'`
	res, err := r.DB.ExecContext(ctx, query, jobID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SetTotal records the candidate document count.
func (r *PGRepo) SetTotal(ctx context.Context, jobID string, total int) error {
	const query = `UPDATE scan_jobs SET total_documents = $2 WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, jobID, total)
	return err
}

// UpdateProgress records processed and found counters.
func (r *PGRepo) UpdateProgress(ctx context.Context, jobID string, processed, found int) error {
	const query = `
UPDATE scan_jobs SET processed_documents = $2, invoices_found = $3 WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, jobID, processed, found)
	return err
}

// MarkCompleted transitions to completed with final counters.
func (r *PGRepo) MarkCompleted(ctx context.Context, jobID string, processed, found int) error {
	const query = `
UPDATE scan_jobs
SET status = 'completed', processed_documents = $2, invoices_found = $3, completed_at = $4
WHERE id = $1 AND status = 'processing'`
	_, err := r.DB.ExecContext(ctx, query, jobID, processed, found, time.Now().UTC())
	return err
}

// MarkFailed transitions to failed, recording the error verbatim.
func (r *PGRepo) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	const query = `
UPDATE scan_jobs
SET status = 'failed', error_message = $2, completed_at = $3
WHERE id = $1 AND status IN ('queued', 'processing')`
	_, err := r.DB.ExecContext(ctx, query, jobID, errMsg, time.Now().UTC())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobRow(row rowScanner) (ScanJob, error) {
	var (
		job         ScanJob
		status      string
		errMsg      sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	err := row.Scan(
		&job.ID, &job.TenantID, &job.UserID, &status, &job.StartDate, &job.EndDate,
		&job.TotalDocuments, &job.ProcessedDocuments, &job.InvoicesFound,
		&errMsg, &startedAt, &completedAt, &job.CreatedAt,
	)
	if err != nil {
		return ScanJob{}, err
	}
	job.Status = Status(status)
	job.ErrorMessage = errMsg.String
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return job, nil
}

package findings

import "context"

// Repo defines persistence operations for findings. Rerun deduplication is a
// lookup-before-insert pattern on Finding.DedupeKey, driven by the caller.
type Repo interface {
	Insert(ctx context.Context, fs []Finding) error
	ListByTenant(ctx context.Context, tenantID string) ([]Finding, error)
}

package invoices

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("invoice not found")

// Repo defines persistence operations for invoices.
//
// Insert is idempotent on (tenant id, source id): re-ingesting the same
// message or attachment never creates a second record. It reports whether a
// row was actually inserted.
type Repo interface {
	Insert(ctx context.Context, inv Invoice) (bool, error)
	ListByTenant(ctx context.Context, tenantID string) ([]Invoice, error)
}

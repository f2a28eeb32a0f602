package findings

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Finding // tenantID -> findings
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Finding)}
}

// Insert appends findings for their tenants.
func (r *MemoryRepo) Insert(ctx context.Context, fs []Finding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range fs {
		r.data[f.TenantID] = append(r.data[f.TenantID], f)
	}
	return nil
}

// ListByTenant returns all findings for a tenant in insertion order.
func (r *MemoryRepo) ListByTenant(ctx context.Context, tenantID string) ([]Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fs := r.data[tenantID]
	out := make([]Finding, len(fs))
	copy(out, fs)
	return out, nil
}

package invoices

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Invoice       // tenantID -> invoices
	seen map[string]map[string]bool // tenantID -> sourceID -> present
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Invoice),
		seen: make(map[string]map[string]bool),
	}
}

// Insert stores an invoice unless its (tenant, source) key already exists.
func (r *MemoryRepo) Insert(ctx context.Context, inv Invoice) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sources, ok := r.seen[inv.TenantID]
	if !ok {
		sources = make(map[string]bool)
		r.seen[inv.TenantID] = sources
	}
	if sources[inv.SourceID] {
		return false, nil
	}
	sources[inv.SourceID] = true
	r.data[inv.TenantID] = append(r.data[inv.TenantID], inv)
	return true, nil
}

// ListByTenant returns all invoices for a tenant in insertion order.
func (r *MemoryRepo) ListByTenant(ctx context.Context, tenantID string) ([]Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	invs := r.data[tenantID]
	out := make([]Invoice, len(invs))
	copy(out, invs)
	return out, nil
}

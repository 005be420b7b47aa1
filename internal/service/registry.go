package service

import (
	"context"
	"sync"
)

// Registry hands out the retriever used for a tenant's questions. Handles
// are created lazily on first use and replaced atomically when a tenant's
// document set changes, so an in-flight question keeps the handle it
// started with.
type Registry struct {
	index  *Index
	policy SearchPolicy

	mu      sync.RWMutex
	handles map[string]Retriever
}

func NewRegistry(index *Index, policy SearchPolicy) *Registry {
	return &Registry{
		index:   index,
		policy:  policy,
		handles: make(map[string]Retriever),
	}
}

// Retriever returns the tenant's retriever, creating one if none exists.
func (r *Registry) Retriever(tenantID string) Retriever {
	r.mu.RLock()
	h, ok := r.handles[tenantID]
	r.mu.RUnlock()
	if ok {
		return h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[tenantID]; ok {
		return h
	}
	h = NewRetriever(r.index, tenantID, r.policy)
	r.handles[tenantID] = h
	return h
}

// HasDocuments reports whether anything is indexed for the tenant.
func (r *Registry) HasDocuments(ctx context.Context, tenantID string) (bool, error) {
	return r.index.HasDocuments(ctx, tenantID)
}

// Invalidate drops the tenant's handle after an ingest or deletion. The
// next question builds a fresh retriever over the updated index.
func (r *Registry) Invalidate(tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, tenantID)
}

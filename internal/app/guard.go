package app

import (
	"context"
	"sync"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

var _ domain.DeletionGuard = (*MemoryGuard)(nil)

// MemoryGuard is a process-local DeletionGuard keyed by tenant id.
type MemoryGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewMemoryGuard returns an empty guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{inFlight: make(map[string]struct{})}
}

// TryAcquire marks tenantID as deleting. The returned release func is safe to call more than once.
func (g *MemoryGuard) TryAcquire(_ context.Context, tenantID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[tenantID]; busy {
		return nil, domain.ErrDeletionInProgress
	}
	g.inFlight[tenantID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, tenantID)
			g.mu.Unlock()
		})
	}, nil
}

// Deleting reports whether a deletion for tenantID is outstanding.
func (g *MemoryGuard) Deleting(tenantID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[tenantID]
	return busy
}

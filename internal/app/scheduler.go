package app

import (
	"context"
	"sync"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

var _ domain.InitializationScheduler = (*GoroutineScheduler)(nil)

// GoroutineScheduler runs initialization in a background goroutine of the
// current process. It is used when the job queue is disabled.
type GoroutineScheduler struct {
	initializer *Initializer
	wg          sync.WaitGroup
}

// NewGoroutineScheduler creates a scheduler backed by initializer.
func NewGoroutineScheduler(initializer *Initializer) *GoroutineScheduler {
	return &GoroutineScheduler{initializer: initializer}
}

// Schedule starts initialization and returns immediately.
func (s *GoroutineScheduler) Schedule(ctx context.Context, tenantID, creatorEmail string) error {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.initializer.Initialize(ctx, tenantID, creatorEmail)
	}()
	return nil
}

// Wait blocks until every scheduled initialization has finished.
func (s *GoroutineScheduler) Wait() {
	s.wg.Wait()
}

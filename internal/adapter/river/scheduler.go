package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

var _ domain.InitializationScheduler = (*Scheduler)(nil)

// InitializeTenantArgs carries what the worker needs to initialize one tenant.
// River serializes it as JSON into its job table.
type InitializeTenantArgs struct {
	TenantID     string `json:"tenant_id"`
	CreatorEmail string `json:"creator_email,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (InitializeTenantArgs) Kind() string { return "tenant.initialize" }

// InsertOpts keeps a failing job from being retried forever; the periodic
// reconcile job picks up tenants that never completed.
func (InitializeTenantArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 3}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Scheduler implements domain.InitializationScheduler by enqueuing River jobs.
type Scheduler struct {
	client *Client
}

// NewScheduler creates a scheduler backed by the given River client.
func NewScheduler(client *Client) *Scheduler {
	return &Scheduler{client: client}
}

// Schedule enqueues initialization of a tenant as an async job.
func (s *Scheduler) Schedule(ctx context.Context, tenantID, creatorEmail string) error {
	_, err := s.client.Insert(ctx, InitializeTenantArgs{
		TenantID:     tenantID,
		CreatorEmail: creatorEmail,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing initialization job: %w", err)
	}
	return nil
}

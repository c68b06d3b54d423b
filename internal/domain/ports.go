package domain

import (
	"context"
	"time"
)

// TenantStore defines the persistence contract for tenants.
type TenantStore interface {
	CreateTenant(ctx context.Context, tenant Tenant) error
	GetTenant(ctx context.Context, id string) (Tenant, error)
	ListTenants(ctx context.Context, filter ListFilter) ([]Tenant, error)
	UpdateTenant(ctx context.Context, tenant Tenant) error
	// DeleteTenantCascade removes the tenant and every record it owns.
	// Implementations must either remove everything or nothing.
	DeleteTenantCascade(ctx context.Context, id string) error
	MarkInitialized(ctx context.Context, id string, at time.Time) error
}

// ListFilter holds optional criteria for listing tenants.
type ListFilter struct {
	Active        *bool
	Uninitialized bool
	Limit         int
	Offset        int
}

// AdminStore defines the persistence contract for administrators.
// Uniqueness of (tenant, email) is enforced by the store.
type AdminStore interface {
	CreateAdmin(ctx context.Context, admin Administrator) error
	GetAdmin(ctx context.Context, id string) (Administrator, error)
	ListAdmins(ctx context.Context, tenantID string) ([]Administrator, error)
	UpdateAdmin(ctx context.Context, admin Administrator) error
	DeleteAdmin(ctx context.Context, id string) error
	// MarkInvited records that an invitation was (re)issued. It never changes status.
	MarkInvited(ctx context.Context, tenantID, email string, at time.Time) error
}

// SetupStore holds the technical, non-business configuration written for a new tenant.
type SetupStore interface {
	ActivateModules(ctx context.Context, tenantID string, modules []string) error
	PutSettings(ctx context.Context, tenantID string, settings map[string]string) error
	// BootstrapSettings is a store-side procedure that is safe to re-run.
	BootstrapSettings(ctx context.Context, tenantID string) error
}

// Invitation is the message handed to a NotificationGateway.
type Invitation struct {
	Email          string
	TenantID       string
	TenantName     string
	ActivationLink string
}

// NotificationGateway delivers invitation emails. Delivery is not assumed to be idempotent.
type NotificationGateway interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}

// TransitionValidator checks administrator status changes against AdminTransitions.
type TransitionValidator interface {
	Apply(ctx context.Context, current AdminStatus, event AdminEvent) (AdminStatus, error)
	Available(current AdminStatus) []AdminEvent
}

// DeletionGuard is a per-tenant single-flight lock for deletions. TryAcquire
// returns ErrDeletionInProgress when a deletion for the tenant is outstanding.
type DeletionGuard interface {
	TryAcquire(ctx context.Context, tenantID string) (release func(), err error)
}

// InitializationScheduler runs tenant initialization without blocking the caller.
type InitializationScheduler interface {
	Schedule(ctx context.Context, tenantID, creatorEmail string) error
}

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

// TenantService orchestrates tenant lifecycle operations.
type TenantService struct {
	store     domain.TenantStore
	guard     domain.DeletionGuard
	scheduler domain.InitializationScheduler
	defaults  domain.TenantDefaults
	metrics   Metrics
	logger    *zap.Logger
}

// NewTenantService creates a service with the given adapters.
func NewTenantService(
	store domain.TenantStore,
	guard domain.DeletionGuard,
	scheduler domain.InitializationScheduler,
	defaults domain.TenantDefaults,
	logger *zap.Logger,
	opts ...Option,
) *TenantService {
	o := buildOptions(opts)
	return &TenantService{
		store:     store,
		guard:     guard,
		scheduler: scheduler,
		defaults:  defaults,
		metrics:   o.metrics,
		logger:    logger.Named("tenants"),
	}
}

// Create persists a new tenant and schedules its initialization.
// Initialization runs detached from ctx and its outcome never affects the result.
func (s *TenantService) Create(ctx context.Context, p domain.TenantProfile) (domain.Tenant, error) {
	if err := p.Validate(); err != nil {
		return domain.Tenant{}, err
	}

	p.CreatorEmail = strings.TrimSpace(p.CreatorEmail)
	tenant := domain.NewTenant(newID(), p, s.defaults)

	if err := s.store.CreateTenant(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("creating tenant: %w", err)
	}
	s.metrics.TenantCreated()
	s.logger.Info("tenant created", zap.String("tenant_id", tenant.ID), zap.String("slug", tenant.Slug))

	if err := s.scheduler.Schedule(context.WithoutCancel(ctx), tenant.ID, p.CreatorEmail); err != nil {
		s.logger.Warn("scheduling tenant initialization failed",
			zap.String("tenant_id", tenant.ID),
			zap.Error(err),
		)
	}

	return tenant, nil
}

// Get returns a tenant by its unique identifier.
func (s *TenantService) Get(ctx context.Context, id string) (domain.Tenant, error) {
	if err := domain.ValidateID("tenant_id", id); err != nil {
		return domain.Tenant{}, err
	}
	return s.store.GetTenant(ctx, id)
}

// List returns tenants matching the given filter.
func (s *TenantService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	if filter.Limit < 0 {
		return nil, &domain.ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	if filter.Offset < 0 {
		return nil, &domain.ValidationError{Field: "offset", Reason: "must not be negative"}
	}
	return s.store.ListTenants(ctx, filter)
}

// ListActive returns every active tenant.
func (s *TenantService) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	active := true
	return s.store.ListTenants(ctx, domain.ListFilter{Active: &active})
}

// Update applies a settings or billing edit.
func (s *TenantService) Update(ctx context.Context, id string, patch domain.TenantPatch) (domain.Tenant, error) {
	if err := domain.ValidateID("tenant_id", id); err != nil {
		return domain.Tenant{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Tenant{}, err
	}

	tenant, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	patch.Apply(&tenant)
	tenant.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("updating tenant: %w", err)
	}
	return tenant, nil
}

// SetActive re-reads the tenant, flips its active flag and writes it back.
// Concurrent flips are last-writer-wins.
func (s *TenantService) SetActive(ctx context.Context, id string, active bool) (domain.Tenant, error) {
	if err := domain.ValidateID("tenant_id", id); err != nil {
		return domain.Tenant{}, err
	}

	tenant, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return domain.Tenant{}, err
	}

	now := time.Now().UTC()
	tenant.SetActive(active, now)
	tenant.UpdatedAt = now

	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("updating tenant: %w", err)
	}
	s.logger.Info("tenant active flag changed", zap.String("tenant_id", id), zap.Bool("active", active))
	return tenant, nil
}

// Delete removes a tenant and everything it owns.
//
// A second call for the same tenant while one is outstanding fails with
// domain.ErrDeletionInProgress without touching the store. Once the guard is
// held the cascade is not cancelled by ctx. A failure that may have left
// partial state is returned as *domain.FatalInconsistencyError.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateID("tenant_id", id); err != nil {
		return err
	}

	release, err := s.guard.TryAcquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	ctx = context.WithoutCancel(ctx)

	if err := s.store.DeleteTenantCascade(ctx, id); err != nil {
		return s.deleteFailed(ctx, id, err)
	}

	// The id must no longer resolve.
	if _, err := s.store.GetTenant(ctx, id); err == nil {
		s.metrics.TenantDeleteFailed(string(domain.KindFatalInconsistency))
		return &domain.FatalInconsistencyError{TenantID: id, Err: errors.New("tenant still resolves after cascade")}
	} else if !errors.Is(err, domain.ErrTenantNotFound) {
		s.logger.Warn("verifying tenant deletion failed", zap.String("tenant_id", id), zap.Error(err))
	}

	s.metrics.TenantDeleted()
	s.logger.Info("tenant deleted", zap.String("tenant_id", id))
	return nil
}

func (s *TenantService) deleteFailed(ctx context.Context, id string, cause error) error {
	if errors.Is(cause, domain.ErrTenantNotFound) {
		return cause
	}

	var partial *domain.PartialCascadeError
	if errors.As(cause, &partial) {
		return s.fatal(id, cause)
	}

	// An atomic store leaves the tenant untouched on failure. A tenant that is
	// gone now means the cascade ran part-way.
	if _, err := s.store.GetTenant(ctx, id); errors.Is(err, domain.ErrTenantNotFound) {
		return s.fatal(id, cause)
	}

	s.metrics.TenantDeleteFailed(string(domain.KindOf(cause)))
	return fmt.Errorf("deleting tenant %s: %w", id, cause)
}

func (s *TenantService) fatal(id string, cause error) error {
	s.metrics.TenantDeleteFailed(string(domain.KindFatalInconsistency))
	s.logger.Error("tenant deletion left inconsistent state", zap.String("tenant_id", id), zap.Error(cause))
	return &domain.FatalInconsistencyError{TenantID: id, Err: cause}
}

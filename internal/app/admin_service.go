package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

// AdminService orchestrates administrator lifecycle operations within one tenant.
type AdminService struct {
	admins     domain.AdminStore
	tenants    domain.TenantStore
	validator  domain.TransitionValidator
	bcryptCost int
	metrics    Metrics
	logger     *zap.Logger
}

// NewAdminService creates a service with the given adapters. A bcryptCost of
// zero selects bcrypt.DefaultCost.
func NewAdminService(
	admins domain.AdminStore,
	tenants domain.TenantStore,
	validator domain.TransitionValidator,
	bcryptCost int,
	logger *zap.Logger,
	opts ...Option,
) *AdminService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	o := buildOptions(opts)
	return &AdminService{
		admins:     admins,
		tenants:    tenants,
		validator:  validator,
		bcryptCost: bcryptCost,
		metrics:    o.metrics,
		logger:     logger.Named("admins"),
	}
}

// Create adds an administrator to a tenant.
//
// In invite mode the password is ignored and the record starts as created;
// no email is sent. In direct mode a password of at least
// domain.MinPasswordLength characters is required and the record is active.
func (s *AdminService) Create(ctx context.Context, tenantID string, p domain.AdminProfile, mode domain.CreateMode, password string) (domain.Administrator, error) {
	if err := domain.ValidateID("tenant_id", tenantID); err != nil {
		return domain.Administrator{}, err
	}
	if err := p.Validate(); err != nil {
		return domain.Administrator{}, err
	}
	if err := validateRole(p.Role); err != nil {
		return domain.Administrator{}, err
	}

	var (
		status domain.AdminStatus
		hash   string
	)
	switch mode {
	case domain.ModeInvite:
		status = domain.AdminStatusCreated
	case domain.ModeDirect:
		if utf8.RuneCountInString(password) < domain.MinPasswordLength {
			return domain.Administrator{}, &domain.ValidationError{
				Field:  "password",
				Reason: fmt.Sprintf("must be at least %d characters", domain.MinPasswordLength),
			}
		}
		h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		if err != nil {
			return domain.Administrator{}, &domain.ValidationError{Field: "password", Reason: err.Error()}
		}
		status = domain.AdminStatusActive
		hash = string(h)
	default:
		return domain.Administrator{}, &domain.ValidationError{Field: "mode", Reason: "must be invite or direct"}
	}

	if _, err := s.tenants.GetTenant(ctx, tenantID); err != nil {
		return domain.Administrator{}, err
	}

	admin := domain.NewAdministrator(newID(), tenantID, p, status)
	admin.PasswordHash = hash

	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		return domain.Administrator{}, fmt.Errorf("creating administrator: %w", err)
	}
	s.metrics.AdminCreated(string(mode))
	s.logger.Info("administrator created",
		zap.String("tenant_id", tenantID),
		zap.String("admin_id", admin.ID),
		zap.String("mode", string(mode)),
	)
	return admin, nil
}

// Get returns an administrator of the given tenant.
func (s *AdminService) Get(ctx context.Context, adminID, tenantID string) (domain.Administrator, error) {
	return s.load(ctx, adminID, tenantID)
}

// List returns every administrator of a tenant.
func (s *AdminService) List(ctx context.Context, tenantID string) ([]domain.Administrator, error) {
	if err := domain.ValidateID("tenant_id", tenantID); err != nil {
		return nil, err
	}
	if _, err := s.tenants.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.admins.ListAdmins(ctx, tenantID)
}

// Update edits salutation, names, phone and position. Email and tenant binding
// cannot be changed.
func (s *AdminService) Update(ctx context.Context, adminID, tenantID string, patch domain.AdminPatch) (domain.Administrator, error) {
	admin, err := s.load(ctx, adminID, tenantID)
	if err != nil {
		return domain.Administrator{}, err
	}

	updated, err := patch.ApplyTo(admin)
	if err != nil {
		return domain.Administrator{}, err
	}

	if err := s.admins.UpdateAdmin(ctx, updated); err != nil {
		return domain.Administrator{}, fmt.Errorf("updating administrator: %w", err)
	}
	return updated, nil
}

// Delete removes one administrator. The tenant is unaffected.
func (s *AdminService) Delete(ctx context.Context, adminID, tenantID string) error {
	if _, err := s.load(ctx, adminID, tenantID); err != nil {
		return err
	}
	if err := s.admins.DeleteAdmin(ctx, adminID); err != nil {
		return fmt.Errorf("deleting administrator: %w", err)
	}
	s.logger.Info("administrator deleted", zap.String("tenant_id", tenantID), zap.String("admin_id", adminID))
	return nil
}

// Transition applies a registration event reported by the external sign-up flow.
func (s *AdminService) Transition(ctx context.Context, adminID, tenantID string, event domain.AdminEvent) (domain.Administrator, error) {
	admin, err := s.load(ctx, adminID, tenantID)
	if err != nil {
		return domain.Administrator{}, err
	}

	next, err := s.validator.Apply(ctx, admin.Status, event)
	if err != nil {
		return domain.Administrator{}, err
	}
	admin.Status = next

	if err := s.admins.UpdateAdmin(ctx, admin); err != nil {
		return domain.Administrator{}, fmt.Errorf("updating administrator: %w", err)
	}
	s.logger.Info("administrator status changed",
		zap.String("admin_id", adminID),
		zap.String("event", string(event)),
		zap.String("status", string(next)),
	)
	return admin, nil
}

// NextEvents lists the registration events the administrator can still receive.
func (s *AdminService) NextEvents(admin domain.Administrator) []domain.AdminEvent {
	return s.validator.Available(admin.Status)
}

// load resolves an administrator and checks it belongs to tenantID.
func (s *AdminService) load(ctx context.Context, adminID, tenantID string) (domain.Administrator, error) {
	if err := domain.ValidateID("admin_id", adminID); err != nil {
		return domain.Administrator{}, err
	}
	if err := domain.ValidateID("tenant_id", tenantID); err != nil {
		return domain.Administrator{}, err
	}
	if _, err := s.tenants.GetTenant(ctx, tenantID); err != nil {
		return domain.Administrator{}, err
	}

	admin, err := s.admins.GetAdmin(ctx, adminID)
	if err != nil {
		return domain.Administrator{}, err
	}
	if admin.TenantID != tenantID {
		return domain.Administrator{}, &domain.ValidationError{Field: "tenant_id", Reason: "does not own this administrator"}
	}
	return admin, nil
}

func validateRole(role string) error {
	switch strings.TrimSpace(role) {
	case "", domain.RoleAdmin, domain.RoleOwner:
		return nil
	}
	return &domain.ValidationError{Field: "role", Reason: "must be admin or owner"}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

// Initializer step names, as reported in StepOutcome.Step.
const (
	StepActivateModules   = "activate_modules"
	StepBaselineSettings  = "baseline_settings"
	StepBootstrapSettings = "bootstrap_settings"
	StepLinkCreator       = "link_creator"
)

// DefaultModules are the feature modules switched on for every new tenant.
var DefaultModules = []string{"employees", "absences", "time_tracking", "documents", "reports"}

// DefaultBaselineSettings are the technical settings written for every new tenant.
// Integrations start disabled.
var DefaultBaselineSettings = map[string]string{
	"accessibility.high_contrast":  "false",
	"accessibility.reduced_motion": "false",
	"accessibility.font_scale":     "100",
	"integrations.calendar_sync":   "disabled",
	"integrations.payroll_export":  "disabled",
	"integrations.sso":             "disabled",
}

// InitializerConfig selects what a new tenant receives.
type InitializerConfig struct {
	Modules  []string
	Settings map[string]string
}

// StepOutcome is the result of one initializer step.
type StepOutcome struct {
	Step     string
	Err      error
	Skipped  bool
	Duration time.Duration
}

// OK reports whether the step succeeded or had nothing to do.
func (o StepOutcome) OK() bool { return o.Err == nil }

// Initializer performs the zero-data setup of a new tenant. It writes
// configuration only and never creates business records.
type Initializer struct {
	tenants domain.TenantStore
	setup   domain.SetupStore
	admins  domain.AdminStore
	cfg     InitializerConfig
	metrics Metrics
	logger  *zap.Logger
}

// NewInitializer creates an initializer. Empty config fields fall back to the defaults.
func NewInitializer(
	tenants domain.TenantStore,
	setup domain.SetupStore,
	admins domain.AdminStore,
	cfg InitializerConfig,
	logger *zap.Logger,
	opts ...Option,
) *Initializer {
	if cfg.Modules == nil {
		cfg.Modules = DefaultModules
	}
	if cfg.Settings == nil {
		cfg.Settings = DefaultBaselineSettings
	}
	o := buildOptions(opts)
	return &Initializer{
		tenants: tenants,
		setup:   setup,
		admins:  admins,
		cfg:     cfg,
		metrics: o.metrics,
		logger:  logger.Named("initializer"),
	}
}

type initStep struct {
	name string
	run  func(ctx context.Context) (skipped bool, err error)
}

// Initialize runs every step concurrently and waits for all of them. A failed
// step never stops or undoes the others, and nothing is returned as an error:
// failures are logged and reported in the outcomes. The tenant is marked
// initialized only when every step succeeded.
func (i *Initializer) Initialize(ctx context.Context, tenantID, creatorEmail string) []StepOutcome {
	steps := []initStep{
		{StepActivateModules, func(ctx context.Context) (bool, error) {
			return false, i.setup.ActivateModules(ctx, tenantID, i.cfg.Modules)
		}},
		{StepBaselineSettings, func(ctx context.Context) (bool, error) {
			return false, i.setup.PutSettings(ctx, tenantID, i.cfg.Settings)
		}},
		{StepBootstrapSettings, func(ctx context.Context) (bool, error) {
			return false, i.setup.BootstrapSettings(ctx, tenantID)
		}},
		{StepLinkCreator, func(ctx context.Context) (bool, error) {
			return i.linkCreator(ctx, tenantID, creatorEmail)
		}},
	}

	outcomes := make([]StepOutcome, len(steps))

	if err := domain.ValidateID("tenant_id", tenantID); err != nil {
		for idx, st := range steps {
			outcomes[idx] = StepOutcome{Step: st.name, Err: err}
		}
		i.logger.Warn("tenant initialization rejected", zap.String("tenant_id", tenantID), zap.Error(err))
		return outcomes
	}

	var g errgroup.Group
	for idx, st := range steps {
		g.Go(func() error {
			start := time.Now()
			skipped, err := st.run(ctx)
			outcomes[idx] = StepOutcome{Step: st.name, Err: err, Skipped: skipped, Duration: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		i.metrics.InitializerStep(o.Step, o.OK())
		if !o.OK() {
			failed++
			i.logger.Warn("tenant initialization step failed",
				zap.String("tenant_id", tenantID),
				zap.String("step", o.Step),
				zap.Error(o.Err),
			)
		}
	}

	if failed > 0 {
		return outcomes
	}

	if err := i.tenants.MarkInitialized(ctx, tenantID, time.Now().UTC()); err != nil {
		i.logger.Warn("marking tenant initialized failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return outcomes
	}
	i.logger.Info("tenant initialized", zap.String("tenant_id", tenantID))
	return outcomes
}

// linkCreator records the creating user as the tenant's owner. No department
// or team is assigned. An existing record for the email counts as linked.
func (i *Initializer) linkCreator(ctx context.Context, tenantID, creatorEmail string) (bool, error) {
	creatorEmail = strings.TrimSpace(creatorEmail)
	if creatorEmail == "" {
		return true, nil
	}
	if err := domain.ValidateEmail("creator_email", creatorEmail); err != nil {
		return false, err
	}

	owner := domain.NewAdministrator(newID(), tenantID, domain.AdminProfile{
		Email: creatorEmail,
		Role:  domain.RoleOwner,
	}, domain.AdminStatusActive)

	err := i.admins.CreateAdmin(ctx, owner)
	var dup *domain.DuplicateAdminError
	if errors.As(err, &dup) {
		return false, nil
	}
	return false, err
}

// Reconcile re-runs initialization for tenants that were created more than
// grace ago and never completed it. It returns how many tenants it visited.
func (i *Initializer) Reconcile(ctx context.Context, grace time.Duration, limit int) (int, error) {
	pending, err := i.tenants.ListTenants(ctx, domain.ListFilter{Uninitialized: true, Limit: limit})
	if err != nil {
		return 0, fmt.Errorf("listing uninitialized tenants: %w", err)
	}

	cutoff := time.Now().Add(-grace)
	visited := 0
	for _, t := range pending {
		if t.CreatedAt.After(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return visited, err
		}
		i.Initialize(ctx, t.ID, "")
		visited++
	}
	return visited, nil
}

package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

const tracerName = "github.com/neomorfeo/tenantdesk/internal/adapter/otel"

// Store is the full persistence surface used by the services.
type Store interface {
	domain.TenantStore
	domain.AdminStore
	domain.SetupStore
}

// TracingStore wraps a Store with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingStore struct {
	next   Store
	tracer trace.Tracer
}

var _ Store = (*TracingStore)(nil)

// NewTracingStore creates a tracing decorator around the given store.
func NewTracingStore(next Store) *TracingStore {
	return &TracingStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

// end records err on the span, tagging it with its error kind, and ends it.
func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", string(domain.KindOf(err))))
	}
	span.End()
}

func (s *TracingStore) CreateTenant(ctx context.Context, tenant domain.Tenant) (err error) {
	ctx, span := s.tracer.Start(ctx, "TenantStore.CreateTenant",
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID),
			attribute.String("tenant.slug", tenant.Slug),
		),
	)
	defer func() { end(span, err) }()

	return s.next.CreateTenant(ctx, tenant)
}

func (s *TracingStore) GetTenant(ctx context.Context, id string) (_ domain.Tenant, err error) {
	ctx, span := s.tracer.Start(ctx, "TenantStore.GetTenant",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer func() { end(span, err) }()

	return s.next.GetTenant(ctx, id)
}

func (s *TracingStore) ListTenants(ctx context.Context, filter domain.ListFilter) (_ []domain.Tenant, err error) {
	ctx, span := s.tracer.Start(ctx, "TenantStore.ListTenants",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
			attribute.Bool("filter.uninitialized", filter.Uninitialized),
		),
	)
	defer func() { end(span, err) }()

	if filter.Active != nil {
		span.SetAttributes(attribute.Bool("filter.active", *filter.Active))
	}

	tenants, err := s.next.ListTenants(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(tenants)))
	}
	return tenants, err
}

func (s *TracingStore) UpdateTenant(ctx context.Context, tenant domain.Tenant) (err error) {
	ctx, span := s.tracer.Start(ctx, "TenantStore.UpdateTenant",
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID),
			attribute.Bool("tenant.active", tenant.IsActive),
		),
	)
	defer func() { end(span, err) }()

	return s.next.UpdateTenant(ctx, tenant)
}

func (s *TracingStore) DeleteTenantCascade(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "TenantStore.DeleteTenantCascade",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer func() { end(span, err) }()

	return s.next.DeleteTenantCascade(ctx, id)
}

func (s *TracingStore) MarkInitialized(ctx context.Context, id string, at time.Time) (err error) {
	ctx, span := s.tracer.Start(ctx, "TenantStore.MarkInitialized",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer func() { end(span, err) }()

	return s.next.MarkInitialized(ctx, id, at)
}

func (s *TracingStore) CreateAdmin(ctx context.Context, admin domain.Administrator) (err error) {
	ctx, span := s.tracer.Start(ctx, "AdminStore.CreateAdmin",
		trace.WithAttributes(
			attribute.String("tenant.id", admin.TenantID),
			attribute.String("admin.id", admin.ID),
			attribute.String("admin.status", string(admin.Status)),
		),
	)
	defer func() { end(span, err) }()

	return s.next.CreateAdmin(ctx, admin)
}

func (s *TracingStore) GetAdmin(ctx context.Context, id string) (_ domain.Administrator, err error) {
	ctx, span := s.tracer.Start(ctx, "AdminStore.GetAdmin",
		trace.WithAttributes(attribute.String("admin.id", id)),
	)
	defer func() { end(span, err) }()

	return s.next.GetAdmin(ctx, id)
}

func (s *TracingStore) ListAdmins(ctx context.Context, tenantID string) (_ []domain.Administrator, err error) {
	ctx, span := s.tracer.Start(ctx, "AdminStore.ListAdmins",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer func() { end(span, err) }()

	admins, err := s.next.ListAdmins(ctx, tenantID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(admins)))
	}
	return admins, err
}

func (s *TracingStore) UpdateAdmin(ctx context.Context, admin domain.Administrator) (err error) {
	ctx, span := s.tracer.Start(ctx, "AdminStore.UpdateAdmin",
		trace.WithAttributes(
			attribute.String("admin.id", admin.ID),
			attribute.String("admin.status", string(admin.Status)),
		),
	)
	defer func() { end(span, err) }()

	return s.next.UpdateAdmin(ctx, admin)
}

func (s *TracingStore) DeleteAdmin(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "AdminStore.DeleteAdmin",
		trace.WithAttributes(attribute.String("admin.id", id)),
	)
	defer func() { end(span, err) }()

	return s.next.DeleteAdmin(ctx, id)
}

func (s *TracingStore) MarkInvited(ctx context.Context, tenantID, email string, at time.Time) (err error) {
	ctx, span := s.tracer.Start(ctx, "AdminStore.MarkInvited",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer func() { end(span, err) }()

	return s.next.MarkInvited(ctx, tenantID, email, at)
}

func (s *TracingStore) ActivateModules(ctx context.Context, tenantID string, modules []string) (err error) {
	ctx, span := s.tracer.Start(ctx, "SetupStore.ActivateModules",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.StringSlice("modules", modules),
		),
	)
	defer func() { end(span, err) }()

	return s.next.ActivateModules(ctx, tenantID, modules)
}

func (s *TracingStore) PutSettings(ctx context.Context, tenantID string, settings map[string]string) (err error) {
	ctx, span := s.tracer.Start(ctx, "SetupStore.PutSettings",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.Int("settings.count", len(settings)),
		),
	)
	defer func() { end(span, err) }()

	return s.next.PutSettings(ctx, tenantID, settings)
}

func (s *TracingStore) BootstrapSettings(ctx context.Context, tenantID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "SetupStore.BootstrapSettings",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer func() { end(span, err) }()

	return s.next.BootstrapSettings(ctx, tenantID)
}

package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

// TracingGateway wraps a domain.NotificationGateway with OpenTelemetry tracing.
// Recipient addresses are not recorded.
type TracingGateway struct {
	next   domain.NotificationGateway
	tracer trace.Tracer
}

var _ domain.NotificationGateway = (*TracingGateway)(nil)

// NewTracingGateway creates a tracing decorator around the given gateway.
func NewTracingGateway(next domain.NotificationGateway) *TracingGateway {
	return &TracingGateway{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (g *TracingGateway) SendInvitation(ctx context.Context, inv domain.Invitation) (err error) {
	ctx, span := g.tracer.Start(ctx, "NotificationGateway.SendInvitation",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("tenant.id", inv.TenantID)),
	)
	defer func() { end(span, err) }()

	return g.next.SendInvitation(ctx, inv)
}

// TracingScheduler wraps a domain.InitializationScheduler with OpenTelemetry tracing.
type TracingScheduler struct {
	next   domain.InitializationScheduler
	tracer trace.Tracer
}

var _ domain.InitializationScheduler = (*TracingScheduler)(nil)

// NewTracingScheduler creates a tracing decorator around the given scheduler.
func NewTracingScheduler(next domain.InitializationScheduler) *TracingScheduler {
	return &TracingScheduler{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingScheduler) Schedule(ctx context.Context, tenantID, creatorEmail string) (err error) {
	ctx, span := s.tracer.Start(ctx, "InitializationScheduler.Schedule",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.Bool("creator.linked", creatorEmail != ""),
		),
	)
	defer func() { end(span, err) }()

	return s.next.Schedule(ctx, tenantID, creatorEmail)
}

package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"

	adapter "github.com/neomorfeo/tenantdesk/internal/adapter/otel"
	"github.com/neomorfeo/tenantdesk/internal/domain"
)

type stubGateway struct{ err error }

func (g stubGateway) SendInvitation(context.Context, domain.Invitation) error { return g.err }

type stubScheduler struct{ calls int }

func (s *stubScheduler) Schedule(context.Context, string, string) error {
	s.calls++
	return nil
}

func TestTracingGateway_RecordsTransportError(t *testing.T) {
	exporter := setupTestTracer(t)
	cause := &domain.TransportError{Op: "send", Err: errors.New("dial tcp: refused")}
	gw := adapter.NewTracingGateway(stubGateway{err: cause})

	err := gw.SendInvitation(context.Background(), domain.Invitation{TenantID: "t", Email: "a@acme.de"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped gateway error, got %v", err)
	}

	spans := exporter.GetSpans().Snapshots()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status().Code, codes.Error)
	}
	assertAttribute(t, spans[0], "error.kind", "transport")
	for _, attr := range spans[0].Attributes() {
		if attr.Value.Emit() == "a@acme.de" {
			t.Error("recipient address must not be recorded")
		}
	}
}

func TestTracingScheduler_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &stubScheduler{}
	sched := adapter.NewTracingScheduler(inner)

	if err := sched.Schedule(context.Background(), "t-1", "owner@acme.de"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	spans := exporter.GetSpans().Snapshots()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	assertAttribute(t, spans[0], "tenant.id", "t-1")
	assertAttribute(t, spans[0], "creator.linked", "true")
}

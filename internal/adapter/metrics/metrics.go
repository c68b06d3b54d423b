package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/neomorfeo/tenantdesk/internal/app"
)

var _ app.Metrics = (*LifecycleMetrics)(nil)

// LifecycleMetrics holds the Prometheus counters for tenant and administrator lifecycle operations.
type LifecycleMetrics struct {
	TenantsCreated        prometheus.Counter
	TenantsDeleted        prometheus.Counter
	TenantDeleteFailures  *prometheus.CounterVec
	InitializerSteps      *prometheus.CounterVec
	AdminsCreated         *prometheus.CounterVec
	Invitations           *prometheus.CounterVec
	InvitationBookkeeping prometheus.Counter
}

// NewLifecycleMetrics initializes the metrics and registers them with reg.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	factory := promauto.With(reg)
	return &LifecycleMetrics{
		TenantsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tenantdesk",
			Subsystem: "tenants",
			Name:      "created_total",
			Help:      "Total number of tenants created.",
		}),
		TenantsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tenantdesk",
			Subsystem: "tenants",
			Name:      "deleted_total",
			Help:      "Total number of tenants deleted.",
		}),
		TenantDeleteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantdesk",
			Subsystem: "tenants",
			Name:      "delete_failures_total",
			Help:      "Total number of failed tenant deletions by error kind.",
		}, []string{"kind"}),
		InitializerSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantdesk",
			Subsystem: "initializer",
			Name:      "steps_total",
			Help:      "Total number of initializer steps by step and result.",
		}, []string{"step", "ok"}),
		AdminsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantdesk",
			Subsystem: "admins",
			Name:      "created_total",
			Help:      "Total number of administrators created by mode.",
		}, []string{"mode"}),
		Invitations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantdesk",
			Subsystem: "invitations",
			Name:      "sent_total",
			Help:      "Total number of invitation deliveries by result.",
		}, []string{"ok"}),
		InvitationBookkeeping: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tenantdesk",
			Subsystem: "invitations",
			Name:      "bookkeeping_failures_total",
			Help:      "Total number of delivered invitations whose timestamp could not be recorded.",
		}),
	}
}

func (m *LifecycleMetrics) TenantCreated() { m.TenantsCreated.Inc() }
func (m *LifecycleMetrics) TenantDeleted() { m.TenantsDeleted.Inc() }

func (m *LifecycleMetrics) TenantDeleteFailed(kind string) {
	m.TenantDeleteFailures.WithLabelValues(kind).Inc()
}

func (m *LifecycleMetrics) InitializerStep(step string, ok bool) {
	m.InitializerSteps.WithLabelValues(step, strconv.FormatBool(ok)).Inc()
}

func (m *LifecycleMetrics) AdminCreated(mode string) {
	m.AdminsCreated.WithLabelValues(mode).Inc()
}

func (m *LifecycleMetrics) InvitationSent(ok bool) {
	m.Invitations.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (m *LifecycleMetrics) InvitationBookkeepingFailed() { m.InvitationBookkeeping.Inc() }

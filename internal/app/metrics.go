package app

// Metrics receives lifecycle counters. Implementations must be safe for concurrent use.
type Metrics interface {
	TenantCreated()
	TenantDeleted()
	TenantDeleteFailed(kind string)
	InitializerStep(step string, ok bool)
	AdminCreated(mode string)
	InvitationSent(ok bool)
	InvitationBookkeepingFailed()
}

type nopMetrics struct{}

func (nopMetrics) TenantCreated()               {}
func (nopMetrics) TenantDeleted()               {}
func (nopMetrics) TenantDeleteFailed(string)    {}
func (nopMetrics) InitializerStep(string, bool) {}
func (nopMetrics) AdminCreated(string)          {}
func (nopMetrics) InvitationSent(bool)          {}
func (nopMetrics) InvitationBookkeepingFailed() {}

// Option configures optional collaborators shared by the services.
type Option func(*options)

type options struct {
	metrics Metrics
}

// WithMetrics reports lifecycle counters to m.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

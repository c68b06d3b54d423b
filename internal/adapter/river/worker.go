package river

import (
	"context"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/neomorfeo/tenantdesk/internal/app"
)

// Initializer is the part of app.Initializer the workers drive.
type Initializer interface {
	Initialize(ctx context.Context, tenantID, creatorEmail string) []app.StepOutcome
	Reconcile(ctx context.Context, grace time.Duration, limit int) (int, error)
}

// InitializeWorker runs tenant initialization jobs. Step failures are
// reported by the initializer and never fail the job.
type InitializeWorker struct {
	river.WorkerDefaults[InitializeTenantArgs]
	initializer Initializer
	logger      *zap.Logger
}

// NewInitializeWorker creates a worker driving initializer.
func NewInitializeWorker(initializer Initializer, logger *zap.Logger) *InitializeWorker {
	return &InitializeWorker{initializer: initializer, logger: logger.Named("initialize_worker")}
}

// Timeout bounds a single initialization run.
func (w *InitializeWorker) Timeout(*river.Job[InitializeTenantArgs]) time.Duration {
	return time.Minute
}

// Work processes a single initialization job.
func (w *InitializeWorker) Work(ctx context.Context, job *river.Job[InitializeTenantArgs]) error {
	outcomes := w.initializer.Initialize(ctx, job.Args.TenantID, job.Args.CreatorEmail)

	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
		}
	}
	w.logger.Info("processed initialization job",
		zap.String("tenant_id", job.Args.TenantID),
		zap.Int64("job_id", job.ID),
		zap.Int("attempt", job.Attempt),
		zap.Int("failed_steps", failed),
	)
	return nil
}

// ReconcileArgs triggers a sweep over tenants whose initialization never completed.
type ReconcileArgs struct{}

// Kind returns the unique job type identifier used by River's job routing.
func (ReconcileArgs) Kind() string { return "tenant.reconcile" }

// ReconcileWorker re-runs initialization for stale uninitialized tenants.
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileArgs]
	initializer Initializer
	grace       time.Duration
	batch       int
	logger      *zap.Logger
}

// NewReconcileWorker creates a worker that skips tenants younger than grace
// and visits at most batch tenants per run.
func NewReconcileWorker(initializer Initializer, grace time.Duration, batch int, logger *zap.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		initializer: initializer,
		grace:       grace,
		batch:       batch,
		logger:      logger.Named("reconcile_worker"),
	}
}

// Work processes a single reconcile job.
func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcileArgs]) error {
	visited, err := w.initializer.Reconcile(ctx, w.grace, w.batch)
	if err != nil {
		w.logger.Warn("reconcile failed", zap.Int64("job_id", job.ID), zap.Error(err))
		return err
	}
	if visited > 0 {
		w.logger.Info("reconciled uninitialized tenants", zap.Int("count", visited))
	}
	return nil
}

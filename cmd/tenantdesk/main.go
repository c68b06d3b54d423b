package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/tenantdesk/internal/adapter/fsm"
	"github.com/neomorfeo/tenantdesk/internal/adapter/logging"
	"github.com/neomorfeo/tenantdesk/internal/adapter/mail"
	"github.com/neomorfeo/tenantdesk/internal/adapter/metrics"
	oteladapter "github.com/neomorfeo/tenantdesk/internal/adapter/otel"
	redisadapter "github.com/neomorfeo/tenantdesk/internal/adapter/redis"
	riveradapter "github.com/neomorfeo/tenantdesk/internal/adapter/river"
	"github.com/neomorfeo/tenantdesk/internal/adapter/sqlite"
	"github.com/neomorfeo/tenantdesk/internal/app"
	"github.com/neomorfeo/tenantdesk/internal/config"
	"github.com/neomorfeo/tenantdesk/internal/domain"

	handler "github.com/neomorfeo/tenantdesk/internal/adapter/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tenantdesk: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---
	providers, err := oteladapter.Setup(ctx, oteladapter.Config{
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.OTel.ServiceVersion,
		Environment:    cfg.OTel.Environment,
		Exporter:       cfg.OTel.Exporter,
		Insecure:       cfg.OTel.Insecure,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	lifecycle := metrics.NewLifecycleMetrics(reg)

	// --- Adapters (out) ---
	db, err := oteladapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	sqlStore, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	store := oteladapter.NewTracingStore(sqlStore)

	guard, closeGuard := newGuard(cfg, logger)
	defer closeGuard()

	gateway := oteladapter.NewTracingGateway(newGateway(cfg, logger))

	// --- Application ---
	initializer := app.NewInitializer(store, store, store,
		app.InitializerConfig{Modules: cfg.Tenant.Modules},
		logger,
		app.WithMetrics(lifecycle),
	)

	scheduler, stopJobs, err := newScheduler(ctx, cfg, db, initializer, logger)
	if err != nil {
		return err
	}
	defer stopJobs()

	svc := handler.Services{
		Tenants: app.NewTenantService(store, guard, oteladapter.NewTracingScheduler(scheduler),
			domain.TenantDefaults{
				Subscription: cfg.Tenant.DefaultSubscription,
				Currency:     cfg.Tenant.DefaultCurrency,
				BillingCycle: cfg.Tenant.DefaultBillingCycle,
			},
			logger,
			app.WithMetrics(lifecycle),
		),
		Admins:      app.NewAdminService(store, store, fsm.New(), cfg.Admin.BcryptCost, logger, app.WithMetrics(lifecycle)),
		Invitations: app.NewInvitationDispatcher(gateway, store, cfg.Invitation.ActivationBaseURL, logger, app.WithMetrics(lifecycle)),
		Initializer: initializer,
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(cfg.OTel.ServiceName, otelchi.WithChiRoutes(router)))
	router.Use(handler.RequestLogger(logger))
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	api := humachi.New(router, huma.DefaultConfig("tenantdesk", cfg.OTel.ServiceVersion))
	handler.Register(api, svc)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("tenantdesk listening", zap.String("addr", srv.Addr), zap.String("docs", "/docs"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

func newGuard(cfg *config.Config, logger *zap.Logger) (domain.DeletionGuard, func()) {
	if cfg.Guard.Driver == "redis" {
		client := redisadapter.NewClient(cfg.Guard.RedisAddr, logger)
		return redisadapter.NewGuard(client, cfg.Guard.TTL, logger), func() { client.Close() }
	}
	return app.NewMemoryGuard(), func() {}
}

func newGateway(cfg *config.Config, logger *zap.Logger) domain.NotificationGateway {
	if cfg.Invitation.Driver == "http" {
		return mail.NewRelayGateway(mail.RelayConfig{
			URL:           cfg.Invitation.RelayURL,
			Token:         cfg.Invitation.RelayToken,
			Sender:        cfg.Invitation.Sender,
			Timeout:       cfg.Invitation.RelayTimeout,
			RatePerSecond: cfg.Invitation.RatePerSecond,
			Burst:         cfg.Invitation.Burst,
		}, logger)
	}
	return mail.NewLogGateway(cfg.Invitation.Sender, logger)
}

// newScheduler returns the River-backed scheduler when jobs are enabled and an
// in-process one otherwise. The returned stop function drains pending work.
func newScheduler(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	initializer *app.Initializer,
	logger *zap.Logger,
) (domain.InitializationScheduler, func(), error) {
	if !cfg.Jobs.Enabled {
		sched := app.NewGoroutineScheduler(initializer)
		return sched, sched.Wait, nil
	}

	client, err := riveradapter.Setup(ctx, db, riveradapter.Config{
		Initializer:       initializer,
		ReconcileInterval: cfg.Jobs.ReconcileInterval,
		ReconcileGrace:    cfg.Jobs.ReconcileGrace,
		Logger:            logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("river: %w", err)
	}
	// Started detached so a signal triggers River's graceful Stop rather than a hard cancel.
	if err := client.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, nil, fmt.Errorf("river start: %w", err)
	}

	stopJobs := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			logger.Warn("river stop", zap.Error(err))
		}
	}
	return riveradapter.NewScheduler(client), stopJobs, nil
}

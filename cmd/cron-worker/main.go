package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quayside/quayside-backend/internal/cron"
	"github.com/quayside/quayside-backend/internal/exceptions"
	"github.com/quayside/quayside-backend/internal/fees"
	"github.com/quayside/quayside-backend/internal/ledger"
	"github.com/quayside/quayside-backend/internal/pooling"
	"github.com/quayside/quayside-backend/internal/sla"
	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db"
	"github.com/quayside/quayside-backend/pkg/instance"
	"github.com/quayside/quayside-backend/pkg/logger"
	"github.com/quayside/quayside-backend/pkg/metrics"
	"github.com/quayside/quayside-backend/pkg/migrate"
	"github.com/quayside/quayside-backend/pkg/outbox"
	"github.com/quayside/quayside-backend/pkg/redis"
	pkgstripe "github.com/quayside/quayside-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.PaymentGateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)
	reconcilerMetrics := metrics.NewReconcilerMetrics(prometheus.DefaultRegisterer)

	poolingRepo := pooling.NewRepository(dbClient.DB())
	slaRepo := sla.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())

	exceptionsService, err := exceptions.NewService(exceptions.NewRepository(dbClient.DB()), dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create exceptions service", err)
		os.Exit(1)
	}

	feesService, err := fees.NewService(
		fees.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		fees.NewRefundClient(stripeClient),
		exceptionsService,
		cfg.Pooling,
		cfg.Fees,
		reconcilerMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create fees service", err)
		os.Exit(1)
	}

	poolingService, err := pooling.NewService(
		poolingRepo,
		dbClient,
		outboxService,
		redisClient,
		feesService,
		sla.NewPlanner(cfg.SLA),
		cfg.Pooling,
		reconcilerMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create pooling service", err)
		os.Exit(1)
	}

	cutoffJob, err := cron.NewPoolCutoffJob(cron.PoolCutoffJobParams{
		Logger:  logg,
		Pooling: poolingService,
		Every:   cfg.Pooling.CutoffSweepEvery,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pool cutoff job", err)
		os.Exit(1)
	}

	escalationJob, err := cron.NewEscalationJob(cron.EscalationJobParams{
		Logger:     logg,
		Pools:      poolingRepo,
		Deliveries: slaRepo,
		Ledger:     ledgerRepo,
		Exceptions: exceptionsService,
		Config:     cfg.Escalation,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create escalation job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	// Each job leases its own lock so a slow escalation poll never blocks the
	// cutoff sweep on a competing replica.
	lockFactory := func(jobName string) (cron.Lock, error) {
		return cron.NewRedisLock(redisClient, redisClient.CronLockKey(jobName), 0)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(cutoffJob, escalationJob, retentionJob),
		Locks:    lockFactory,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

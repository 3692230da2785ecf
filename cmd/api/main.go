package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quayside/quayside-backend/api/routes"
	"github.com/quayside/quayside-backend/internal/attention"
	"github.com/quayside/quayside-backend/internal/auth"
	"github.com/quayside/quayside-backend/internal/exceptions"
	"github.com/quayside/quayside-backend/internal/export"
	"github.com/quayside/quayside-backend/internal/fees"
	"github.com/quayside/quayside-backend/internal/ledger"
	"github.com/quayside/quayside-backend/internal/pooling"
	"github.com/quayside/quayside-backend/internal/sla"
	paymentwebhook "github.com/quayside/quayside-backend/internal/webhooks/payment"
	"github.com/quayside/quayside-backend/pkg/auth/session"
	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db"
	"github.com/quayside/quayside-backend/pkg/logger"
	"github.com/quayside/quayside-backend/pkg/metrics"
	"github.com/quayside/quayside-backend/pkg/migrate"
	"github.com/quayside/quayside-backend/pkg/outbox"
	"github.com/quayside/quayside-backend/pkg/redis"
	pkgstripe "github.com/quayside/quayside-backend/pkg/stripe"
)

const webhookDedupeTTL = 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		StaffRepo:      auth.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.PaymentGateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	reconcilerMetrics := metrics.NewReconcilerMetrics(prometheus.DefaultRegisterer)

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
		pooling.NewRepository(dbClient.DB()),
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

	slaService, err := sla.NewService(sla.NewRepository(dbClient.DB()), dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create sla service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	exportService, err := export.NewService(export.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	webhookService, err := paymentwebhook.NewService(ledgerService)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := paymentwebhook.NewIdempotencyGuard(redisClient, webhookDedupeTTL, "payment_webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Sessions:       sessionManager,
			Auth:           authService,
			Pooling:        poolingService,
			Attention:      attention.NewClassifier(cfg.SLA),
			Exceptions:     exceptionsService,
			Ledger:         ledgerService,
			SLA:            slaService,
			Export:         exportService,
			PaymentClient:  stripeClient,
			PaymentWebhook: webhookService,
			WebhookGuard:   webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

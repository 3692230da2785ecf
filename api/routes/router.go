package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quayside/quayside-backend/api/controllers"
	webhookcontrollers "github.com/quayside/quayside-backend/api/controllers/webhooks"
	"github.com/quayside/quayside-backend/api/middleware"
	"github.com/quayside/quayside-backend/internal/attention"
	"github.com/quayside/quayside-backend/internal/auth"
	"github.com/quayside/quayside-backend/internal/exceptions"
	"github.com/quayside/quayside-backend/internal/export"
	"github.com/quayside/quayside-backend/internal/ledger"
	"github.com/quayside/quayside-backend/internal/pooling"
	"github.com/quayside/quayside-backend/internal/sla"
	paymentwebhook "github.com/quayside/quayside-backend/internal/webhooks/payment"
	"github.com/quayside/quayside-backend/pkg/auth/session"
	"github.com/quayside/quayside-backend/pkg/bigquery"
	"github.com/quayside/quayside-backend/pkg/capability"
	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db"
	"github.com/quayside/quayside-backend/pkg/logger"
	redispkg "github.com/quayside/quayside-backend/pkg/redis"
	"github.com/quayside/quayside-backend/pkg/stripe"
)

// Params collects everything the HTTP surface depends on. Optional entries
// (warehouse, webhook stack) may be nil; their routes degrade gracefully.
type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redispkg.Client
	Warehouse      bigquery.Pinger
	Sessions       session.AccessSessionChecker
	Auth           auth.Service
	Pooling        pooling.Service
	Attention      *attention.Classifier
	Exceptions     exceptions.Service
	Ledger         ledger.Service
	SLA            sla.Service
	Export         export.Service
	PaymentClient  *stripe.Client
	PaymentWebhook *paymentwebhook.Service
	WebhookGuard   *paymentwebhook.IdempotencyGuard
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	// Interface fields stay nil when no client is wired; a typed nil would
	// defeat the middlewares' nil checks.
	var idemStore redispkg.IdempotencyStore
	var rlStore middleware.RateLimiterStore
	var redisPinger redispkg.Pinger
	if p.Redis != nil {
		idemStore = p.Redis
		rlStore = p.Redis
		redisPinger = p.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginActorLimit,
	)
	writePolicy := middleware.NewRateLimitPolicy(
		"write",
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteIPLimit,
		cfg.RateLimit.WriteActorLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadinessDeps(p.DB, redisPinger, p.Warehouse)))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payment", webhookcontrollers.PaymentWebhook(p.PaymentWebhook, p.PaymentClient, p.WebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(loginPolicy, rlStore, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))
		r.Use(middleware.RateLimit(writePolicy, rlStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderIntake(p.Pooling, logg))
			r.Get("/{orderId}", controllers.OrderDetail(p.Pooling, p.Attention, logg))
		})

		r.Route("/pools", func(r chi.Router) {
			r.Get("/", controllers.PoolList(p.Pooling, p.Attention, logg))
			r.Get("/{poolId}", controllers.PoolDetail(p.Pooling, p.Attention, logg))
			r.With(middleware.RequireCapability(capability.PoolsLock, logg)).
				Post("/{poolId}/lock", controllers.PoolLock(p.Pooling, logg))
		})

		r.Route("/exceptions", func(r chi.Router) {
			r.Get("/", controllers.ExceptionList(p.Exceptions, logg))
			r.Get("/{exceptionId}", controllers.ExceptionDetail(p.Exceptions, logg))
			r.Post("/{exceptionId}/transition", controllers.ExceptionTransition(p.Exceptions, logg))
		})

		r.Route("/ledger", func(r chi.Router) {
			r.With(middleware.RequireCapability(capability.LedgerWrite, logg)).
				Post("/entries", controllers.LedgerAppend(p.Ledger, logg))
			r.With(middleware.RequireCapability(capability.ReportsRead, logg)).
				Get("/entries", controllers.LedgerEntries(p.Ledger, logg))
		})

		r.With(middleware.RequireCapability(capability.ReportsRead, logg)).
			Get("/reports/finance", controllers.FinanceReport(p.Ledger, logg))

		r.Route("/deliveries", func(r chi.Router) {
			r.Post("/{deliveryId}/delivered", controllers.DeliveryDelivered(p.SLA, logg))
			r.With(middleware.RequireCapability(capability.SLAOverride, logg)).
				Post("/{deliveryId}/sla-override", controllers.DeliverySLAOverride(p.SLA, logg))
		})

		r.With(middleware.RequireCapability(capability.ExportsRead, logg)).
			Get("/exports/{view}", controllers.ExportCSV(p.Export, logg))
	})

	return r
}

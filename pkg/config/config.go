package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App            AppConfig
	Service        ServiceConfig
	DB             DBConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Password       PasswordConfig
	GCP            GCPConfig
	PubSub         PubSubConfig
	BigQuery       BigQueryConfig
	Outbox         OutboxConfig
	Pooling        PoolingConfig
	Fees           FeesConfig
	PaymentGateway PaymentGatewayConfig
	SLA            SLAConfig
	Escalation     EscalationConfig
	RateLimit      RateLimitConfig
	CORS           CORSConfig
	FeatureFlags   FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUAYSIDE_APP_ENV" required:"true"`
	Port         string `envconfig:"QUAYSIDE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUAYSIDE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUAYSIDE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"QUAYSIDE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"QUAYSIDE_DB_DSN"`
	Driver string `envconfig:"QUAYSIDE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUAYSIDE_DB_HOST"`
	LegacyPort     int    `envconfig:"QUAYSIDE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUAYSIDE_DB_USER"`
	LegacyPassword string `envconfig:"QUAYSIDE_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUAYSIDE_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUAYSIDE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUAYSIDE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUAYSIDE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUAYSIDE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUAYSIDE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUAYSIDE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"QUAYSIDE_REDIS_ADDR"`
	Password     string        `envconfig:"QUAYSIDE_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUAYSIDE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUAYSIDE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUAYSIDE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUAYSIDE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUAYSIDE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUAYSIDE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"QUAYSIDE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"QUAYSIDE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"QUAYSIDE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"QUAYSIDE_JWT_REFRESH_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL converts the configured refresh TTL into a duration.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// PasswordConfig tunes Argon2id hashing for staff credentials.
type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"QUAYSIDE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"QUAYSIDE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"QUAYSIDE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"QUAYSIDE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"QUAYSIDE_ARGON_KEY_LEN" default:"32"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"QUAYSIDE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"QUAYSIDE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"QUAYSIDE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"QUAYSIDE_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription string `envconfig:"QUAYSIDE_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

// BigQueryConfig names the warehouse dataset fed by the analytics consumer.
type BigQueryConfig struct {
	Dataset     string `envconfig:"QUAYSIDE_BQ_DATASET" default:"quayside_ops"`
	EventsTable string `envconfig:"QUAYSIDE_BQ_EVENTS_TABLE" default:"ops_events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"QUAYSIDE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"QUAYSIDE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"QUAYSIDE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"QUAYSIDE_OUTBOX_IDEMPOTENCY_TTL" default:"48h"`
}

// PoolingConfig tunes pool assignment and cutoff locking.
type PoolingConfig struct {
	AssignmentWindow  time.Duration `envconfig:"QUAYSIDE_POOL_ASSIGNMENT_WINDOW" default:"24h"`
	CutoffSweepEvery  time.Duration `envconfig:"QUAYSIDE_POOL_CUTOFF_SWEEP_EVERY" default:"1m"`
	LockLeaseTTL      time.Duration `envconfig:"QUAYSIDE_POOL_LOCK_LEASE_TTL" default:"30s"`
	FreeDeliveryCount int           `envconfig:"QUAYSIDE_POOL_FREE_DELIVERY_COUNT" default:"3"`
}

// FeesConfig bounds refund retries against the Payment Processor.
type FeesConfig struct {
	RefundMaxAttempts  int           `envconfig:"QUAYSIDE_REFUND_MAX_ATTEMPTS" default:"5"`
	RefundBackoffBase  time.Duration `envconfig:"QUAYSIDE_REFUND_BACKOFF_BASE" default:"500ms"`
	RefundCallDeadline time.Duration `envconfig:"QUAYSIDE_REFUND_CALL_DEADLINE" default:"30s"`
}

type PaymentGatewayConfig struct {
	BaseURL       string        `envconfig:"QUAYSIDE_PAYMENT_GATEWAY_BASE_URL"`
	APIKey        string        `envconfig:"QUAYSIDE_PAYMENT_GATEWAY_API_KEY"`
	WebhookSecret string        `envconfig:"QUAYSIDE_PAYMENT_WEBHOOK_SECRET"`
	Timeout       time.Duration `envconfig:"QUAYSIDE_PAYMENT_GATEWAY_TIMEOUT" default:"15s"`
}

// SLAConfig derives delivery SLA targets and attention thresholds.
type SLAConfig struct {
	DeliveryBuffer       time.Duration `envconfig:"QUAYSIDE_SLA_DELIVERY_BUFFER" default:"4h"`
	UnderwayWarnWindow   time.Duration `envconfig:"QUAYSIDE_SLA_UNDERWAY_WARN_WINDOW" default:"1h"`
	ScheduledWarnWindow  time.Duration `envconfig:"QUAYSIDE_SLA_SCHEDULED_WARN_WINDOW" default:"2h"`
	PoolCutoffWarnWindow time.Duration `envconfig:"QUAYSIDE_POOL_CUTOFF_WARN_WINDOW" default:"24h"`
}

// EscalationConfig sets the thresholds watched by the exception escalator.
type EscalationConfig struct {
	PollEvery             time.Duration `envconfig:"QUAYSIDE_ESCALATION_POLL_EVERY" default:"5m"`
	CriticalPoolThreshold int           `envconfig:"QUAYSIDE_ESCALATION_CRITICAL_POOLS" default:"1"`
	SLABreachThreshold    int           `envconfig:"QUAYSIDE_ESCALATION_SLA_BREACHES" default:"1"`
	FailedLedgerThreshold int           `envconfig:"QUAYSIDE_ESCALATION_FAILED_LEDGER" default:"3"`
	FailedLedgerLookback  time.Duration `envconfig:"QUAYSIDE_ESCALATION_FAILED_LEDGER_LOOKBACK" default:"24h"`
}

// RateLimitConfig throttles the login surface and authenticated writes.
type RateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"QUAYSIDE_RL_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"QUAYSIDE_RL_LOGIN_IP_LIMIT" default:"10"`
	LoginActorLimit int           `envconfig:"QUAYSIDE_RL_LOGIN_ACTOR_LIMIT" default:"5"`
	WriteWindow     time.Duration `envconfig:"QUAYSIDE_RL_WRITE_WINDOW" default:"1m"`
	WriteIPLimit    int           `envconfig:"QUAYSIDE_RL_WRITE_IP_LIMIT" default:"240"`
	WriteActorLimit int           `envconfig:"QUAYSIDE_RL_WRITE_ACTOR_LIMIT" default:"120"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"QUAYSIDE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"QUAYSIDE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"QUAYSIDE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

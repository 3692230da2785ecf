package config

// EnvPrefix is passed to envconfig.Process; individual fields carry fully
// qualified names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names shared with tests and tooling.
const (
	EnvAppEnv   = "QUAYSIDE_APP_ENV"
	EnvPort     = "QUAYSIDE_APP_PORT"
	EnvDBDSN    = "QUAYSIDE_DB_DSN"
	EnvDBHost   = "QUAYSIDE_DB_HOST"
	EnvDBUser   = "QUAYSIDE_DB_USER"
	EnvDBName   = "QUAYSIDE_DB_NAME"
	EnvRedisURL = "QUAYSIDE_REDIS_URL"

	EnvJWTSecret  = "QUAYSIDE_JWT_SECRET"
	EnvJWTIssuer  = "QUAYSIDE_JWT_ISSUER"
	EnvJWTExpMins = "QUAYSIDE_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID      = "QUAYSIDE_GCP_PROJECT_ID"
	EnvPubSubDomainTopic = "QUAYSIDE_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "QUAYSIDE_PUBSUB_DOMAIN_SUBSCRIPTION"

	EnvPaymentGatewayBaseURL = "QUAYSIDE_PAYMENT_GATEWAY_BASE_URL"
	EnvPaymentWebhookSecret  = "QUAYSIDE_PAYMENT_WEBHOOK_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

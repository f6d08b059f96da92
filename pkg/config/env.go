package config

// EnvPrefix is empty because every field carries its full variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "BOOKSTORE_APP_ENV"
	EnvPort     = "BOOKSTORE_APP_PORT"
	EnvLogLevel = "BOOKSTORE_LOG_LEVEL"

	EnvDBDSN    = "BOOKSTORE_DB_DSN"
	EnvDBDriver = "BOOKSTORE_DB_DRIVER"
	EnvDBHost   = "BOOKSTORE_DB_HOST"
	EnvDBUser   = "BOOKSTORE_DB_USER"
	EnvDBName   = "BOOKSTORE_DB_NAME"

	EnvRedisURL = "BOOKSTORE_REDIS_URL"

	EnvUseSQLite   = "BOOKSTORE_USE_SQLITE"
	EnvAutoMigrate = "BOOKSTORE_AUTO_MIGRATE"

	EnvStorefrontAPIURL     = "BOOKSTORE_STOREFRONT_API_URL"
	EnvStorefrontTimeout    = "BOOKSTORE_STOREFRONT_TIMEOUT"
	EnvStorefrontSessionKey = "BOOKSTORE_STOREFRONT_SESSION_KEY"
	EnvStorefrontRedisURL   = "BOOKSTORE_STOREFRONT_REDIS_URL"
	EnvStorefrontMetrics    = "BOOKSTORE_STOREFRONT_METRICS_ADDR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

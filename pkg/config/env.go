package config

const (
	// EnvPrefix is empty because every field carries its full variable name.
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
	AppEnvTest = "test"

	EnvAppEnv      = "SHIPLINE_APP_ENV"
	EnvPort        = "SHIPLINE_APP_PORT"
	EnvLogLevel    = "SHIPLINE_LOG_LEVEL"
	EnvAppVersion  = "SHIPLINE_APP_VERSION"
	EnvCORSOrigins = "SHIPLINE_CORS_ORIGINS"

	EnvDBDSN  = "SHIPLINE_DB_DSN"
	EnvDBHost = "SHIPLINE_DB_HOST"
	EnvDBUser = "SHIPLINE_DB_USER"
	EnvDBName = "SHIPLINE_DB_NAME"

	EnvRedisURL = "SHIPLINE_REDIS_URL"

	EnvJWTSecret = "SHIPLINE_JWT_SECRET"
	EnvJWTIssuer = "SHIPLINE_JWT_ISSUER"
	EnvJWTTTL    = "SHIPLINE_JWT_TTL"

	EnvTrustedProxies = "SHIPLINE_HTTP_TRUSTED_PROXIES"

	EnvRateLimitBackend = "SHIPLINE_RATE_LIMIT_BACKEND"
	EnvUseSQLite        = "SHIPLINE_USE_SQLITE"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

const EnvPrefix = "GUDANG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:gudang.db?_foreign_keys=on"
)

const (
	EnvAppEnv   = "GUDANG_APP_ENV"
	EnvPort     = "GUDANG_APP_PORT"
	EnvLogLevel = "GUDANG_LOG_LEVEL"

	EnvDBDSN    = "GUDANG_DB_DSN"
	EnvDBDriver = "GUDANG_DB_DRIVER"
	EnvDBHost   = "GUDANG_DB_HOST"
	EnvDBPort   = "GUDANG_DB_PORT"
	EnvDBUser   = "GUDANG_DB_USER"
	EnvDBPass   = "GUDANG_DB_PASSWORD"
	EnvDBName   = "GUDANG_DB_NAME"

	EnvRedisURL = "GUDANG_REDIS_URL"

	EnvJWTSecret              = "GUDANG_JWT_SECRET"
	EnvJWTIssuer              = "GUDANG_JWT_ISSUER"
	EnvJWTExpMins             = "GUDANG_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "GUDANG_REFRESH_TOKEN_TTL_MINUTES"
	EnvLoginUsernameLimit     = "GUDANG_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT"
	EnvHTTPRateLimitRequests  = "GUDANG_HTTP_RATE_LIMIT_REQUESTS"
	EnvUseSQLite              = "GUDANG_USE_SQLITE"
	EnvAutoMigrate            = "GUDANG_AUTO_MIGRATE"
	EnvCORSAllowedOrigins     = "GUDANG_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

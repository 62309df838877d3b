package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	HTTPRateLimit HTTPRateLimitConfig
	Idempotency   IdempotencyConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string   `envconfig:"GUDANG_APP_ENV" required:"true"`
	Port           string   `envconfig:"GUDANG_APP_PORT" required:"true"`
	LogLevel       string   `envconfig:"GUDANG_LOG_LEVEL" default:"info"`
	LogWarnStack   bool     `envconfig:"GUDANG_LOG_WARN_STACK" default:"false"`
	AllowedOrigins []string `envconfig:"GUDANG_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GUDANG_DB_DSN"`
	Driver string `envconfig:"GUDANG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GUDANG_DB_HOST"`
	LegacyPort     int    `envconfig:"GUDANG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GUDANG_DB_USER"`
	LegacyPassword string `envconfig:"GUDANG_DB_PASSWORD"`
	LegacyName     string `envconfig:"GUDANG_DB_NAME"`
	LegacySSLMode  string `envconfig:"GUDANG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GUDANG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GUDANG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GUDANG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GUDANG_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"GUDANG_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

// IsSQLite reports whether the configured driver targets a SQLite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"GUDANG_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GUDANG_REDIS_ADDR"`
	Password     string        `envconfig:"GUDANG_REDIS_PASSWORD"`
	DB           int           `envconfig:"GUDANG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GUDANG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GUDANG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GUDANG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GUDANG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GUDANG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GUDANG_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GUDANG_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GUDANG_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GUDANG_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GUDANG_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GUDANG_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GUDANG_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GUDANG_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GUDANG_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GUDANG_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"GUDANG_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GUDANG_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type HTTPRateLimitConfig struct {
	Requests int           `envconfig:"GUDANG_HTTP_RATE_LIMIT_REQUESTS" default:"120"`
	Window   time.Duration `envconfig:"GUDANG_HTTP_RATE_LIMIT_WINDOW" default:"1m"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"GUDANG_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GUDANG_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GUDANG_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
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

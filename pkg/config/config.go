package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const minJWTSecretLength = 32

type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cookie       CookieConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.App.Env)) {
	case AppEnvDev, AppEnvProd, AppEnvTest:
	default:
		return fmt.Errorf("%s must be one of %s, %s, %s", EnvAppEnv, AppEnvDev, AppEnvProd, AppEnvTest)
	}
	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("%s must be at least %d characters", EnvJWTSecret, minJWTSecretLength)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTTTL)
	}
	if c.HTTP.TrustedProxies < 0 {
		return fmt.Errorf("%s must not be negative", EnvTrustedProxies)
	}
	switch c.RateLimit.Backend {
	case RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s=redis requires %s", EnvRateLimitBackend, EnvRedisURL)
		}
	default:
		return fmt.Errorf("%s must be %q or %q", EnvRateLimitBackend, RateLimitBackendMemory, RateLimitBackendRedis)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"SHIPLINE_APP_ENV" default:"development"`
	Port         string `envconfig:"SHIPLINE_APP_PORT" default:"5000"`
	Version      string `envconfig:"SHIPLINE_APP_VERSION" default:"1.0.0"`
	LogLevel     string `envconfig:"SHIPLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHIPLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "prod")
}

type HTTPConfig struct {
	BodyLimitBytes  int64         `envconfig:"SHIPLINE_HTTP_BODY_LIMIT_BYTES" default:"10485760"`
	RequestTimeout  time.Duration `envconfig:"SHIPLINE_HTTP_REQUEST_TIMEOUT" default:"30s"`
	ReadTimeout     time.Duration `envconfig:"SHIPLINE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SHIPLINE_HTTP_WRITE_TIMEOUT" default:"45s"`
	IdleTimeout     time.Duration `envconfig:"SHIPLINE_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHIPLINE_HTTP_SHUTDOWN_TIMEOUT" default:"30s"`
	CORSOrigins     []string      `envconfig:"SHIPLINE_CORS_ORIGINS" default:"http://localhost:3000"`
	// TrustedProxies is the number of reverse proxies that append to
	// X-Forwarded-For in front of the service. Zero ignores the header.
	TrustedProxies int `envconfig:"SHIPLINE_HTTP_TRUSTED_PROXIES" default:"0"`
}

type DBConfig struct {
	DSN        string `envconfig:"SHIPLINE_DB_DSN"`
	Driver     string `envconfig:"SHIPLINE_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"SHIPLINE_SQLITE_PATH" default:"file:shipline.db?cache=shared"`

	LegacyHost     string `envconfig:"SHIPLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"SHIPLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHIPLINE_DB_USER"`
	LegacyPassword string `envconfig:"SHIPLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHIPLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHIPLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHIPLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHIPLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHIPLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHIPLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHIPLINE_REDIS_URL"`
	Address      string        `envconfig:"SHIPLINE_REDIS_ADDR"`
	Password     string        `envconfig:"SHIPLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHIPLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHIPLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHIPLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHIPLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHIPLINE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"SHIPLINE_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a Redis endpoint has been configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret string        `envconfig:"SHIPLINE_JWT_SECRET" required:"true"`
	Issuer string        `envconfig:"SHIPLINE_JWT_ISSUER" default:"shipline"`
	TTL    time.Duration `envconfig:"SHIPLINE_JWT_TTL" default:"168h"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHIPLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHIPLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHIPLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHIPLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHIPLINE_ARGON_KEY_LEN" default:"32"`
}

// CookieConfig controls the session cookie. Secure defaults to on in
// production when left unset.
type CookieConfig struct {
	Name     string `envconfig:"SHIPLINE_COOKIE_NAME" default:"token"`
	Domain   string `envconfig:"SHIPLINE_COOKIE_DOMAIN"`
	Secure   *bool  `envconfig:"SHIPLINE_COOKIE_SECURE"`
	SameSite string `envconfig:"SHIPLINE_COOKIE_SAMESITE" default:"lax"`
}

const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

type RateLimitConfig struct {
	Backend       string        `envconfig:"SHIPLINE_RATE_LIMIT_BACKEND" default:"memory"`
	GeneralWindow time.Duration `envconfig:"SHIPLINE_RATE_LIMIT_WINDOW" default:"15m"`
	GeneralLimit  int           `envconfig:"SHIPLINE_RATE_LIMIT_MAX" default:"100"`
	APIWindow     time.Duration `envconfig:"SHIPLINE_API_RATE_LIMIT_WINDOW" default:"1m"`
	APILimit      int           `envconfig:"SHIPLINE_API_RATE_LIMIT_MAX" default:"60"`
	AuthWindow    time.Duration `envconfig:"SHIPLINE_AUTH_RATE_LIMIT_WINDOW" default:"15m"`
	AuthLimit     int           `envconfig:"SHIPLINE_AUTH_RATE_LIMIT_MAX" default:"5"`
	SweepInterval time.Duration `envconfig:"SHIPLINE_RATE_LIMIT_SWEEP_INTERVAL" default:"1m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHIPLINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHIPLINE_AUTO_MIGRATE" default:"false"`
	Metrics     bool `envconfig:"SHIPLINE_METRICS_ENABLED" default:"true"`
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

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = ""
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Stripe       StripeConfig
	Cart         CartConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"AGENCYDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"AGENCYDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AGENCYDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGENCYDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGENCYDESK_DB_DSN"`
	Driver string `envconfig:"AGENCYDESK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"AGENCYDESK_DB_HOST"`
	Port     int    `envconfig:"AGENCYDESK_DB_PORT" default:"5432"`
	User     string `envconfig:"AGENCYDESK_DB_USER"`
	Password string `envconfig:"AGENCYDESK_DB_PASSWORD"`
	Name     string `envconfig:"AGENCYDESK_DB_NAME"`
	SSLMode  string `envconfig:"AGENCYDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGENCYDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGENCYDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGENCYDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGENCYDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGENCYDESK_REDIS_URL" required:"true"`
	Password     string        `envconfig:"AGENCYDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGENCYDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGENCYDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGENCYDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGENCYDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGENCYDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGENCYDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AGENCYDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AGENCYDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AGENCYDESK_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"AGENCYDESK_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the refresh-session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AGENCYDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AGENCYDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AGENCYDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AGENCYDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AGENCYDESK_ARGON_KEY_LEN" default:"32"`
}

type StripeConfig struct {
	APIKey              string `envconfig:"AGENCYDESK_STRIPE_API_KEY"`
	Env                 string `envconfig:"AGENCYDESK_STRIPE_ENV" default:"test"`
	SubscriptionPriceID string `envconfig:"AGENCYDESK_STRIPE_SUBSCRIPTION_PRICE_ID"`
	PortalReturnURL     string `envconfig:"AGENCYDESK_STRIPE_PORTAL_RETURN_URL"`
	CheckoutSuccessURL  string `envconfig:"AGENCYDESK_STRIPE_CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL   string `envconfig:"AGENCYDESK_STRIPE_CHECKOUT_CANCEL_URL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CartConfig struct {
	PollInterval time.Duration `envconfig:"AGENCYDESK_CART_POLL_INTERVAL" default:"60s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AGENCYDESK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"AGENCYDESK_DB_HOST": db.Host,
		"AGENCYDESK_DB_USER": db.User,
		"AGENCYDESK_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either AGENCYDESK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth     Auth
	Checkout Checkout
	Events   Events
	Mongo    MongoConfig
	Redis    RedisConfig
}

// Auth is the token configuration handed to the codec and AuthService.
type Auth struct {
	Enabled            bool    `env:"MOBILE_API_ENABLED,        default=true"`
	Secret             string  `env:"JWT_SECRET"`
	Issuer             string  `env:"JWT_ISSUER,                default=GrandNode-MobileApi"`
	Audience           string  `env:"JWT_AUDIENCE,              default=GrandNode-MobileApi"`
	ValidateIssuer     bool    `env:"JWT_VALIDATE_ISSUER,       default=true"`
	ValidateAudience   bool    `env:"JWT_VALIDATE_AUDIENCE,     default=true"`
	AccessTTLMinutes   int     `env:"ACCESS_TOKEN_TTL_MINUTES,  default=60"`
	RefreshTTLMinutes  int     `env:"REFRESH_TOKEN_TTL_MINUTES, default=10080"`
	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND,     default=5"`
}

func (a Auth) AccessTTL() time.Duration  { return time.Duration(a.AccessTTLMinutes) * time.Minute }
func (a Auth) RefreshTTL() time.Duration { return time.Duration(a.RefreshTTLMinutes) * time.Minute }

// IsDevelopment enables pretty console logging.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

type Checkout struct {
	SessionTTL  time.Duration `env:"CHECKOUT_SESSION_TTL,  default=24h"`
	LockTimeout time.Duration `env:"CHECKOUT_LOCK_TIMEOUT, default=5s"`
	Currency    string        `env:"CURRENCY,              default=USD"`
	TaxRate     string        `env:"TAX_RATE,              default=0"`
}

// Events configures the registration event dispatcher.
type Events struct {
	Workers int `env:"EVENT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=mobile_api"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=100"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=20"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.AccessTTLMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL_MINUTES must be positive"))
	}
	if c.Auth.RefreshTTLMinutes <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_TTL_MINUTES must be positive"))
	}
	if c.Checkout.SessionTTL <= 0 {
		errs = append(errs, errors.New("CHECKOUT_SESSION_TTL must be positive"))
	}
	if rate, err := decimal.NewFromString(c.Checkout.TaxRate); err != nil || rate.IsNegative() {
		errs = append(errs, errors.New("TAX_RATE must be a non-negative decimal"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

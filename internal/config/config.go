package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/pricing"
	pkgconfig "github.com/eldenfruit/storefront/pkg/config"
	"github.com/eldenfruit/storefront/pkg/middleware"
	"github.com/eldenfruit/storefront/pkg/tracing"
)

// Store backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// SessionID tags published events. Empty means a random id per process.
	SessionID string `env:"STOREFRONT_SESSION_ID"`

	// Storage
	StoreBackend   string        `env:"STORE_BACKEND" envDefault:"redis"`
	RedisHost      string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	RedisNamespace string        `env:"REDIS_NAMESPACE" envDefault:"storefront"`
	RedisTTL       time.Duration `env:"REDIS_TTL" envDefault:"0s"`

	// RedisSlowThreshold logs commands slower than this. Zero disables it.
	RedisSlowThreshold time.Duration `env:"REDIS_SLOW_THRESHOLD" envDefault:"100ms"`

	// Catalog
	CatalogSource    string `env:"CATALOG_SOURCE" envDefault:"data/products.json"`
	CatalogMaxAge    int    `env:"CATALOG_MAX_AGE" envDefault:"300"`
	PromoCatalogFile string `env:"PROMO_CATALOG_FILE"`

	// Pricing, in whole dong
	FreeShippingThreshold int64 `env:"FREE_SHIPPING_THRESHOLD" envDefault:"500000"`
	FlatShippingFee       int64 `env:"FLAT_SHIPPING_FEE" envDefault:"30000"`

	ConfirmationTTL time.Duration `env:"CONFIRMATION_TTL" envDefault:"5m"`
	NoticeCapacity  int           `env:"NOTICE_CAPACITY" envDefault:"50"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// PprofCIDRs lists networks allowed to reach /debug/pprof. Empty disables it.
	PprofCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	CORS      middleware.CORSConfig
	RateLimit middleware.RateLimitConfig
	Tracing   tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads configuration from vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, vars); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PricingPolicy returns the configured shipping rules.
func (c *Config) PricingPolicy() pricing.Policy {
	return pricing.Policy{
		FreeShippingThreshold: domain.Money(c.FreeShippingThreshold),
		FlatShippingFee:       domain.Money(c.FlatShippingFee),
	}
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StoreBackend {
	case BackendRedis:
		if c.RedisHost == "" {
			return errors.New("REDIS_HOST is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.FlatShippingFee < 0 {
		return fmt.Errorf("FLAT_SHIPPING_FEE must not be negative: %d", c.FlatShippingFee)
	}
	if c.FreeShippingThreshold < 0 {
		return fmt.Errorf("FREE_SHIPPING_THRESHOLD must not be negative: %d", c.FreeShippingThreshold)
	}
	if c.ConfirmationTTL <= 0 {
		return fmt.Errorf("CONFIRMATION_TTL must be positive: %s", c.ConfirmationTTL)
	}
	if c.NoticeCapacity < 1 {
		return fmt.Errorf("NOTICE_CAPACITY must be at least 1: %d", c.NoticeCapacity)
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when events are enabled")
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative: %v", c.RateLimit.RPS)
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}
	return nil
}

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	AdminPassword   string        `env:"ADMIN_PASSWORD,required" validate:"required,min=8"`
	TokenSigningKey string        `env:"TOKEN_SIGNING_KEY,required" validate:"required,min=32"`
	AdminTokenTTL   time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"24h" validate:"gt=0"`

	ShopifyShopDomain             string        `env:"SHOPIFY_SHOP_DOMAIN,required" validate:"required"`
	ShopifyAccessToken            string        `env:"SHOPIFY_ACCESS_TOKEN,required" validate:"required"`
	ShopifyAPIVersion             string        `env:"SHOPIFY_API_VERSION" envDefault:"2025-01" validate:"required"`
	ShopifyTimeout                time.Duration `env:"SHOPIFY_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	ReplacementMetafieldNamespace string        `env:"REPLACEMENT_METAFIELD_NAMESPACE" envDefault:"custom" validate:"required"`
	ReplacementMetafieldKey       string        `env:"REPLACEMENT_METAFIELD_KEY" envDefault:"replacement_tracking" validate:"required"`

	DatabaseURL      string `env:"DATABASE_URL"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"8" validate:"omitempty,gte=1,lte=100"`
	EncryptionKey    string `env:"ENCRYPTION_KEY" validate:"omitempty,len=32"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider  string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`

	UnsavedPageTTL          time.Duration `env:"UNSAVED_PAGE_TTL" envDefault:"1h" validate:"gt=0"`
	CacheSweepInterval      time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"5m" validate:"gt=0"`
	PageRefreshAfter        time.Duration `env:"PAGE_REFRESH_AFTER" envDefault:"6h" validate:"gt=0"`
	PageRetention           time.Duration `env:"PAGE_RETENTION" envDefault:"2160h" validate:"gt=0"`
	PruneInterval           time.Duration `env:"PRUNE_INTERVAL" envDefault:"24h" validate:"gt=0"`
	FulfillmentAnchorWindow time.Duration `env:"FULFILLMENT_ANCHOR_WINDOW" envDefault:"720h" validate:"gt=0"`
	FacilitiesFile          string        `env:"FACILITIES_FILE"`
	DisplayTimezone         string        `env:"DISPLAY_TIMEZONE" envDefault:"UTC"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM"`

	SentryDSN string `env:"SENTRY_DSN"`

	BaseURL   string     `env:"BASE_URL" validate:"omitempty,url"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	LogFile   string     `env:"LOG_FILE"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	hasResendKey := strings.TrimSpace(c.ResendAPIKey) != ""
	hasEmailFrom := strings.TrimSpace(c.EmailFrom) != ""
	if hasResendKey != hasEmailFrom {
		return fmt.Errorf("RESEND_API_KEY and EMAIL_FROM must be set together")
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if hasResendKey && baseURL == "" {
		return fmt.Errorf("BASE_URL is required when email sharing is enabled")
	}

	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("DISPLAY_TIMEZONE is not a valid IANA time zone: %w", err)
	}

	return nil
}

// DurableStoreEnabled reports whether saved pages are written to PostgreSQL.
func (c *Config) DurableStoreEnabled() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

func (c *Config) SharingEnabled() bool {
	return strings.TrimSpace(c.ResendAPIKey) != "" && strings.TrimSpace(c.EmailFrom) != ""
}

// Location returns the display time zone. validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

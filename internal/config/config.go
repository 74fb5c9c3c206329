package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pricing"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string        `env:"RUN_ADDRESS" envDefault:":8080" validate:"required"`
	DatabaseURI     string        `env:"DATABASE_URI" validate:"required"`
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"change-me-in-production" validate:"required"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"24h" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	AdminLogins     []string      `env:"ADMIN_LOGINS" envSeparator:","`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`

	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"memory" validate:"oneof=memory redis"`
	RedisURL      string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`
	CartTTL       time.Duration `env:"CART_TTL" envDefault:"168h" validate:"gt=0"`

	TaxRate               string        `env:"TAX_RATE" envDefault:"0.18" validate:"numeric"`
	FreeShippingThreshold string        `env:"FREE_SHIPPING_THRESHOLD" envDefault:"500" validate:"numeric"`
	FlatShippingFee       string        `env:"FLAT_SHIPPING_FEE" envDefault:"50" validate:"numeric"`
	DeliveryEstimate      time.Duration `env:"DELIVERY_ESTIMATE" envDefault:"120h" validate:"gte=0"`
	OrderNumberPrefix     string        `env:"ORDER_NUMBER_PREFIX" envDefault:"SF" validate:"required,alphanum,max=8"`
	StatusTransitions     string        `env:"STATUS_TRANSITIONS" envDefault:"permissive" validate:"oneof=permissive strict"`
	TrackingAtCheckout    bool          `env:"TRACKING_AT_CHECKOUT" envDefault:"true"`

	KafkaBrokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic        string        `env:"KAFKA_TOPIC" envDefault:"storefront.orders" validate:"required"`
	EventPollInterval time.Duration `env:"EVENT_POLL_INTERVAL" envDefault:"2s" validate:"gt=0"`
	EventBatchSize    int           `env:"EVENT_BATCH_SIZE" envDefault:"32" validate:"gt=0"`
	EventWorkers      int           `env:"EVENT_WORKERS" envDefault:"2" validate:"gt=0"`

	StripeWebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET"`
	CallbackDedupTTL    time.Duration `env:"CALLBACK_DEDUP_TTL" envDefault:"24h" validate:"gt=0"`
}

var configValidator = validator.New()

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], env.ToMap(os.Environ()))
}

func load(args []string, environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		pollIntervalStr    = cfg.EventPollInterval.String()
		brokers            = strings.Join(cfg.KafkaBrokers, ",")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json or text")
	fs.StringVar(&cfg.CacheProvider, "cache", cfg.CacheProvider, "Cache provider: memory or redis")
	fs.StringVar(&cfg.StatusTransitions, "transitions", cfg.StatusTransitions, "Admin status transitions: permissive or strict")
	fs.StringVar(&brokers, "kafka-brokers", brokers, "Comma separated Kafka brokers")
	fs.StringVar(&pollIntervalStr, "event-poll-interval", pollIntervalStr, "Interval between outbox polls")
	fs.IntVar(&cfg.EventWorkers, "event-workers", cfg.EventWorkers, "Number of concurrent event publishers")
	fs.IntVar(&cfg.EventBatchSize, "event-batch", cfg.EventBatchSize, "Maximum events per outbox batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.EventPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid event poll interval: %w", err)
	}

	cfg.KafkaBrokers = splitList(brokers)

	if secretFile := environ["JWT_SECRET_FILE"]; secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Pricing().Validate(); err != nil {
		return fmt.Errorf("invalid pricing config: %w", err)
	}
	return nil
}

// Pricing returns tax and shipping parameters. Values are validated by Load.
func (c *Config) Pricing() pricing.Config {
	def := pricing.DefaultConfig()
	return pricing.Config{
		TaxRate:               decimalOr(c.TaxRate, def.TaxRate),
		FreeShippingThreshold: decimalOr(c.FreeShippingThreshold, def.FreeShippingThreshold),
		FlatShippingFee:       decimalOr(c.FlatShippingFee, def.FlatShippingFee),
	}
}

// TransitionMode returns the configured admin status transition mode.
func (c *Config) TransitionMode() model.TransitionMode {
	mode, err := model.ParseTransitionMode(c.StatusTransitions)
	if err != nil {
		return model.TransitionPermissive
	}
	return mode
}

func decimalOr(raw string, def decimal.Decimal) decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

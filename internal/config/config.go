package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"tenantdesk.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	Tenant     TenantConfig     `envPrefix:"TENANT_"`
	Admin      AdminConfig      `envPrefix:"ADMIN_"`
	Invitation InvitationConfig `envPrefix:"INVITATION_"`
	Guard      GuardConfig      `envPrefix:"GUARD_"`
	Jobs       JobsConfig       `envPrefix:"JOBS_"`
	OTel       OTelConfig       `envPrefix:"OTEL_"`
}

// TenantConfig holds defaults applied to new tenants and the setup they receive.
type TenantConfig struct {
	DefaultSubscription string   `env:"DEFAULT_SUBSCRIPTION" envDefault:"trial"`
	DefaultCurrency     string   `env:"DEFAULT_CURRENCY" envDefault:"EUR"`
	DefaultBillingCycle string   `env:"DEFAULT_BILLING_CYCLE" envDefault:"monthly"`
	Modules             []string `env:"MODULES" envSeparator:","`
}

// AdminConfig tunes administrator provisioning.
type AdminConfig struct {
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// InvitationConfig selects how invitation emails are delivered.
type InvitationConfig struct {
	ActivationBaseURL string        `env:"ACTIVATION_BASE_URL" envDefault:"http://localhost:3000/activate"`
	Driver            string        `env:"DRIVER" envDefault:"log"` // "log" or "http"
	RelayURL          string        `env:"RELAY_URL"`
	RelayToken        string        `env:"RELAY_TOKEN"`
	RelayTimeout      time.Duration `env:"RELAY_TIMEOUT" envDefault:"10s"`
	RatePerSecond     float64       `env:"RATE_PER_SECOND" envDefault:"5"`
	Burst             int           `env:"BURST" envDefault:"10"`
	Sender            string        `env:"SENDER" envDefault:"no-reply@tenantdesk.local"`
}

// GuardConfig selects the deletion guard backend.
type GuardConfig struct {
	Driver    string        `env:"DRIVER" envDefault:"memory"` // "memory" or "redis"
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	TTL       time.Duration `env:"TTL" envDefault:"5m"`
}

// JobsConfig controls the background job queue.
type JobsConfig struct {
	Enabled           bool          `env:"ENABLED" envDefault:"true"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"15m"`
	ReconcileGrace    time.Duration `env:"RECONCILE_GRACE" envDefault:"10m"`
}

// OTelConfig holds OpenTelemetry provider settings.
type OTelConfig struct {
	ServiceName    string  `env:"SERVICE_NAME" envDefault:"tenantdesk"`
	ServiceVersion string  `env:"SERVICE_VERSION" envDefault:"0.1.0"`
	Environment    string  `env:"ENVIRONMENT" envDefault:"development"`
	Exporter       string  `env:"EXPORTER" envDefault:"stdout"` // "stdout", "otlp" or "none"
	Insecure       bool    `env:"INSECURE"`
	SampleRatio    float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Invitation.Driver {
	case "log":
	case "http":
		if c.Invitation.RelayURL == "" {
			return fmt.Errorf("INVITATION_RELAY_URL is required when INVITATION_DRIVER=http")
		}
	default:
		return fmt.Errorf("unsupported INVITATION_DRIVER %q (use \"log\" or \"http\")", c.Invitation.Driver)
	}
	switch c.Guard.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported GUARD_DRIVER %q (use \"memory\" or \"redis\")", c.Guard.Driver)
	}
	if c.Invitation.RatePerSecond <= 0 {
		return fmt.Errorf("INVITATION_RATE_PER_SECOND must be positive")
	}
	return nil
}

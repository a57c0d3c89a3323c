// Package config defines the global configuration for the recipeclub
// integration service. Configuration is loaded once at process start and is
// immutable thereafter, following 12-Factor principles: values come from the
// OS environment, optionally seeded by a .env file for local development.
//
// Any missing required value or invalid format fails the process immediately
// on startup (fail fast).
package config

import (
	"time"

	"recipeclub/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// process initialization and never modified. Sub-components receive only the
// specific subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"recipeclub-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	Payment  PaymentConfig
	Identity IdentityConfig
	Email    EmailConfig
	Security SecurityConfig
	Feature  FeatureConfig
}

// ServerConfig holds HTTP listener configuration.
type ServerConfig struct {
	Port        string `envconfig:"PORT" default:"8080"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// PaymentConfig holds the inbound payment-provider webhook settings.
//
// WebhookSecret is OPTIONAL outside production: when empty, signature
// verification is skipped and every delivery is trusted. This fail-open
// policy is a development convenience; production startup rejects an empty
// secret (see Validate).
type PaymentConfig struct {
	WebhookSecret SecretString `envconfig:"PAYMENT_WEBHOOK_SECRET"`
}

// IdentityConfig holds the external identity-provider admin API settings.
// The service key grants privileged user administration (lookup, provision,
// password update) and must never appear in logs.
type IdentityConfig struct {
	BaseURL    string        `envconfig:"IDENTITY_BASE_URL" validate:"required,url"`
	ServiceKey SecretString  `envconfig:"IDENTITY_SERVICE_KEY" validate:"required"`
	Timeout    time.Duration `envconfig:"IDENTITY_TIMEOUT" default:"10s"`
}

// EmailConfig holds email delivery provider credentials. The provider sends
// the recovery code to the user; delivery can be disabled entirely via
// Feature.EnableEmail for local development.
type EmailConfig struct {
	APIKey      SecretString `envconfig:"EMAIL_API_KEY"`
	BaseURL     string       `envconfig:"EMAIL_BASE_URL" default:"https://api.resend.com"`
	FromAddress string       `envconfig:"EMAIL_FROM_ADDRESS" default:"no-reply@recipeclub.app"`
	FromName    string       `envconfig:"EMAIL_FROM_NAME" default:"Recipe Club"`
}

// SecurityConfig holds cross-origin settings for the browser clients.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// FeatureConfig holds emergency kill switches.
type FeatureConfig struct {
	EnableEmail bool `envconfig:"FEATURE_ENABLE_EMAIL" default:"true"`
}

// IsProduction reports whether the service runs with production policies
// (mandatory webhook secret, no recovery-code echo).
func (c *Config) IsProduction() bool {
	return c.Environment == types.EnvProd
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure parsing environment values into their
	// target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)

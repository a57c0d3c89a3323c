// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs in expiry comparisons.
//  2. Load a .env file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Validate the struct using go-playground/validator.
//  5. Apply environment-dependent policy checks (production fail-closed).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by Load to aid debugging.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads, parses, and validates the process configuration.
// It is intended to be called exactly once from main.
func Load() (*Config, error) {
	// All timestamp arithmetic in this service (code expiry, start dates)
	// assumes UTC.
	time.Local = time.UTC

	// A .env file is a local development convenience only; absence is not
	// an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateConfig runs struct validation rules and environment-dependent
// policy checks.
func validateConfig(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return &ConfigError{
			Type:    ErrValidation,
			Message: "configuration failed validation",
			Err:     err,
		}
	}

	// Fail closed in production: an empty webhook secret would cause every
	// payment delivery to be trusted unconditionally. That is acceptable in
	// local/dev/staging (and loudly logged by the verifier) but never in prod.
	if cfg.IsProduction() && cfg.Payment.WebhookSecret.Unmask() == "" {
		return &ConfigError{
			Type:    ErrMissingEnv,
			Message: "PAYMENT_WEBHOOK_SECRET is required when APP_ENV=prod",
		}
	}

	// Email delivery in production requires provider credentials.
	if cfg.IsProduction() && cfg.Feature.EnableEmail && cfg.Email.APIKey.Unmask() == "" {
		return &ConfigError{
			Type:    ErrMissingEnv,
			Message: "EMAIL_API_KEY is required when APP_ENV=prod and email is enabled",
		}
	}

	return nil
}

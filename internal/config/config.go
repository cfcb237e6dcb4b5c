// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types, applies defaults
// and validates the result so it can be reused across the application
// runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad config.
//   - Provide defaults for the Airtable identifiers and the server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Two env sources are read:

	- TATRELAY_* for the service itself. A double underscore marks nesting:
	  TATRELAY_SERVER__READ_TIMEOUT -> server.read_timeout
	  TATRELAY_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level

	- AIRTABLE_* for the record store, kept unprefixed because that is how
	  deployments provision the credential:
	  AIRTABLE_API_KEY -> airtable.api_key
*/

const (
	envPrefix         = "TATRELAY_"
	airtableEnvPrefix = "AIRTABLE_"

	// ServiceName tags logs and traces.
	ServiceName = "tat-relay"

	DefaultAirtableBaseURL = "https://api.airtable.com/v0"
	DefaultAirtableBaseID  = "appvUbV8IeGhxmcPn"
	DefaultAirtableTableID = "tblkbuvkZUSpm1IgJ"

	DefaultEnv          = "development"
	DefaultPort         = "8080"
	DefaultReadTimeout  = 30
	DefaultWriteTimeout = 30
	DefaultIdleTimeout  = 60
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Airtable      AirtableConfig       `koanf:"airtable" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port         string `koanf:"port" validate:"required"`
	ReadTimeout  int    `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout int    `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout  int    `koanf:"idle_timeout" validate:"min=1"`
}

// AirtableConfig locates the table holding the tasks.
//
// APIKey is deliberately not required here: a missing key is reported
// per request as a config error, not at startup.
type AirtableConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url" validate:"required,url"`
	BaseID  string `koanf:"base_id" validate:"required"`
	TableID string `koanf:"table_id" validate:"required"`
}

// HasAPIKey reports whether a bearer credential is configured.
func (a AirtableConfig) HasAPIKey() bool {
	return a.APIKey != ""
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, applies defaults, validates it and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load %s env variables: %w", envPrefix, err)
	}

	err = k.Load(env.Provider(airtableEnvPrefix, ".", func(s string) string {
		return "airtable." + strings.ToLower(strings.TrimPrefix(s, airtableEnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load %s env variables: %w", airtableEnvPrefix, err)
	}

	// Observability starts from its defaults so a partial override
	// (e.g. only the log level) keeps the rest.
	mainConfig := &Config{Observability: DefaultObservabilityConfig()}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// applyDefaults fills every empty value that has a built-in default.
//
// An empty AIRTABLE_BASE_ID or AIRTABLE_TABLE_ID counts as not supplied.
func (c *Config) applyDefaults() {
	if c.Primary.Env == "" {
		c.Primary.Env = DefaultEnv
	}

	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}

	if c.Airtable.BaseURL == "" {
		c.Airtable.BaseURL = DefaultAirtableBaseURL
	}
	if c.Airtable.BaseID == "" {
		c.Airtable.BaseID = DefaultAirtableBaseID
	}
	if c.Airtable.TableID == "" {
		c.Airtable.TableID = DefaultAirtableTableID
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	if c.Observability.HealthChecks.Timeout == 0 {
		c.Observability.HealthChecks.Timeout = 5 * time.Second
	}

	// Service name and environment always follow the primary config so
	// logs and traces are tagged consistently.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env
}

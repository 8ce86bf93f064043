// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables; command-line
// flags override them.
type Config struct {
	Explode ExplodeConfig
	Value   ValueConfig
	Input   InputConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// ExplodeConfig holds the default explode request.
type ExplodeConfig struct {
	// Column is the name of the column to explode (default: node2)
	Column string `env:"EXPLODE_COLUMN" default:"node2"`

	// Fields are the sub-fields to project (default: every field name)
	Fields []string `env:"EXPLODE_FIELDS"`

	// Prefix names the exploded columns (default: "node2;")
	Prefix string `env:"EXPLODE_PREFIX" default:"node2;"`

	// Overwrite lets an exploded field reuse an existing column (default: false)
	Overwrite bool `env:"EXPLODE_OVERWRITE" default:"false"`

	// ExpandList requires every non-empty value to be a list (default: false)
	ExpandList bool `env:"EXPLODE_EXPAND" default:"false"`
}

// ValueConfig holds the value validation policy.
type ValueConfig struct {
	MinimumValidYear int     `env:"VALUE_MINIMUM_VALID_YEAR" default:"1583"`
	MaximumValidYear int     `env:"VALUE_MAXIMUM_VALID_YEAR" default:"2100"`
	MinimumValidLat  float64 `env:"VALUE_MINIMUM_VALID_LAT" default:"-90"`
	MaximumValidLat  float64 `env:"VALUE_MAXIMUM_VALID_LAT" default:"90"`
	MinimumValidLon  float64 `env:"VALUE_MINIMUM_VALID_LON" default:"-180"`
	MaximumValidLon  float64 `env:"VALUE_MAXIMUM_VALID_LON" default:"180"`

	AllowMonthOrDayZero   bool `env:"VALUE_ALLOW_MONTH_OR_DAY_ZERO" default:"false"`
	RepairMonthOrDayZero  bool `env:"VALUE_REPAIR_MONTH_OR_DAY_ZERO" default:"false"`
	AllowLaxStrings       bool `env:"VALUE_ALLOW_LAX_STRINGS" default:"false"`
	AllowLaxLQStrings     bool `env:"VALUE_ALLOW_LAX_LQ_STRINGS" default:"false"`
	AllowLanguageSuffixes bool `env:"VALUE_ALLOW_LANGUAGE_SUFFIXES" default:"true"`
	EscapeListSeparators  bool `env:"VALUE_ESCAPE_LIST_SEPARATORS" default:"false"`

	// AdditionalLanguageCodes are accepted on top of ISO 639
	AdditionalLanguageCodes []string `env:"VALUE_ADDITIONAL_LANGUAGE_CODES"`
}

// InputConfig holds TSV reader settings.
type InputConfig struct {
	// SkipComments drops lines starting with '#' (default: true)
	SkipComments bool `env:"INPUT_SKIP_COMMENTS" default:"true"`

	// FillShortRows pads short rows instead of failing (default: true)
	FillShortRows bool `env:"INPUT_FILL_SHORT_ROWS" default:"true"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout is the maximum duration for writing response (default: 0, streamed)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`

	// MaxBodySize is the maximum request body in bytes (default: 100MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"104857600"`

	// MaxConcurrent is the number of explode runs served at once (default: 4)
	MaxConcurrent int `env:"SERVER_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long a request waits for a free run slot (default: 30s)
	MaxWait time.Duration `env:"SERVER_MAX_WAIT" default:"30s"`

	// RequestsPerMinute is the rate limit per client IP, 0 disables it (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// TrustedProxies lists proxy CIDRs whose X-Real-IP and X-Forwarded-For
	// headers name the client. Empty trusts no forwarding headers.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/explode/internal/tsv"
	"github.com/JonMunkholm/explode/internal/value"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		raw := os.Getenv(envName)
		if raw == "" && envAlt != "" {
			raw = os.Getenv(envAlt)
		}

		// Apply default if not set
		if raw == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			raw = defaultVal
		}

		if raw == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, raw, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(raw, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Explode validation
	if c.Explode.Column == "" {
		errs = append(errs, "EXPLODE_COLUMN must not be empty")
	}
	for _, f := range c.Explode.Fields {
		if !value.IsFieldName(f) {
			errs = append(errs, fmt.Sprintf("EXPLODE_FIELDS: unknown field %q", f))
		}
	}

	// Value validation
	if _, err := c.Value.Options(); err != nil {
		errs = append(errs, err.Error())
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, "SERVER_MAX_BODY_SIZE must be positive")
	}
	if c.Server.MaxConcurrent <= 0 {
		errs = append(errs, "SERVER_MAX_CONCURRENT must be positive")
	}
	if c.Server.MaxWait <= 0 {
		errs = append(errs, "SERVER_MAX_WAIT must be positive")
	}
	if c.Server.RequestsPerMinute < 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be non-negative")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Options converts the value policy to validated parser options.
func (c *ValueConfig) Options() (*value.Options, error) {
	return value.NewOptions(value.Options{
		MinimumValidYear:        c.MinimumValidYear,
		MaximumValidYear:        c.MaximumValidYear,
		MinimumValidLat:         c.MinimumValidLat,
		MaximumValidLat:         c.MaximumValidLat,
		MinimumValidLon:         c.MinimumValidLon,
		MaximumValidLon:         c.MaximumValidLon,
		AllowMonthOrDayZero:     c.AllowMonthOrDayZero,
		RepairMonthOrDayZero:    c.RepairMonthOrDayZero,
		AllowLaxStrings:         c.AllowLaxStrings,
		AllowLaxLQStrings:       c.AllowLaxLQStrings,
		AllowLanguageSuffixes:   c.AllowLanguageSuffixes,
		EscapeListSeparators:    c.EscapeListSeparators,
		AdditionalLanguageCodes: c.AdditionalLanguageCodes,
	})
}

// ReaderOptions converts the input settings for the TSV reader.
func (c *InputConfig) ReaderOptions() tsv.ReaderOptions {
	return tsv.ReaderOptions{
		SkipComments:  c.SkipComments,
		FillShortRows: c.FillShortRows,
	}
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Explode: {Column: %q, Prefix: %q, Fields: %d, Overwrite: %v, ExpandList: %v}, ",
		c.Explode.Column, c.Explode.Prefix, len(c.Explode.Fields), c.Explode.Overwrite, c.Explode.ExpandList))
	b.WriteString(fmt.Sprintf("Value: {Years: [%d,%d], Lat: [%g,%g], Lon: [%g,%g]}, ",
		c.Value.MinimumValidYear, c.Value.MaximumValidYear,
		c.Value.MinimumValidLat, c.Value.MaximumValidLat,
		c.Value.MinimumValidLon, c.Value.MaximumValidLon))
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d, MaxConcurrent: %d}, ",
		c.Server.Host, c.Server.Port, c.Server.MaxConcurrent))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Explode.Column != "node2" {
		t.Errorf("Explode.Column = %q, want %q", cfg.Explode.Column, "node2")
	}
	if cfg.Explode.Prefix != "node2;" {
		t.Errorf("Explode.Prefix = %q, want %q", cfg.Explode.Prefix, "node2;")
	}
	if len(cfg.Explode.Fields) != 0 {
		t.Errorf("Explode.Fields = %v, want empty", cfg.Explode.Fields)
	}
	if cfg.Value.MinimumValidYear != 1583 || cfg.Value.MaximumValidYear != 2100 {
		t.Errorf("Value years = [%d,%d], want [1583,2100]", cfg.Value.MinimumValidYear, cfg.Value.MaximumValidYear)
	}
	if cfg.Value.MinimumValidLon != -180 {
		t.Errorf("Value.MinimumValidLon = %g, want -180", cfg.Value.MinimumValidLon)
	}
	if !cfg.Value.AllowLanguageSuffixes {
		t.Error("Value.AllowLanguageSuffixes should default to true")
	}
	if !cfg.Input.SkipComments || !cfg.Input.FillShortRows {
		t.Errorf("Input = %+v, want both true", cfg.Input)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Server.RequestTimeout != 5*time.Minute {
		t.Errorf("Server.RequestTimeout = %v, want 5m", cfg.Server.RequestTimeout)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("EXPLODE_COLUMN", "node1")
	t.Setenv("EXPLODE_FIELDS", "data_type, symbol,,")
	t.Setenv("EXPLODE_OVERWRITE", "true")
	t.Setenv("VALUE_MAXIMUM_VALID_LAT", "45.5")
	t.Setenv("VALUE_ADDITIONAL_LANGUAGE_CODES", "zz,en-simple")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Explode.Column != "node1" {
		t.Errorf("Explode.Column = %q, want %q", cfg.Explode.Column, "node1")
	}
	if strings.Join(cfg.Explode.Fields, ",") != "data_type,symbol" {
		t.Errorf("Explode.Fields = %v, want [data_type symbol]", cfg.Explode.Fields)
	}
	if !cfg.Explode.Overwrite {
		t.Error("Explode.Overwrite = false, want true")
	}
	if cfg.Value.MaximumValidLat != 45.5 {
		t.Errorf("Value.MaximumValidLat = %g, want 45.5", cfg.Value.MaximumValidLat)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if strings.Join(cfg.Server.TrustedProxies, ",") != "10.0.0.0/8,192.168.1.1" {
		t.Errorf("Server.TrustedProxies = %v", cfg.Server.TrustedProxies)
	}

	opts, err := cfg.Value.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if len(opts.AdditionalLanguageCodes) != 2 {
		t.Errorf("AdditionalLanguageCodes = %v, want 2 codes", opts.AdditionalLanguageCodes)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		wantErr string
	}{
		{"bad integer", "SERVER_PORT", "eighty", "invalid integer"},
		{"bad float", "VALUE_MINIMUM_VALID_LAT", "south", "invalid number"},
		{"bad bool", "EXPLODE_OVERWRITE", "maybe", "invalid boolean"},
		{"bad duration", "SERVER_IDLE_TIMEOUT", "forever", "invalid duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) || !strings.Contains(err.Error(), tt.env) {
				t.Errorf("Load() error = %q, want %q naming %s", err, tt.wantErr, tt.env)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Explode: ExplodeConfig{Column: "node2", Prefix: "node2;"},
			Value: ValueConfig{
				MinimumValidYear: 1583, MaximumValidYear: 2100,
				MinimumValidLat: -90, MaximumValidLat: 90,
				MinimumValidLon: -180, MaximumValidLon: 180,
			},
			Server: ServerConfig{
				Port:            8080,
				ShutdownTimeout: time.Second,
				RequestTimeout:  time.Second,
				MaxBodySize:     1,
				MaxConcurrent:   1,
				MaxWait:         time.Second,
			},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "empty column",
			modify:  func(c *Config) { c.Explode.Column = "" },
			wantErr: "EXPLODE_COLUMN must not be empty",
		},
		{
			name:    "unknown field",
			modify:  func(c *Config) { c.Explode.Fields = []string{"colour"} },
			wantErr: `unknown field "colour"`,
		},
		{
			name:    "inverted years",
			modify:  func(c *Config) { c.Value.MinimumValidYear = 2200 },
			wantErr: "minimum valid year",
		},
		{
			name:    "invalid port",
			modify:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "SERVER_PORT",
		},
		{
			name:    "no run slots",
			modify:  func(c *Config) { c.Server.MaxConcurrent = 0 },
			wantErr: "SERVER_MAX_CONCURRENT",
		},
		{
			name:    "negative rate limit",
			modify:  func(c *Config) { c.Server.RequestsPerMinute = -1 },
			wantErr: "RATE_LIMIT_REQUESTS_PER_MINUTE",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}

			if err == nil {
				t.Errorf("Validate() expected error containing %q", tt.wantErr)
				return
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"localhost", 3000, "localhost:3000"},
		{"", 8080, ":8080"},
	}

	for _, tt := range tests {
		cfg := ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{
		Explode: ExplodeConfig{Column: "node2", Prefix: "p;"},
		Server:  ServerConfig{Host: "localhost", Port: 8080},
	}
	s := cfg.String()
	if !strings.Contains(s, `Column: "node2"`) || !strings.Contains(s, "Port: 8080") {
		t.Errorf("String() = %q", s)
	}
}

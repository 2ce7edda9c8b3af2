// Package config loads parkmock configuration from YAML files, with
// environment-variable overrides under the PARKMOCK_ prefix.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// ListenAddr is the HTTP listen address for standalone mode.
	ListenAddr string `yaml:"listen_addr"`

	// SpecFile points at the OpenAPI contract the mock answers for. The
	// contract is an external, read-only input.
	SpecFile string `yaml:"spec_file"`

	// PathPrefix is stripped from request paths before contract routing,
	// e.g. "/api" when the application calls /api/reservations.
	PathPrefix string `yaml:"path_prefix"`

	// SeedFile optionally points at a YAML seed document. Empty means the
	// built-in default seed.
	SeedFile string `yaml:"seed_file"`

	Auth AuthConfig `yaml:"auth"`
	Log  LogConfig  `yaml:"log"`

	// AllowedOrigins configures CORS for the browser-hosted application.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AccessLog enables Apache-style access logging.
	AccessLog bool `yaml:"access_log"`
}

// AuthConfig is the single fixed credential pair accepted by guarded
// operations.
type AuthConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// LogConfig configures operational logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ListenAddr: ":4280",
		PathPrefix: "/api",
		Auth: AuthConfig{
			Email:    "test@adobe.com",
			Password: "testPassword",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		AllowedOrigins: []string{"*"},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides config fields from PARKMOCK_* environment variables.
func (c *Config) ApplyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("PARKMOCK_LISTEN_ADDR", &c.ListenAddr)
	setString("PARKMOCK_SPEC_FILE", &c.SpecFile)
	setString("PARKMOCK_PATH_PREFIX", &c.PathPrefix)
	setString("PARKMOCK_SEED_FILE", &c.SeedFile)
	setString("PARKMOCK_AUTH_EMAIL", &c.Auth.Email)
	setString("PARKMOCK_AUTH_PASSWORD", &c.Auth.Password)
	setString("PARKMOCK_LOG_LEVEL", &c.Log.Level)
	setString("PARKMOCK_LOG_FORMAT", &c.Log.Format)

	if v := os.Getenv("PARKMOCK_ACCESS_LOG"); v == "true" {
		c.AccessLog = true
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.SpecFile == "" {
		return fmt.Errorf("spec_file is required (the mock cannot route without a contract)")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr cannot be empty")
	}
	return nil
}

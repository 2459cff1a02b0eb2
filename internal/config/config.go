// Package config loads and validates the daemon configuration.
//
// DESIGN: A single YAML file with one section per subsystem. Values of the
// form ${VAR} are expanded from the environment before parsing so secret
// references never live in the file itself. Missing fields fall back to the
// constants in defaults.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds the full daemon configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Billing    BillingConfig    `yaml:"billing"`
	Credential CredentialConfig `yaml:"credential"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds command-server listener settings.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	ReadWindowSec      int    `yaml:"read_window_sec"`
	WriteTimeoutSec    int    `yaml:"write_timeout_sec"`
	ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec"`
}

// BillingConfig holds billing-source settings.
type BillingConfig struct {
	Endpoint        string `yaml:"endpoint"`
	FetchTimeoutSec int    `yaml:"fetch_timeout_sec"`
}

// CredentialConfig selects how the billing API key is retrieved.
// Exactly one provider is active; see the secrets package for semantics.
type CredentialConfig struct {
	Provider string   `yaml:"provider"`  // env, file, exec, awssm (default: env)
	EnvVar   string   `yaml:"env_var"`   // env provider
	Path     string   `yaml:"path"`      // file provider
	Command  []string `yaml:"command"`   // exec provider, argv form
	SecretID string   `yaml:"secret_id"` // awssm provider
	Region   string   `yaml:"region"`    // awssm provider, optional
}

// MonitoringConfig holds the optional observability surfaces.
// Both are off by default and never change the wire protocol.
type MonitoringConfig struct {
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	MetricsAddr    string `yaml:"metrics_addr"`
	TelemetryPath  string `yaml:"telemetry_path"` // JSONL evaluation log, empty = disabled
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML.
func LoadFromBytes(data []byte) (*Config, error) {
	data = expandEnvVars(data)

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns a configuration with every field at its default value.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port <= 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadWindowSec <= 0 {
		c.Server.ReadWindowSec = DefaultReadWindowSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = DefaultWriteTimeoutSec
	}
	if c.Server.ShutdownTimeoutSec <= 0 {
		c.Server.ShutdownTimeoutSec = DefaultShutdownTimeoutSec
	}
	if c.Billing.Endpoint == "" {
		c.Billing.Endpoint = DefaultBillingEndpoint
	}
	if c.Billing.FetchTimeoutSec <= 0 {
		c.Billing.FetchTimeoutSec = DefaultFetchTimeoutSec
	}
	if c.Credential.Provider == "" {
		c.Credential.Provider = "env"
	}
	if c.Credential.EnvVar == "" {
		c.Credential.EnvVar = DefaultCredentialEnv
	}
	if c.Monitoring.MetricsAddr == "" {
		c.Monitoring.MetricsAddr = DefaultMetricsAddr
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Billing.Endpoint == "" {
		return fmt.Errorf("billing.endpoint is required")
	}
	switch c.Credential.Provider {
	case "env":
		if c.Credential.EnvVar == "" {
			return fmt.Errorf("credential.env_var is required for the env provider")
		}
	case "file":
		if c.Credential.Path == "" {
			return fmt.Errorf("credential.path is required for the file provider")
		}
	case "exec":
		if len(c.Credential.Command) == 0 {
			return fmt.Errorf("credential.command is required for the exec provider")
		}
	case "awssm":
		if c.Credential.SecretID == "" {
			return fmt.Errorf("credential.secret_id is required for the awssm provider")
		}
	default:
		return fmt.Errorf("credential.provider must be one of env, file, exec, awssm, got %q", c.Credential.Provider)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars substitutes ${VAR} references from the environment.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envVarPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultBillingEndpoint, cfg.Billing.Endpoint)
	assert.Equal(t, "env", cfg.Credential.Provider)
	assert.Equal(t, DefaultCredentialEnv, cfg.Credential.EnvVar)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Monitoring.MetricsEnabled)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromBytes(t *testing.T) {
	yaml := `
server:
  port: 6001
  read_window_sec: 5
billing:
  endpoint: http://localhost:9999/usage
  fetch_timeout_sec: 3
credential:
  provider: file
  path: /run/secrets/billing_key
logging:
  level: debug
`
	cfg, err := LoadFromBytes([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, 6001, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.ReadWindowSec)
	assert.Equal(t, "http://localhost:9999/usage", cfg.Billing.Endpoint)
	assert.Equal(t, 3, cfg.Billing.FetchTimeoutSec)
	assert.Equal(t, "file", cfg.Credential.Provider)
	assert.Equal(t, "/run/secrets/billing_key", cfg.Credential.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset fields still get defaults.
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultWriteTimeoutSec, cfg.Server.WriteTimeoutSec)
}

func TestLoadFromBytes_EnvExpansion(t *testing.T) {
	t.Setenv("BILLING_URL", "http://127.0.0.1:8123/usage")

	cfg, err := LoadFromBytes([]byte("billing:\n  endpoint: ${BILLING_URL}\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8123/usage", cfg.Billing.Endpoint)
}

func TestLoadFromBytes_UnsetEnvExpandsEmpty(t *testing.T) {
	// An unset ${VAR} collapses to "" and the default takes over.
	cfg, err := LoadFromBytes([]byte("billing:\n  endpoint: \"${DEFINITELY_NOT_SET_ANYWHERE}\"\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBillingEndpoint, cfg.Billing.Endpoint)
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			"port out of range",
			func(c *Config) { c.Server.Port = 70000 },
			"server.port",
		},
		{
			"unknown credential provider",
			func(c *Config) { c.Credential.Provider = "vault" },
			"credential.provider",
		},
		{
			"file provider without path",
			func(c *Config) { c.Credential.Provider = "file"; c.Credential.Path = "" },
			"credential.path",
		},
		{
			"exec provider without command",
			func(c *Config) { c.Credential.Provider = "exec" },
			"credential.command",
		},
		{
			"awssm provider without secret id",
			func(c *Config) { c.Credential.Provider = "awssm" },
			"credential.secret_id",
		},
		{
			"bad log level",
			func(c *Config) { c.Logging.Level = "verbose" },
			"logging.level",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestLoadFromBytes_BadYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("server: [not a map"))
	require.Error(t, err)
}

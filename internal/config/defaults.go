// Package config - defaults.go centralizes magic numbers and default values.
//
// DESIGN: All default values that appear in multiple places should be defined here.
// This makes configuration more maintainable and auditable.
package config

import "time"

// =============================================================================
// COMMAND SERVER
// =============================================================================

// DefaultHost binds all interfaces. The daemon is meant for trusted networks
// only; there is no auth, TLS, or rate limiting on the command port.
const DefaultHost = "0.0.0.0"

// DefaultPort is the well-known command port.
const DefaultPort = 5555

// DefaultReadWindowSec bounds how long a client may take to send its command
// line. Idle or half-open connections are closed when it elapses.
const DefaultReadWindowSec = 30

// DefaultWriteTimeoutSec bounds the response write.
const DefaultWriteTimeoutSec = 10

// DefaultShutdownTimeoutSec is the drain window for in-flight connections
// during graceful shutdown.
const DefaultShutdownTimeoutSec = 15

// =============================================================================
// BILLING SOURCE
// =============================================================================

// DefaultBillingEndpoint is the usage endpoint queried per UTC day.
// start_date and end_date query parameters are appended per fetch.
const DefaultBillingEndpoint = "https://api.openai.com/v1/dashboard/billing/usage"

// DefaultFetchTimeoutSec bounds each outbound usage fetch. A timed-out fetch
// surfaces as a transport-class failure, never as a hung evaluation.
const DefaultFetchTimeoutSec = 10

// =============================================================================
// CREDENTIAL SOURCE
// =============================================================================

// DefaultCredentialEnv is the environment variable holding the billing API
// key when the env provider is used.
const DefaultCredentialEnv = "OPENAI_API_KEY"

// =============================================================================
// OBSERVABILITY
// =============================================================================

// DefaultMetricsAddr is where the optional metrics/health HTTP listener
// binds. Loopback only; the sidecar is an operator surface, not a client one.
const DefaultMetricsAddr = "127.0.0.1:9464"

// FetchTimeout returns the billing fetch bound as a duration.
func (b *BillingConfig) FetchTimeout() time.Duration {
	return time.Duration(b.FetchTimeoutSec) * time.Second
}

// ReadWindow returns the inbound read deadline as a duration.
func (s *ServerConfig) ReadWindow() time.Duration {
	return time.Duration(s.ReadWindowSec) * time.Second
}

// WriteTimeout returns the response write deadline as a duration.
func (s *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}

// ShutdownTimeout returns the graceful-shutdown drain window as a duration.
func (s *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSec) * time.Second
}

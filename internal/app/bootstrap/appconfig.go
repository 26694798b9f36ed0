// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level, request limits); AppConfig
// is everything specific to the About Us admin.
type AppConfig struct {
	// About Us REST backend
	APIBaseURL string        // Base URL of the backend (e.g., http://localhost:3006)
	APITimeout time.Duration // Per-request HTTP client timeout

	// MongoDB connection configuration (only used when diagnostics are persisted)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Diagnostics
	DiagnosticsMode string // "all" (db+log), "db", "log", or "off"
	ShowDiagnostics bool   // Surface the latest load/submit outcome on the edit page

	// DiagnosticsRetention is how long persisted diagnostics are kept
	// (TTL index); zero keeps them forever.
	DiagnosticsRetention time.Duration

	// SubmitRateLimit caps saves per client IP per minute; zero disables it.
	SubmitRateLimit int

	// UI
	SiteName string
	CSRFKey  string // Secret for CSRF tokens (must be strong in production)

	// Timeouts applied around backend and database calls
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like ports, TLS,
// logging and request limits. AppConfig covers the enrollment backend the
// console talks to, the console's own session cookie, the approval
// workflow and the optional stores behind it.
type AppConfig struct {
	// Enrollment backend
	BackendURL     string        // Base URL of the enrollment REST API (e.g., http://localhost:5000)
	BackendTimeout time.Duration // Per-request timeout for backend calls

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: enrolldesk-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // How long a sign-in lasts
	CSRFKey       string        // Secret for gorilla/csrf tokens

	// Payment approval
	ApproveStatus string // Status written on approve: "completed" or "approved"
	NotifyMessage string // Message sent to the user after approval

	// Background payment feed (disabled when PollToken is empty)
	PollInterval time.Duration
	PollToken    string

	// View-state snapshots. Redis is used when RedisAddr is set, otherwise
	// snapshots live in process memory.
	ViewStateTTL  time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MongoDB audit trail (optional; blank URI disables it)
	MongoURI      string
	MongoDatabase string

	// Audit logging
	AuditLogAuth  string // "all", "db", "log", or "off"
	AuditLogAdmin string // "all", "db", "log", or "off"
}

// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/store/backend"
	"github.com/dalemusser/enrolldesk/internal/app/system/poll"
	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for EnrollDesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_url, session_name, etc.
//   - Environment variables: ENROLLDESK_BACKEND_URL, ENROLLDESK_SESSION_NAME, etc.
//   - Command-line flags: --backend_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "backend_url", Default: "http://localhost:5000", Desc: "Base URL of the enrollment backend API"},
	{Name: "backend_timeout", Default: "15s", Desc: "Timeout for a single backend request"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "enrolldesk-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "8h", Desc: "How long a sign-in lasts"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123456789", Desc: "CSRF token secret (must be strong in production)"},

	// Payment approval
	{Name: "approve_status", Default: models.PaymentCompleted, Desc: "Status written on approval: 'completed' or 'approved'"},
	{Name: "notify_message", Default: "", Desc: "Message sent to the user after approval (blank uses the built-in text)"},

	// Background payment feed
	{Name: "poll_interval", Default: "20s", Desc: "How often the payment feed polls the backend"},
	{Name: "poll_token", Default: "", Desc: "Service token for the payment feed (blank disables the feed)"},

	// View state
	{Name: "viewstate_ttl", Default: "30m", Desc: "How long a loaded listing is reused before it expires"},
	{Name: "redis_addr", Default: "", Desc: "Redis address for view state (blank keeps it in memory)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Audit trail
	{Name: "mongo_uri", Default: "", Desc: "MongoDB URI for the audit trail (blank disables it)"},
	{Name: "mongo_database", Default: "enrolldesk", Desc: "MongoDB database name"},
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, ENROLLDESK_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ENROLLDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		BackendURL:     strings.TrimSpace(appValues.String("backend_url")),
		BackendTimeout: appValues.Duration("backend_timeout", backend.DefaultTimeout),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 8*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		ApproveStatus: strings.ToLower(strings.TrimSpace(appValues.String("approve_status"))),
		NotifyMessage: appValues.String("notify_message"),

		PollInterval: appValues.Duration("poll_interval", poll.DefaultInterval),
		PollToken:    strings.TrimSpace(appValues.String("poll_token")),

		ViewStateTTL:  appValues.Duration("viewstate_ttl", 30*time.Minute),
		RedisAddr:     strings.TrimSpace(appValues.String("redis_addr")),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		MongoURI:      strings.TrimSpace(appValues.String("mongo_uri")),
		MongoDatabase: appValues.String("mongo_database"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	// Request-scoped timeouts follow the backend timeout; ENROLLDESK_TIMEOUT_*
	// overrides individual values.
	timeouts.Configure(timeouts.Config{
		Medium: appCfg.BackendTimeout,
		Long:   2 * appCfg.BackendTimeout,
	})
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateBackendURL(appCfg.BackendURL); err != nil {
		logger.Error("invalid backend URL", zap.String("backend_url", appCfg.BackendURL), zap.Error(err))
		return err
	}

	if appCfg.ApproveStatus != "" && !models.ValidApprovalStatus(appCfg.ApproveStatus) {
		return fmt.Errorf("approve_status must be %q or %q, got %q",
			models.PaymentCompleted, models.PaymentApproved, appCfg.ApproveStatus)
	}

	if appCfg.MongoURI != "" {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}

	if appCfg.PollToken != "" && appCfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive when poll_token is set")
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if strings.HasPrefix(appCfg.SessionKey, "dev-only") || strings.HasPrefix(appCfg.CSRFKey, "dev-only") {
			return fmt.Errorf("session_key and csrf_key must be set in production")
		}
	}

	return nil
}

func validateBackendURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("backend_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("backend_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend_url must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("backend_url has no host: %q", raw)
	}
	return nil
}

// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	adminfeature "github.com/dalemusser/enrolldesk/internal/app/features/admin"
	errorsfeature "github.com/dalemusser/enrolldesk/internal/app/features/errors"
	healthfeature "github.com/dalemusser/enrolldesk/internal/app/features/health"
	homefeature "github.com/dalemusser/enrolldesk/internal/app/features/home"
	loginfeature "github.com/dalemusser/enrolldesk/internal/app/features/login"
	logoutfeature "github.com/dalemusser/enrolldesk/internal/app/features/logout"
	studentfeature "github.com/dalemusser/enrolldesk/internal/app/features/student"
	"github.com/dalemusser/enrolldesk/internal/app/system/approval"
	"github.com/dalemusser/enrolldesk/internal/app/system/auditlog"
	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/dalemusser/enrolldesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, store connections and the Startup
// hook have completed. It boots the template engine, builds the session
// manager, the audit logger and the approval workflow, applies the session
// and CSRF middleware, and mounts the feature routers: home, login, logout,
// the admin console and the student dashboard.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	viewdata.Init(sessionMgr)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	// A nil audit store keeps the audit trail in the zap log only.
	auditLogger := auditlog.New(deps.Audit, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	workflow, err := approval.New(deps.Backend, appCfg.ApproveStatus, appCfg.NotifyMessage, auditLogger, logger)
	if err != nil {
		logger.Error("approval workflow init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Health, metrics and static assets sit outside the session and CSRF
	// middleware.
	healthHandler := healthfeature.NewHandler(deps.Backend, deps.ViewState, deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(r chi.Router) {
		// Loads SessionUser into context if signed in.
		r.Use(sessionMgr.LoadSessionUser)
		r.Use(csrfMiddleware(appCfg.CSRFKey, secure, errorsHandler.Forbidden))

		homeHandler := homefeature.NewHandler(logger)
		r.Mount("/", homefeature.Routes(homeHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(deps.Backend, sessionMgr, auditLogger, logger)
		loginHandler.Limiter = signInLimiter
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))

		// Error pages
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)

		// Admin console
		adminHandler := adminfeature.NewHandler(deps.Backend, workflow, deps.ViewState, appCfg.ViewStateTTL,
			sessionMgr, auditLogger, paymentFeed, errLog, logger)
		r.Mount("/admin", adminfeature.Routes(adminHandler, sessionMgr))

		// Student dashboard
		studentHandler := studentfeature.NewHandler(studentfeature.DefaultContent(), sessionMgr, logger)
		r.Mount("/student", studentfeature.Routes(studentHandler, sessionMgr))

		r.NotFound(errorsHandler.NotFound)
	})

	return r, nil
}

// csrfMiddleware protects every state-changing request. htmx sends the token
// in the X-CSRF-Token header; plain forms carry it as a hidden field.
func csrfMiddleware(key string, secure bool, failure http.HandlerFunc) func(http.Handler) http.Handler {
	sum := sha256.Sum256([]byte(key))
	protect := csrf.Protect(sum[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.ErrorHandler(failure),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		if secure {
			return protected
		}
		// Without TLS the origin checks must be told the request is plain HTTP.
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

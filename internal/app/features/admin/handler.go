// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/enrolldesk/internal/app/features/errors"
	"github.com/dalemusser/enrolldesk/internal/app/store/backend"
	"github.com/dalemusser/enrolldesk/internal/app/store/viewstate"
	"github.com/dalemusser/enrolldesk/internal/app/system/approval"
	"github.com/dalemusser/enrolldesk/internal/app/system/auditlog"
	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/dalemusser/enrolldesk/internal/app/system/loader"
	"github.com/dalemusser/enrolldesk/internal/app/system/workers"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
	"go.uber.org/zap"
)

// Application status tabs that get their own snapshot.
var applicationVariants = []string{
	models.ApplicationPending,
	models.ApplicationApproved,
	models.ApplicationRejected,
}

// Loaders holds one loader per console listing.
type Loaders struct {
	Summary      *loader.Loader[models.DashboardSummary]
	Users        *loader.Loader[[]models.User]
	Applications *loader.Loader[[]models.Application]
	Payments     *loader.Loader[[]models.Payment]
	Courses      *loader.Loader[[]models.Course]
}

// NewLoaders wires the listings to the backend client. Snapshots are kept in
// store for ttl.
func NewLoaders(c *backend.Client, store viewstate.Store, ttl time.Duration, logger *zap.Logger) Loaders {
	return Loaders{
		Summary: loader.New("dashboard", func(ctx context.Context, token, _ string) (models.DashboardSummary, error) {
			return c.Dashboard(ctx, token)
		}, store, ttl, logger),
		Users: loader.New("users", func(ctx context.Context, token, _ string) ([]models.User, error) {
			return c.ListUsers(ctx, token)
		}, store, ttl, logger),
		Applications: loader.New("applications", func(ctx context.Context, token, status string) ([]models.Application, error) {
			return c.ListApplications(ctx, token, status)
		}, store, ttl, logger).WithVariants(applicationVariants...),
		Payments: loader.New("payments", func(ctx context.Context, token, _ string) ([]models.Payment, error) {
			return c.ListPayments(ctx, token)
		}, store, ttl, logger),
		Courses: loader.New("courses", func(ctx context.Context, token, _ string) ([]models.Course, error) {
			return c.ListCourses(ctx, token)
		}, store, ttl, logger),
	}
}

// Handler serves the admin console.
type Handler struct {
	Backend    *backend.Client
	Approvals  *approval.Workflow
	Loaders    Loaders
	State      viewstate.Store
	TTL        time.Duration
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Feed       *workers.PaymentFeed
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

// NewHandler builds the console handler. feed and audit may be nil.
func NewHandler(
	c *backend.Client,
	wf *approval.Workflow,
	store viewstate.Store,
	ttl time.Duration,
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	feed *workers.PaymentFeed,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Backend:    c,
		Approvals:  wf,
		Loaders:    NewLoaders(c, store, ttl, logger),
		State:      store,
		TTL:        ttl,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Feed:       feed,
		ErrLog:     errLog,
		Log:        logger,
	}
}

// operator returns the signed-in admin. RequireRole guarantees one is
// present; the zero user keeps handlers safe when called directly.
func operator(r *http.Request) *auth.SessionUser {
	if u, ok := auth.CurrentUser(r); ok {
		return u
	}
	return &auth.SessionUser{}
}

// redirect finishes a form post. htmx requests get a client-side redirect so
// the whole page reloads with the flash.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if h.SessionMgr == nil || msg == "" {
		return
	}
	h.SessionMgr.AddFlash(w, r, kind, msg)
}

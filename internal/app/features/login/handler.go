// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/enrolldesk/internal/app/store/backend"
	"github.com/dalemusser/enrolldesk/internal/app/system/auditlog"
	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/dalemusser/enrolldesk/internal/app/system/limits"
	"github.com/dalemusser/enrolldesk/internal/app/system/ratelimit"
	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"github.com/dalemusser/enrolldesk/internal/app/system/viewdata"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// TokenVerifier confirms an admin token is accepted by the backend.
// The dashboard summary is the cheapest admin-only call.
type TokenVerifier interface {
	Dashboard(ctx context.Context, token string) (models.DashboardSummary, error)
}

type Handler struct {
	Backend    TokenVerifier
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	// Limiter throttles sign-in attempts; nil disables throttling.
	Limiter *ratelimit.SignInLimiter
	Log     *zap.Logger
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	As        string // admin or student
	Name      string // what the user typed
	ReturnURL string
}

func NewHandler(verifier TokenVerifier, sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Backend:    verifier,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Log:        logger,
	}
}

// roleFrom maps the ?as= / role form value to a role; anything but admin is
// the student sign-in.
func roleFrom(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), auth.RoleAdmin) {
		return auth.RoleAdmin
	}
	return auth.RoleStudent
}

// homeFor is where each role lands after sign-in.
func homeFor(role string) string {
	if role == auth.RoleAdmin {
		return "/admin"
	}
	return "/student"
}

// destination keeps the return URL only when it belongs to the role's area.
func destination(role, ret string) string {
	home := homeFor(role)
	dest := urlutil.SafeReturn(ret, "", home)
	if dest != home && !strings.HasPrefix(dest, home+"/") && !strings.HasPrefix(dest, home+"?") {
		return home
	}
	return dest
}

// ServeLogin renders the sign-in form.
// GET /login[?as=admin][&return=...]
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	role := roleFrom(query.Get(r, "as"))
	title := "Student sign in"
	if role == auth.RoleAdmin {
		title = "Admin sign in"
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(w, r, title, "/"),
		As:        role,
		ReturnURL: query.Get(r, "return"),
	})
}

// HandleLoginPost stores the submitted token in the session.
// POST /login  (role, name, token, return)
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxLoginFormSize)
	if err := r.ParseForm(); err != nil {
		h.renderFormWithError(w, r, auth.RoleStudent, "Invalid form data.", "")
		return
	}

	role := roleFrom(r.FormValue("role"))
	name := strings.TrimSpace(r.FormValue("name"))
	token := strings.TrimSpace(r.FormValue("token"))
	ret := r.FormValue("return")

	if msg := h.Limiter.Check(r, role == auth.RoleAdmin); msg != "" {
		h.AuditLog.LoginFailed(r.Context(), r, role, "rate limited")
		h.renderFormWithError(w, r, role, msg, name)
		return
	}

	if token == "" {
		h.AuditLog.LoginFailed(r.Context(), r, role, "missing token")
		h.renderFormWithError(w, r, role, "Please enter your access token.", name)
		return
	}
	if name == "" {
		if role == auth.RoleStudent {
			h.renderFormWithError(w, r, role, "Please enter your name.", name)
			return
		}
		name = "Admin"
	}

	if role == auth.RoleAdmin {
		if msg := h.verifyAdmin(r, token); msg != "" {
			h.renderFormWithError(w, r, role, msg, name)
			return
		}
	}

	u, err := h.SessionMgr.SignIn(w, r, role, name, token)
	if err != nil {
		h.Log.Error("sign-in failed", zap.Error(err))
		h.renderFormWithError(w, r, role, "Could not start your session. Please try again.", name)
		return
	}

	h.Limiter.Succeeded(r)
	h.AuditLog.LoginSuccess(r.Context(), r, role, name)
	h.Log.Info("signed in",
		zap.String("role", role),
		zap.String("name", name),
		zap.String("visit_id", u.VisitID))

	http.Redirect(w, r, destination(role, ret), http.StatusSeeOther)
}

// verifyAdmin returns an operator-facing message when the token is refused,
// or "" when it is accepted.
func (h *Handler) verifyAdmin(r *http.Request, token string) string {
	if h.Backend == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err := h.Backend.Dashboard(ctx, token)
	switch {
	case err == nil:
		return ""
	case backend.IsStatus(err, http.StatusUnauthorized), backend.IsStatus(err, http.StatusForbidden):
		h.AuditLog.LoginFailed(r.Context(), r, auth.RoleAdmin, "token rejected")
		return "That token was not accepted."
	}

	var be *backend.Error
	if errors.As(err, &be) && be.Kind == backend.KindTransport {
		h.Log.Warn("backend unreachable during sign-in", zap.Error(err))
		return "Could not reach the enrollment service. Please try again."
	}
	// Any other answer means the token got past authentication.
	h.Log.Warn("dashboard check failed during sign-in; accepting token", zap.Error(err))
	return ""
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, role, msg, name string) {
	ret := r.FormValue("return")
	if ret == "" {
		ret = query.Get(r, "return")
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(w, r, "Sign in", "/"),
		Error:     msg,
		As:        role,
		Name:      name,
		ReturnURL: ret,
	})
}

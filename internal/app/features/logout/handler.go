// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/enrolldesk/internal/app/system/auditlog"
	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/dalemusser/enrolldesk/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// target picks where the browser goes after sign-out: admins return to the
// admin sign-in, students to the landing page. ?as= wins over the session
// role so a stale session still lands on the right page.
func target(r *http.Request) string {
	role := query.Get(r, "as")
	if role == "" {
		if u, ok := auth.CurrentUser(r); ok {
			role = u.Role
		}
	}
	if role == auth.RoleAdmin {
		return navigation.AdminSignedOut
	}
	return navigation.StudentSignedOut
}

// ServeLogout handles GET /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	dest := target(r)

	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, u.Role, u.Name)
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, dest, http.StatusSeeOther)
}

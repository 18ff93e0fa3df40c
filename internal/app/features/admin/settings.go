// internal/app/features/admin/settings.go
package admin

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dalemusser/enrolldesk/internal/app/store/viewstate"
	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/dalemusser/enrolldesk/internal/app/system/limits"
	"github.com/dalemusser/enrolldesk/internal/app/system/navigation"
	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"github.com/dalemusser/enrolldesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Settings are the console preferences an operator can edit. They live in
// the view-state store for the visit; the backend has no settings endpoint.
type Settings struct {
	AdminEmail   string `json:"admin_email"`
	CompanyName  string `json:"company_name"`
	SupportEmail string `json:"support_email"`
}

// DefaultSettings is what a new visit starts with.
func DefaultSettings() Settings {
	return Settings{CompanyName: viewdata.DefaultSiteName}
}

type settingsVM struct {
	Settings Settings
	Error    string
}

func settingsKey(visit string) string {
	return viewstate.Key("settings", visit)
}

func (h *Handler) loadSettings(ctx context.Context, visit string) (Settings, error) {
	s := DefaultSettings()
	if h.State == nil || visit == "" {
		return s, nil
	}
	if _, err := h.State.Get(ctx, settingsKey(visit), &s); err != nil {
		return DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}
	return s, nil
}

// validate trims the fields and checks the e-mail addresses. It returns an
// operator message, or "" when the settings are acceptable.
func (s *Settings) validate() string {
	s.AdminEmail = strings.TrimSpace(s.AdminEmail)
	s.CompanyName = strings.TrimSpace(s.CompanyName)
	s.SupportEmail = strings.TrimSpace(s.SupportEmail)

	if s.CompanyName == "" {
		return "Company name is required."
	}
	for label, addr := range map[string]string{"Admin email": s.AdminEmail, "Support email": s.SupportEmail} {
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return label + " is not a valid address."
		}
	}
	return ""
}

// changedFields lists the settings that differ between old and s.
func (s Settings) changedFields(old Settings) string {
	var out []string
	if s.AdminEmail != old.AdminEmail {
		out = append(out, "admin_email")
	}
	if s.CompanyName != old.CompanyName {
		out = append(out, "company_name")
	}
	if s.SupportEmail != old.SupportEmail {
		out = append(out, "support_email")
	}
	return strings.Join(out, ",")
}

// HandleSettings saves the settings form for the visit.
// POST /admin/settings  (admin_email, company_name, support_email)
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	u := operator(r)
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSettingsFormSize)
	if err := r.ParseForm(); err != nil {
		h.flash(w, r, auth.FlashError, "Invalid form data.")
		redirect(w, r, "/admin/settings")
		return
	}

	next := Settings{
		AdminEmail:   r.FormValue("admin_email"),
		CompanyName:  r.FormValue("company_name"),
		SupportEmail: r.FormValue("support_email"),
	}
	if msg := next.validate(); msg != "" {
		h.renderSettingsWithError(w, r, next, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	old, err := h.loadSettings(ctx, u.VisitID)
	if err != nil {
		h.Log.Warn("settings read failed", zap.Error(err))
	}
	if h.State != nil && u.VisitID != "" {
		if err := h.State.Set(ctx, settingsKey(u.VisitID), next, h.TTL); err != nil {
			h.ErrLog.HandlerError(w, r, "Could not save settings.", err)
			return
		}
	}

	if changed := next.changedFields(old); changed != "" {
		h.AuditLog.SettingsUpdated(ctx, r, u.Name, changed)
	}
	h.flash(w, r, auth.FlashSuccess, "Settings saved")
	redirect(w, r, "/admin/settings")
}

func (h *Handler) renderSettingsWithError(w http.ResponseWriter, r *http.Request, s Settings, msg string) {
	st, _ := navigation.Admin.Activate("settings")
	vm := pageVM{
		BaseVM:   viewdata.NewBaseVM(w, r, "Admin", "/admin").WithNav(st),
		Settings: &settingsVM{Settings: s, Error: msg},
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "admin_console", vm)
}

// internal/app/features/admin/sections.go
package admin

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/navigation"
	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"github.com/dalemusser/enrolldesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

// ServeSection renders the console with one active section.
// GET /admin[?section=], GET /admin/{section}[?refresh=1]
//
// The bare path restores the section named by ?section=, which the layout
// fills from the location fragment of a bookmarked /admin#payments.
func (h *Handler) ServeSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "section")
	if id == "" {
		id = navigation.Admin.Restore(query.Get(r, "section")).Active
	}

	st, ok := navigation.Admin.Activate(id)
	if !ok {
		// The logout entry and unknown ids never render as a section.
		target, _ := navigation.Admin.Select(id)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	vm, err := h.buildPage(w, r, st)
	if err != nil {
		h.ErrLog.HandlerError(w, r, "Could not build the console page.", err)
		return
	}
	templates.Render(w, r, "admin_console", vm)
}

// buildPage loads the active section's listing and assembles the page.
// Flashes are popped first so the cookie is rewritten before any output.
func (h *Handler) buildPage(w http.ResponseWriter, r *http.Request, st navigation.State) (pageVM, error) {
	u := operator(r)
	refresh := query.Get(r, "refresh") == "1"

	vm := pageVM{
		BaseVM:     viewdata.NewBaseVM(w, r, "Admin", "/admin").WithNav(st),
		RefreshURL: navigation.Admin.Href(st.Active) + "?refresh=1",
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	switch st.Active {
	case "dashboard":
		res := h.Loaders.Summary.Load(ctx, u.VisitID, u.Token, "", refresh)
		feed, feedOK := h.Feed.Status()
		vm.Dashboard = buildDashboard(res, feed, feedOK)
		vm.setFreshness(res.Err != nil && res.Loaded, res.FetchedAt)
	case "users":
		res := h.Loaders.Users.Load(ctx, u.VisitID, u.Token, "", refresh)
		vm.Users = buildUsers(res)
		vm.setFreshness(res.Err != nil && res.Loaded, res.FetchedAt)
	case "applications":
		filter := applicationFilter(query.Get(r, "status"))
		res := h.Loaders.Applications.Load(ctx, u.VisitID, u.Token, variant(filter), refresh)
		vm.Applications = buildApplications(res, filter)
		if filter != "all" {
			vm.RefreshURL = "/admin/applications?" + url.Values{"status": {filter}, "refresh": {"1"}}.Encode()
		}
		vm.setFreshness(res.Err != nil && res.Loaded, res.FetchedAt)
	case "payments":
		res := h.Loaders.Payments.Load(ctx, u.VisitID, u.Token, "", refresh)
		vm.Payments = buildPayments(res, query.Get(r, "confirm"))
		vm.setFreshness(res.Err != nil && res.Loaded, res.FetchedAt)
	case "courses":
		res := h.Loaders.Courses.Load(ctx, u.VisitID, u.Token, "", refresh)
		vm.Courses = buildCourses(res)
		vm.setFreshness(res.Err != nil && res.Loaded, res.FetchedAt)
	case "settings":
		s, err := h.loadSettings(ctx, u.VisitID)
		if err != nil {
			return vm, err
		}
		vm.Settings = &settingsVM{Settings: s}
	}
	return vm, nil
}

func (vm *pageVM) setFreshness(stale bool, at time.Time) {
	vm.Stale = stale
	vm.FetchedAt = fetchedAt(at)
}

// internal/app/features/student/handler.go
package student

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/dalemusser/enrolldesk/internal/app/system/navigation"
	"github.com/dalemusser/enrolldesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Content    Content
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(content Content, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Content:    content,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type counters struct {
	Activities    string
	Notifications string
	LabProgress   string
	Library       string
}

type shelf struct {
	ID        string
	Title     string
	Resources []Resource
}

type pageVM struct {
	viewdata.BaseVM
	Query         string
	Counters      counters
	Activities    []Activity
	Notifications []Notification
	LabActions    []LabAction
	LabPercent    int
	Shelves       []shelf
	// NoMatches is set when a search left a section empty.
	NoMatches *viewdata.Placeholder
}

// countersFor derives the dashboard counters from the content.
func countersFor(c Content) counters {
	return counters{
		Activities:    strconv.Itoa(len(c.Activities)),
		Notifications: strconv.Itoa(len(c.Notifications)),
		LabProgress:   strconv.Itoa(c.LabDone) + "/" + strconv.Itoa(c.LabTotal),
		Library:       strconv.Itoa(len(c.Library)),
	}
}

func shelves(rs []Resource) []shelf {
	out := make([]shelf, 0, len(shelfTitles))
	for _, id := range []string{ShelfMaterials, ShelfBooks, ShelfExternal} {
		sh := shelf{ID: id, Title: shelfTitles[id]}
		for _, r := range rs {
			if r.Shelf == id {
				sh.Resources = append(sh.Resources, r)
			}
		}
		out = append(out, sh)
	}
	return out
}

func labPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return done * 100 / total
}

// buildPage assembles the view for one active section. Search narrows the
// activity and library listings only.
func (h *Handler) buildPage(base viewdata.BaseVM, st navigation.State, q string) pageVM {
	acts, res := h.Content.Search(q)
	vm := pageVM{
		BaseVM:        base.WithNav(st),
		Query:         q,
		Counters:      countersFor(h.Content),
		Activities:    acts,
		Notifications: h.Content.Notifications,
		LabActions:    h.Content.LabActions,
		LabPercent:    labPercent(h.Content.LabDone, h.Content.LabTotal),
		Shelves:       shelves(res),
	}
	switch {
	case st.Active == "class-activities" && len(acts) == 0:
		vm.NoMatches = &viewdata.Placeholder{Cols: 4, Text: "No activities match “" + q + "”"}
	case st.Active == "library" && len(res) == 0:
		vm.NoMatches = &viewdata.Placeholder{Cols: 1, Text: "No resources match “" + q + "”"}
	}
	return vm
}

// ServeSection renders the student dashboard with one active section.
// GET /student[?section=], GET /student/{section}[?q=]
func (h *Handler) ServeSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "section")
	if id == "" {
		id = navigation.Student.Restore(query.Get(r, "section")).Active
	}
	st, ok := navigation.Student.Activate(id)
	if !ok {
		target, _ := navigation.Student.Select(id)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	q := strings.TrimSpace(query.Get(r, "q"))
	vm := h.buildPage(viewdata.NewBaseVM(w, r, "Dashboard", "/student"), st, q)
	templates.Render(w, r, "student_dashboard", vm)
}

// HandleActivity acknowledges an activity button.
// POST /student/activities/{slug}
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	a, ok := h.Content.Activity(chi.URLParam(r, "slug"))
	if !ok {
		h.flash(w, r, auth.FlashError, "That activity is no longer available.")
		redirect(w, r, "/student/class-activities")
		return
	}
	h.Log.Info("student opened activity",
		zap.String("course", a.Course),
		zap.String("activity", a.Title))
	h.flash(w, r, auth.FlashInfo, a.Action+" "+a.Title)
	redirect(w, r, "/student/class-activities")
}

// HandleLab acknowledges a programming lab button.
// POST /student/lab/{action}
func (h *Handler) HandleLab(w http.ResponseWriter, r *http.Request) {
	a, ok := h.Content.LabAction(chi.URLParam(r, "action"))
	if !ok {
		h.flash(w, r, auth.FlashError, "Unknown lab action.")
		redirect(w, r, "/student/programming-lab")
		return
	}
	h.Log.Info("student lab action", zap.String("action", a.ID))
	h.flash(w, r, auth.FlashInfo, a.Message)
	redirect(w, r, "/student/programming-lab")
}

// HandleResource acknowledges a library link.
// POST /student/library/{slug}
func (h *Handler) HandleResource(w http.ResponseWriter, r *http.Request) {
	res, ok := h.Content.Resource(chi.URLParam(r, "slug"))
	if !ok {
		h.flash(w, r, auth.FlashError, "That resource is no longer available.")
		redirect(w, r, "/student/library")
		return
	}
	h.Log.Info("student opened library resource", zap.String("resource", res.Title))
	h.flash(w, r, auth.FlashInfo, "Opening: "+res.Title)
	redirect(w, r, "/student/library")
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if h.SessionMgr == nil {
		return
	}
	h.SessionMgr.AddFlash(w, r, kind, msg)
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

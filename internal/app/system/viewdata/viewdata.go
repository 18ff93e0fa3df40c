// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/dalemusser/enrolldesk/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in the header and page titles.
const DefaultSiteName = "EnrollDesk"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
	CSRFField template.HTML

	// One-shot operator messages
	Flashes []auth.Flash

	// Sidebar; zero for pages without sections.
	Nav navigation.State
}

// flashSource is set by Init and used to pop flashes into every page.
var flashSource *auth.SessionManager

// Init sets the session manager flashes are read from.
// Call this once at startup from bootstrap.
func Init(sm *auth.SessionManager) {
	flashSource = sm
}

// NewBaseVM creates a fully populated BaseVM for a page.
// It consumes pending flashes, so call it before writing the response.
//
// Parameters:
//   - w, r: the response and request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(w http.ResponseWriter, r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    DefaultSiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		CSRFField:   csrf.TemplateField(r),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.Role = u.Role
		vm.UserName = u.Name
	}

	if flashSource != nil && w != nil {
		vm.Flashes = flashSource.Flashes(w, r)
	}

	return vm
}

// WithNav returns a copy of vm with the sidebar state set and the title
// taken from the active section.
func (vm BaseVM) WithNav(st navigation.State) BaseVM {
	vm.Nav = st
	if st.Title != "" {
		vm.Title = st.Title
	}
	return vm
}

// Placeholder is the single row shown in place of an empty or unloaded
// table. Cols is the table's column count.
type Placeholder struct {
	Cols int
	Text string
}

// internal/app/features/admin/vm.go
package admin

import (
	"html/template"
	"net/url"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/format"
	"github.com/dalemusser/enrolldesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/enrolldesk/internal/app/system/loader"
	"github.com/dalemusser/enrolldesk/internal/app/system/viewdata"
	"github.com/dalemusser/enrolldesk/internal/app/system/workers"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
)

// noAction is shown in place of the approve/reject buttons on settled rows.
const noAction = "—"

/*─────────────────────────────────────────────────────────────────────────────*
| Page                                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

type pageVM struct {
	viewdata.BaseVM

	// Stale is set when a refresh failed and an older snapshot is shown.
	Stale      bool
	FetchedAt  string
	RefreshURL string

	Dashboard    *dashboardVM
	Users        *usersVM
	Applications *applicationsVM
	Payments     *paymentsVM
	Courses      *coursesVM
	Settings     *settingsVM
}

// placeholder returns the row shown instead of a table body, or nil when
// there are rows to show.
func placeholder(loaded bool, n int, noun string, cols int) *viewdata.Placeholder {
	switch {
	case !loaded:
		return &viewdata.Placeholder{Cols: cols, Text: "Could not load " + noun}
	case n == 0:
		return &viewdata.Placeholder{Cols: cols, Text: "No " + noun + " found"}
	}
	return nil
}

func fetchedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("3:04:05 PM")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Dashboard                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type registrationRow struct {
	Name  string
	Email string
	Date  string
}

type dashboardVM struct {
	TotalUsers           string
	PendingApplications  string
	ApprovedApplications string
	TotalRevenue         string
	// PendingPayments comes from the background payment feed; empty when
	// the feed has not completed a poll.
	PendingPayments string
	Recent          []registrationRow
	Placeholder     *viewdata.Placeholder
}

// buildDashboard renders the summary. A failed load leaves every counter at
// zero.
func buildDashboard(res loader.Result[models.DashboardSummary], feed workers.FeedStatus, feedOK bool) *dashboardVM {
	s := res.Data
	vm := &dashboardVM{
		TotalUsers:           format.Count(int64(s.TotalUsers)),
		PendingApplications:  format.Count(int64(s.PendingApplications)),
		ApprovedApplications: format.Count(int64(s.ApprovedApplications)),
		TotalRevenue:         format.Money(s.TotalRevenue),
	}
	if feedOK {
		vm.PendingPayments = format.Count(int64(feed.Pending))
	}
	for _, reg := range s.RecentRegistrations {
		vm.Recent = append(vm.Recent, registrationRow{
			Name:  format.Text(reg.Name),
			Email: format.Text(reg.Email),
			Date:  format.Date(reg.CreatedAt),
		})
	}
	if len(vm.Recent) == 0 {
		vm.Placeholder = &viewdata.Placeholder{Cols: 3, Text: "No recent registrations"}
		if !res.Loaded {
			vm.Placeholder.Text = "Could not load dashboard"
		}
	}
	return vm
}

/*─────────────────────────────────────────────────────────────────────────────*
| Users                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type userRow struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Country  string
	Verified string
	Joined   string
}

type usersVM struct {
	Rows        []userRow
	Placeholder *viewdata.Placeholder
}

func buildUsers(res loader.Result[[]models.User]) *usersVM {
	vm := &usersVM{Placeholder: placeholder(res.Loaded, len(res.Data), "users", 7)}
	for _, u := range res.Data {
		verified := "No"
		if u.EmailVerified {
			verified = "Yes"
		}
		vm.Rows = append(vm.Rows, userRow{
			ID:       u.ID.String(),
			Name:     format.Text(u.FullName),
			Email:    format.Text(u.Email),
			Phone:    format.Text(u.Phone),
			Country:  format.Text(u.Country),
			Verified: verified,
			Joined:   format.Date(u.CreatedAt),
		})
	}
	return vm
}

/*─────────────────────────────────────────────────────────────────────────────*
| Applications                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type tab struct {
	Label  string
	Href   string
	Active bool
}

type applicationRow struct {
	ID        string
	Name      string
	Email     string
	Track     string
	Status    string
	Badge     string
	Submitted string
}

type applicationsVM struct {
	Tabs        []tab
	Rows        []applicationRow
	Placeholder *viewdata.Placeholder
}

// applicationFilter normalizes the ?status= tab. Unknown values show all.
func applicationFilter(s string) string {
	if s == "" || !models.ValidApplicationFilter(s) {
		return "all"
	}
	return s
}

// variant maps a tab to the loader variant; "all" is the unfiltered list.
func variant(filter string) string {
	if filter == "all" {
		return ""
	}
	return filter
}

func buildApplications(res loader.Result[[]models.Application], filter string) *applicationsVM {
	vm := &applicationsVM{Placeholder: placeholder(res.Loaded, len(res.Data), "applications", 6)}
	for _, f := range []string{"all", models.ApplicationPending, models.ApplicationApproved, models.ApplicationRejected} {
		href := "/admin/applications"
		if f != "all" {
			href += "?" + url.Values{"status": {f}}.Encode()
		}
		vm.Tabs = append(vm.Tabs, tab{Label: format.Title(f), Href: href, Active: f == filter})
	}
	for _, a := range res.Data {
		status := a.Status
		if status == "" {
			status = models.ApplicationPending
		}
		vm.Rows = append(vm.Rows, applicationRow{
			ID:        a.ID.String(),
			Name:      format.Text(a.UserName),
			Email:     format.Text(a.Email),
			Track:     format.Text(a.Track),
			Status:    format.Title(status),
			Badge:     status,
			Submitted: format.Date(a.CreatedAt),
		})
	}
	return vm
}

/*─────────────────────────────────────────────────────────────────────────────*
| Payments                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type paymentRow struct {
	ID     string
	User   string
	Email  string
	Amount string
	Method string
	Status string
	Badge  string
	Date   string
	// Actionable rows get approve/reject buttons; the rest show NoAction.
	Actionable bool
	NoAction   string
	HasUser    bool
}

type paymentsVM struct {
	Rows        []paymentRow
	Placeholder *viewdata.Placeholder
	// Confirm is the row awaiting a record-only approval confirmation.
	Confirm   *paymentRow
	FetchedAt string
}

// paymentUser is the name shown in the user column.
func paymentUser(p models.Payment) string {
	switch {
	case p.UserName != "":
		return p.UserName
	case !p.UserID.IsZero():
		return p.UserID.String()
	}
	return "User"
}

func newPaymentRow(p models.Payment) paymentRow {
	status := p.EffectiveStatus()
	row := paymentRow{
		ID:      p.ID.String(),
		User:    paymentUser(p),
		Email:   format.Text(p.UserEmail),
		Amount:  format.Money(p.Amount),
		Method:  format.Text(p.Method),
		Status:  format.Title(status),
		Badge:   status,
		Date:    format.Date(p.CreatedAt),
		HasUser: !p.UserID.IsZero(),
	}
	if status == models.PaymentPending {
		row.Actionable = true
	} else {
		row.NoAction = noAction
	}
	return row
}

func buildPayments(res loader.Result[[]models.Payment], confirmID string) *paymentsVM {
	vm := &paymentsVM{
		Placeholder: placeholder(res.Loaded, len(res.Data), "payments", 7),
		FetchedAt:   fetchedAt(res.FetchedAt),
	}
	for _, p := range res.Data {
		row := newPaymentRow(p)
		vm.Rows = append(vm.Rows, row)
		if confirmID != "" && row.ID == confirmID && row.Actionable && !row.HasUser {
			c := row
			vm.Confirm = &c
		}
	}
	return vm
}

/*─────────────────────────────────────────────────────────────────────────────*
| Courses                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type courseRow struct {
	ID          string
	Name        string
	Description template.HTML
	Price       string
}

type coursesVM struct {
	Rows        []courseRow
	Placeholder *viewdata.Placeholder
}

func buildCourses(res loader.Result[[]models.Course]) *coursesVM {
	vm := &coursesVM{Placeholder: placeholder(res.Loaded, len(res.Data), "courses", 4)}
	for _, c := range res.Data {
		desc := htmlsanitize.PrepareForDisplay(c.Description)
		if desc == "" {
			desc = format.NotAvailable
		}
		vm.Rows = append(vm.Rows, courseRow{
			ID:          c.ID.String(),
			Name:        format.Text(c.Name),
			Description: desc,
			Price:       format.Money(c.Price),
		})
	}
	return vm
}

package admin

import (
	"errors"
	"testing"

	"github.com/dalemusser/enrolldesk/internal/app/system/loader"
	"github.com/dalemusser/enrolldesk/internal/app/system/workers"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
)

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		got  func() string
		want string
	}{
		{"users empty", func() string {
			return buildUsers(loader.Result[[]models.User]{Loaded: true}).Placeholder.Text
		}, "No users found"},
		{"applications empty", func() string {
			return buildApplications(loader.Result[[]models.Application]{Loaded: true}, "all").Placeholder.Text
		}, "No applications found"},
		{"payments empty", func() string {
			return buildPayments(loader.Result[[]models.Payment]{Loaded: true}, "").Placeholder.Text
		}, "No payments found"},
		{"courses empty", func() string {
			return buildCourses(loader.Result[[]models.Course]{Loaded: true}).Placeholder.Text
		}, "No courses found"},
		{"payments failed", func() string {
			return buildPayments(loader.Result[[]models.Payment]{Err: errors.New("down")}, "").Placeholder.Text
		}, "Could not load payments"},
	}
	for _, tt := range tests {
		if got := tt.got(); got != tt.want {
			t.Errorf("%s: placeholder = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestPlaceholder_NoneWithRows(t *testing.T) {
	vm := buildUsers(loader.Result[[]models.User]{Loaded: true, Data: []models.User{{ID: "u1", FullName: "Ada"}}})
	if vm.Placeholder != nil {
		t.Errorf("expected no placeholder, got %+v", vm.Placeholder)
	}
	if len(vm.Rows) != 1 || vm.Rows[0].Phone != "N/A" || vm.Rows[0].Verified != "No" {
		t.Errorf("rows = %+v", vm.Rows)
	}
}

func TestBuildDashboard_DefaultsToZero(t *testing.T) {
	vm := buildDashboard(loader.Result[models.DashboardSummary]{Err: errors.New("down")}, workers.FeedStatus{}, false)

	if vm.TotalUsers != "0" || vm.PendingApplications != "0" || vm.ApprovedApplications != "0" {
		t.Errorf("counters = %+v", vm)
	}
	if vm.TotalRevenue != "$0" {
		t.Errorf("revenue = %q, want $0", vm.TotalRevenue)
	}
	if vm.PendingPayments != "" {
		t.Errorf("pending payments should be hidden before the feed polls, got %q", vm.PendingPayments)
	}
	if vm.Placeholder == nil || vm.Placeholder.Text != "Could not load dashboard" {
		t.Errorf("placeholder = %+v", vm.Placeholder)
	}
}

func TestBuildDashboard_Values(t *testing.T) {
	res := loader.Result[models.DashboardSummary]{Loaded: true, Data: models.DashboardSummary{
		TotalUsers:   1200,
		TotalRevenue: models.Amount{Value: 1234.5, IsNumber: true},
		RecentRegistrations: []models.Registration{
			{Name: "Ada", Email: "ada@example.com"},
		},
	}}
	vm := buildDashboard(res, workers.FeedStatus{Pending: 3}, true)

	if vm.TotalUsers != "1,200" || vm.TotalRevenue != "$1,234.5" || vm.PendingPayments != "3" {
		t.Errorf("vm = %+v", vm)
	}
	if vm.Placeholder != nil || len(vm.Recent) != 1 || vm.Recent[0].Date != "N/A" {
		t.Errorf("recent = %+v placeholder = %+v", vm.Recent, vm.Placeholder)
	}
}

func TestNewPaymentRow(t *testing.T) {
	pending := newPaymentRow(models.Payment{ID: "1", UserID: "u1", Amount: models.Amount{Value: 100, IsNumber: true}})
	if !pending.Actionable || pending.NoAction != "" || pending.Amount != "$100" || pending.Status != "Pending" {
		t.Errorf("pending row = %+v", pending)
	}

	for _, s := range []string{"approved", "completed", "rejected"} {
		row := newPaymentRow(models.Payment{ID: "2", Status: s})
		if row.Actionable || row.NoAction != noAction {
			t.Errorf("%s row should be settled: %+v", s, row)
		}
	}
}

func TestPaymentUser(t *testing.T) {
	tests := []struct {
		p    models.Payment
		want string
	}{
		{models.Payment{UserName: "Ada", UserID: "u1"}, "Ada"},
		{models.Payment{UserID: "u1"}, "u1"},
		{models.Payment{}, "User"},
	}
	for _, tt := range tests {
		if got := paymentUser(tt.p); got != tt.want {
			t.Errorf("paymentUser(%+v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestBuildPayments_ConfirmOnlyForUnattachedPending(t *testing.T) {
	res := loader.Result[[]models.Payment]{Loaded: true, Data: []models.Payment{
		{ID: "1"},
		{ID: "2", UserID: "u2"},
		{ID: "3", Status: "completed"},
	}}
	if vm := buildPayments(res, "1"); vm.Confirm == nil || vm.Confirm.ID != "1" {
		t.Errorf("expected confirmation for payment 1, got %+v", vm.Confirm)
	}
	for _, id := range []string{"2", "3", "9"} {
		if vm := buildPayments(res, id); vm.Confirm != nil {
			t.Errorf("payment %s must not ask for confirmation", id)
		}
	}
}

func TestApplicationFilter(t *testing.T) {
	tests := map[string]string{
		"":         "all",
		"all":      "all",
		"pending":  "pending",
		"rejected": "rejected",
		"bogus":    "all",
	}
	for in, want := range tests {
		if got := applicationFilter(in); got != want {
			t.Errorf("applicationFilter(%q) = %q, want %q", in, got, want)
		}
	}
	if variant("all") != "" || variant("pending") != "pending" {
		t.Error("variant mapping is wrong")
	}
}

func TestBuildApplications_Tabs(t *testing.T) {
	vm := buildApplications(loader.Result[[]models.Application]{Loaded: true, Data: []models.Application{{ID: "a1"}}}, "approved")

	active := ""
	for _, tb := range vm.Tabs {
		if tb.Active {
			active = tb.Href
		}
	}
	if active != "/admin/applications?status=approved" {
		t.Errorf("active tab = %q", active)
	}
	if vm.Rows[0].Badge != "pending" || vm.Rows[0].Status != "Pending" {
		t.Errorf("missing status should read as pending: %+v", vm.Rows[0])
	}
}

func TestBuildCourses_SanitizesDescription(t *testing.T) {
	vm := buildCourses(loader.Result[[]models.Course]{Loaded: true, Data: []models.Course{
		{ID: "c1", Name: "Go", Description: `<b>Fast</b><script>alert(1)</script>`},
		{ID: "c2", Name: "Empty"},
	}})
	if got := string(vm.Rows[0].Description); got != "<b>Fast</b>" {
		t.Errorf("description = %q", got)
	}
	if vm.Rows[1].Description != "N/A" || vm.Rows[1].Price != "$0" {
		t.Errorf("empty course row = %+v", vm.Rows[1])
	}
}

func TestSettingsValidate(t *testing.T) {
	s := Settings{CompanyName: "  Acme ", AdminEmail: " ops@acme.test "}
	if msg := s.validate(); msg != "" {
		t.Fatalf("validate = %q", msg)
	}
	if s.CompanyName != "Acme" || s.AdminEmail != "ops@acme.test" {
		t.Errorf("fields not trimmed: %+v", s)
	}

	bad := Settings{CompanyName: "Acme", SupportEmail: "nope"}
	if msg := bad.validate(); msg != "Support email is not a valid address." {
		t.Errorf("validate = %q", msg)
	}
	if msg := (&Settings{}).validate(); msg != "Company name is required." {
		t.Errorf("validate = %q", msg)
	}

	changed := Settings{CompanyName: "Acme", AdminEmail: "a@b.c"}.changedFields(DefaultSettings())
	if changed != "admin_email,company_name" {
		t.Errorf("changedFields = %q", changed)
	}
}

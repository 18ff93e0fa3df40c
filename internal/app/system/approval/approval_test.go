package approval_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/enrolldesk/internal/app/store/backend"
	"github.com/dalemusser/enrolldesk/internal/app/system/approval"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
	"go.uber.org/zap"
)

type fakeBackend struct {
	mu         sync.Mutex
	calls      []string
	statuses   []string
	notices    []backend.ApprovalNotice
	echo       *models.Payment
	paymentErr error
	userErr    error
	notifyErr  error
}

func (f *fakeBackend) UpdatePaymentStatus(_ context.Context, _, paymentID, status string) (backend.PaymentUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "payment:"+paymentID)
	f.statuses = append(f.statuses, status)
	if f.paymentErr != nil {
		return backend.PaymentUpdate{}, f.paymentErr
	}
	return backend.PaymentUpdate{Payment: f.echo}, nil
}

func (f *fakeBackend) UpdateUserPaymentStatus(_ context.Context, _, userID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "user:"+userID)
	f.statuses = append(f.statuses, status)
	return f.userErr
}

func (f *fakeBackend) NotifyUserApproval(_ context.Context, _ string, n backend.ApprovalNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "notify:"+n.UserID)
	f.notices = append(f.notices, n)
	return f.notifyErr
}

type memRecorder struct {
	records []approval.Record
}

func (m *memRecorder) RecordApproval(_ context.Context, rec approval.Record) {
	m.records = append(m.records, rec)
}

func newWorkflow(t *testing.T, b approval.Backend, status string) (*approval.Workflow, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	w, err := approval.New(b, status, "", rec, zap.NewNop())
	if err != nil {
		t.Fatalf("approval.New: %v", err)
	}
	return w, rec
}

func equalCalls(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestNew_ApproveStatus(t *testing.T) {
	w, err := approval.New(&fakeBackend{}, "", "", nil, nil)
	if err != nil || w.ApproveStatus != models.PaymentCompleted {
		t.Errorf("default approve status = %q, %v", w.ApproveStatus, err)
	}
	w, err = approval.New(&fakeBackend{}, "Approved", "", nil, nil)
	if err != nil || w.ApproveStatus != models.PaymentApproved {
		t.Errorf("approved status = %q, %v", w.ApproveStatus, err)
	}
	if _, err := approval.New(&fakeBackend{}, "rejected", "", nil, nil); err == nil {
		t.Error("expected error for an invalid approve status")
	}
	if w.NotifyMessage != approval.DefaultNotifyMessage {
		t.Errorf("notify message = %q", w.NotifyMessage)
	}
}

func TestApprove_FullSuccess(t *testing.T) {
	fb := &fakeBackend{}
	w, rec := newWorkflow(t, fb, "")

	res, err := w.Approve(context.Background(), "tok", approval.Request{
		PaymentID: "1", UserID: "u1", UserEmail: "u1@example.com", CurrentStatus: "pending", Actor: "admin",
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	want := []string{"payment:1", "user:u1", "notify:u1"}
	if !equalCalls(fb.calls, want) {
		t.Errorf("calls = %v, want %v", fb.calls, want)
	}
	if fb.statuses[0] != "completed" || fb.statuses[1] != "completed" {
		t.Errorf("statuses sent = %v", fb.statuses)
	}
	if res.Status != "completed" || !res.PaymentUpdated || !res.UserUpdated || !res.Notified {
		t.Errorf("result = %+v", res)
	}
	if res.Message() != approval.MsgApproved {
		t.Errorf("message = %q", res.Message())
	}
	n := fb.notices[0]
	if n.PaymentID != "1" || n.UserEmail != "u1@example.com" || n.Message != approval.DefaultNotifyMessage {
		t.Errorf("notice = %+v", n)
	}
	if len(rec.records) != 1 || rec.records[0].Outcome != approval.OutcomeApproved || rec.records[0].RunID == "" {
		t.Errorf("records = %+v", rec.records)
	}
}

func TestApprove_ConfiguredApprovedStatus(t *testing.T) {
	fb := &fakeBackend{}
	w, _ := newWorkflow(t, fb, "approved")

	res, err := w.Approve(context.Background(), "tok", approval.Request{PaymentID: "1", UserID: "u1"})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if fb.statuses[0] != "approved" {
		t.Errorf("payment status sent = %q, want approved", fb.statuses[0])
	}
	if fb.statuses[1] != "completed" {
		t.Errorf("user status sent = %q, want completed", fb.statuses[1])
	}
	if res.Status != "approved" {
		t.Errorf("result status = %q", res.Status)
	}
}

func TestApprove_PaymentUpdateFails(t *testing.T) {
	fb := &fakeBackend{paymentErr: &backend.Error{Kind: backend.KindStatus, StatusCode: 500}}
	w, rec := newWorkflow(t, fb, "")

	res, err := w.Approve(context.Background(), "tok", approval.Request{PaymentID: "1", UserID: "u1", CurrentStatus: "pending"})
	if !errors.Is(err, approval.ErrPaymentUpdate) {
		t.Fatalf("expected ErrPaymentUpdate, got %v", err)
	}
	if !backend.IsStatus(err, 500) {
		t.Error("backend cause should stay reachable through the error chain")
	}
	if approval.Alert(err) != "Could not update payment" {
		t.Errorf("alert = %q", approval.Alert(err))
	}
	if !equalCalls(fb.calls, []string{"payment:1"}) {
		t.Errorf("workflow must abort after step one, calls = %v", fb.calls)
	}
	if res.PaymentUpdated || res.Status != "pending" {
		t.Errorf("row must stay pending, got %+v", res)
	}
	if rec.records[0].Outcome != approval.OutcomeFailed {
		t.Errorf("outcome = %q", rec.records[0].Outcome)
	}
}

func TestApprove_PartialApproval(t *testing.T) {
	fb := &fakeBackend{userErr: errors.New("user service down")}
	w, rec := newWorkflow(t, fb, "")

	res, err := w.Approve(context.Background(), "tok", approval.Request{PaymentID: "1", UserID: "u1", CurrentStatus: "pending"})
	if !errors.Is(err, approval.ErrUserUpdate) {
		t.Fatalf("expected ErrUserUpdate, got %v", err)
	}
	if approval.Alert(err) != "Payment marked completed but could not update user status." {
		t.Errorf("alert = %q", approval.Alert(err))
	}
	if !res.PaymentUpdated || res.UserUpdated || res.Notified {
		t.Errorf("result = %+v", res)
	}
	if res.Status != "completed" {
		t.Errorf("payment stays completed, got %q", res.Status)
	}
	for _, c := range fb.calls {
		if c == "notify:u1" {
			t.Error("no notification may be sent after a partial approval")
		}
	}
	if rec.records[0].Outcome != approval.OutcomePartial || rec.records[0].Err == nil {
		t.Errorf("partial approval must be recorded, got %+v", rec.records[0])
	}
}

func TestApprove_NotifyFailureIsSwallowed(t *testing.T) {
	fb := &fakeBackend{notifyErr: errors.New("smtp down")}
	w, _ := newWorkflow(t, fb, "")

	res, err := w.Approve(context.Background(), "tok", approval.Request{PaymentID: "1", UserID: "u1"})
	if err != nil {
		t.Fatalf("notification failure must not fail the approval: %v", err)
	}
	if res.Notified || res.Outcome != approval.OutcomeApproved {
		t.Errorf("result = %+v", res)
	}
}

func TestApprove_MissingUserRequiresConfirmation(t *testing.T) {
	fb := &fakeBackend{}
	w, _ := newWorkflow(t, fb, "")

	_, err := w.Approve(context.Background(), "tok", approval.Request{PaymentID: "1"})
	if !errors.Is(err, approval.ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}
	if len(fb.calls) != 0 {
		t.Errorf("no backend call before confirmation, got %v", fb.calls)
	}

	res, err := w.Approve(context.Background(), "tok", approval.Request{PaymentID: "1", RecordOnly: true})
	if err != nil {
		t.Fatalf("confirmed record-only approval: %v", err)
	}
	if !equalCalls(fb.calls, []string{"payment:1", "notify:"}) {
		t.Errorf("record-only calls = %v", fb.calls)
	}
	if res.Outcome != approval.OutcomeRecordOnly || res.UserUpdated || !res.Notified {
		t.Errorf("result = %+v", res)
	}
	if n := fb.notices[0]; n.PaymentID != "1" || n.UserID != "" {
		t.Errorf("record-only notice = %+v", n)
	}
}

func TestApprove_UsesEchoedUser(t *testing.T) {
	fb := &fakeBackend{echo: &models.Payment{ID: "1", UserID: "u9", UserEmail: "u9@example.com", Status: "completed"}}
	w, rec := newWorkflow(t, fb, "")

	res, err := w.Approve(context.Background(), "tok", approval.Request{PaymentID: "1", RecordOnly: true})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	want := []string{"payment:1", "user:u9", "notify:u9"}
	if !equalCalls(fb.calls, want) {
		t.Errorf("calls = %v, want %v", fb.calls, want)
	}
	if res.Outcome != approval.OutcomeApproved || !res.UserUpdated {
		t.Errorf("result = %+v", res)
	}
	if fb.notices[0].UserEmail != "u9@example.com" {
		t.Errorf("notice email = %q", fb.notices[0].UserEmail)
	}
	if len(rec.records) != 1 || rec.records[0].UserID != "u9" {
		t.Errorf("records = %+v", rec.records)
	}
}

func TestApprove_RowUserWinsOverEcho(t *testing.T) {
	fb := &fakeBackend{echo: &models.Payment{ID: "1", UserID: "other", UserEmail: "other@example.com"}}
	w, _ := newWorkflow(t, fb, "")

	if _, err := w.Approve(context.Background(), "tok", approval.Request{PaymentID: "1", UserID: "u1", UserEmail: "u1@example.com"}); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	want := []string{"payment:1", "user:u1", "notify:u1"}
	if !equalCalls(fb.calls, want) {
		t.Errorf("calls = %v, want %v", fb.calls, want)
	}
	if fb.notices[0].UserEmail != "u1@example.com" {
		t.Errorf("notice email = %q", fb.notices[0].UserEmail)
	}
}

func TestApprove_Refusals(t *testing.T) {
	fb := &fakeBackend{}
	w, _ := newWorkflow(t, fb, "")

	if _, err := w.Approve(context.Background(), "tok", approval.Request{UserID: "u1"}); !errors.Is(err, approval.ErrMissingPaymentID) {
		t.Errorf("expected ErrMissingPaymentID, got %v", err)
	}
	for _, st := range []string{"approved", "completed", "rejected", "Completed"} {
		_, err := w.Approve(context.Background(), "tok", approval.Request{PaymentID: "1", UserID: "u1", CurrentStatus: st})
		if !errors.Is(err, approval.ErrNotPending) {
			t.Errorf("status %q: expected ErrNotPending, got %v", st, err)
		}
	}
	if len(fb.calls) != 0 {
		t.Errorf("refusals must not call the backend, got %v", fb.calls)
	}
}

func TestReject(t *testing.T) {
	fb := &fakeBackend{}
	w, rec := newWorkflow(t, fb, "")

	res, err := w.Reject(context.Background(), "tok", approval.Request{PaymentID: "9", UserID: "u9", CurrentStatus: "pending"})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if !equalCalls(fb.calls, []string{"payment:9"}) || fb.statuses[0] != "rejected" {
		t.Errorf("calls = %v statuses = %v", fb.calls, fb.statuses)
	}
	if res.Status != "rejected" || res.Message() != approval.MsgRejected {
		t.Errorf("result = %+v", res)
	}
	if rec.records[0].Action != approval.ActionReject {
		t.Errorf("action = %q", rec.records[0].Action)
	}

	if _, err := w.Reject(context.Background(), "tok", approval.Request{PaymentID: "9", CurrentStatus: "rejected"}); !errors.Is(err, approval.ErrNotPending) {
		t.Errorf("expected ErrNotPending, got %v", err)
	}
}

func TestApply(t *testing.T) {
	rows := []models.Payment{
		{ID: "1", Status: "pending"},
		{ID: "2", Status: "pending"},
	}
	out := approval.Apply(rows, "1", approval.Result{PaymentUpdated: true, Status: "completed"})
	if out[0].Status != "completed" || out[1].Status != "pending" {
		t.Errorf("out = %+v", out)
	}
	if rows[0].Status != "pending" {
		t.Error("Apply must not modify its input")
	}
	same := approval.Apply(rows, "1", approval.Result{})
	if same[0].Status != "pending" {
		t.Error("a failed run must not change rows")
	}
}

// TestApprove_AgainstHTTPBackend walks the pending payment from the
// payments listing through the real client and checks the request order.
func TestApprove_AgainstHTTPBackend(t *testing.T) {
	var mu sync.Mutex
	var order []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		mu.Lock()
		order = append(order, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/admin/payments":
			io.WriteString(w, `{"payments":[{"id":1,"userId":"u1","status":"pending","amount":100,"method":"card"}]}`)
		case "/api/admin/payments/1":
			io.WriteString(w, `{"payment":{"id":1,"userId":"u1","status":"completed"}}`)
		default:
			io.WriteString(w, `{}`)
		}
	}))
	defer srv.Close()

	c, err := backend.New(srv.URL, 0)
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	ctx := context.Background()
	rows, err := c.ListPayments(ctx, "tok")
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}

	w, _ := newWorkflow(t, c, "")
	p := rows[0]
	res, err := w.Approve(ctx, "tok", approval.Request{
		PaymentID:     p.ID.String(),
		UserID:        p.UserID.String(),
		CurrentStatus: p.EffectiveStatus(),
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	rows = approval.Apply(rows, p.ID.String(), res)
	if rows[0].Status != "completed" {
		t.Errorf("row status = %q, want completed", rows[0].Status)
	}
	if res.Payment == nil || res.Payment.Status != "completed" {
		t.Errorf("echoed payment = %+v", res.Payment)
	}

	want := []string{
		"GET /api/admin/payments",
		"PUT /api/admin/payments/1",
		"PUT /api/user-payment-approval/u1",
		"POST /api/notify-user-approval",
	}
	if !equalCalls(order, want) {
		t.Errorf("request order = %v, want %v", order, want)
	}
}

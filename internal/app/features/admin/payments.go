// internal/app/features/admin/payments.go
package admin

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/enrolldesk/internal/app/system/approval"
	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/dalemusser/enrolldesk/internal/app/system/format"
	"github.com/dalemusser/enrolldesk/internal/app/system/limits"
	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const paymentsPath = "/admin/payments"

// ServePaymentsTable renders the payments table body. The console requests
// it every 20 seconds; each request fetches the full list again and the
// latest completed response replaces the table.
// GET /admin/payments/table
func (h *Handler) ServePaymentsTable(w http.ResponseWriter, r *http.Request) {
	u := operator(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res := h.Loaders.Payments.Load(ctx, u.VisitID, u.Token, "", true)
	vm := buildPayments(res, "")
	templates.RenderSnippet(w, "admin_payments_rows", vm)
}

// rowFor finds the payment in the visit's snapshot, fetching the list when
// there is none. The returned rows are the snapshot the action applies to.
func (h *Handler) rowFor(ctx context.Context, u *auth.SessionUser, id string) ([]models.Payment, *models.Payment) {
	var rows []models.Payment
	if snap, ok := h.Loaders.Payments.Peek(ctx, u.VisitID, ""); ok {
		rows = snap.Data
	}
	if p := findPayment(rows, id); p != nil {
		return rows, p
	}
	res := h.Loaders.Payments.Load(ctx, u.VisitID, u.Token, "", true)
	if res.Loaded {
		rows = res.Data
	}
	return rows, findPayment(rows, id)
}

func findPayment(rows []models.Payment, id string) *models.Payment {
	for i := range rows {
		if rows[i].ID.String() == id {
			return &rows[i]
		}
	}
	return nil
}

// paymentRequest describes the row the operator acted on. The snapshot is
// authoritative; form fields are only used for a payment the console could
// not list.
func paymentRequest(r *http.Request, id string, p *models.Payment, actor string) approval.Request {
	req := approval.Request{
		PaymentID:  id,
		RecordOnly: r.FormValue("confirm_record_only") == "1",
		Actor:      actor,
	}
	if p != nil {
		req.UserID = p.UserID.String()
		req.UserEmail = p.UserEmail
		req.CurrentStatus = p.EffectiveStatus()
		return req
	}
	req.UserID = strings.TrimSpace(r.FormValue("user_id"))
	req.UserEmail = strings.TrimSpace(r.FormValue("user_email"))
	req.CurrentStatus = strings.TrimSpace(r.FormValue("status"))
	return req
}

// HandleApprove runs the approval workflow for one payment.
// POST /admin/payments/{id}/approve  (confirm_record_only=1 to approve a
// payment with no user attached)
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	u := operator(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxActionFormSize)
	if err := r.ParseForm(); err != nil {
		h.flash(w, r, auth.FlashError, "Invalid form data.")
		redirect(w, r, paymentsPath)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "approve payment")
	defer cancel()

	rows, p := h.rowFor(ctx, u, id)
	res, err := h.Approvals.Approve(ctx, u.Token, paymentRequest(r, id, p, u.Name))

	if errors.Is(err, approval.ErrMissingUserID) {
		h.flash(w, r, auth.FlashInfo, approval.Alert(err))
		redirect(w, r, paymentsPath+"?"+url.Values{"confirm": {id}}.Encode())
		return
	}
	h.finishPaymentAction(ctx, w, r, u, rows, id, res, err)
}

// HandleReject marks one pending payment rejected.
// POST /admin/payments/{id}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	u := operator(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxActionFormSize)
	if err := r.ParseForm(); err != nil {
		h.flash(w, r, auth.FlashError, "Invalid form data.")
		redirect(w, r, paymentsPath)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "reject payment")
	defer cancel()

	rows, p := h.rowFor(ctx, u, id)
	res, err := h.Approvals.Reject(ctx, u.Token, paymentRequest(r, id, p, u.Name))
	h.finishPaymentAction(ctx, w, r, u, rows, id, res, err)
}

// finishPaymentAction applies the result to the visit's snapshot, queues the
// operator message and returns to the payments section.
func (h *Handler) finishPaymentAction(ctx context.Context, w http.ResponseWriter, r *http.Request,
	u *auth.SessionUser, rows []models.Payment, id string, res approval.Result, err error) {

	if res.PaymentUpdated {
		if findPayment(rows, id) != nil {
			if err := h.Loaders.Payments.Put(ctx, u.VisitID, "", approval.Apply(rows, id, res)); err != nil {
				h.Log.Warn("could not store updated payments", zap.String("payment_id", id), zap.Error(err))
			}
		} else {
			h.Loaders.Payments.Invalidate(ctx, u.VisitID)
		}
		h.Loaders.Summary.Invalidate(ctx, u.VisitID)
		h.Feed.Refresh()
	}

	if err != nil {
		h.flash(w, r, auth.FlashError, approval.Alert(err))
	} else {
		h.flash(w, r, auth.FlashSuccess, res.Message())
	}
	redirect(w, r, paymentsPath)
}

// ServeExportCSV writes the visit's payment list as CSV.
// GET /admin/payments/export.csv
func (h *Handler) ServeExportCSV(w http.ResponseWriter, r *http.Request) {
	u := operator(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "export payments")
	defer cancel()

	res := h.Loaders.Payments.Load(ctx, u.VisitID, u.Token, "", false)
	if !res.Loaded {
		h.flash(w, r, auth.FlashError, "Could not load payments")
		redirect(w, r, paymentsPath)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "user", "user_id", "email", "amount", "method", "status", "date"})
	for _, p := range res.Data {
		_ = cw.Write([]string{
			p.ID.String(),
			paymentUser(p),
			p.UserID.String(),
			p.UserEmail,
			format.Money(p.Amount),
			p.Method,
			p.EffectiveStatus(),
			format.Date(p.CreatedAt),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Warn("payments export failed", zap.Error(err))
	}
}

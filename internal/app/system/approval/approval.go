// Package approval runs the payment approval and rejection workflows.
//
// Approval is three sequential backend calls with no transaction around
// them: the payment record is updated, then the user's payment status, then
// a best-effort notification is requested. A failure in the second step
// leaves the payment approved while the user stays locked; that partial
// state is reported to the operator and recorded, never rolled back.
package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/store/backend"
	"github.com/dalemusser/enrolldesk/internal/app/system/metrics"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrMissingPaymentID = errors.New("missing payment id")
	ErrMissingUserID    = errors.New("no user id attached")
	ErrNotPending       = errors.New("payment is not pending")
	ErrPaymentUpdate    = errors.New("could not update payment")
	ErrUserUpdate       = errors.New("payment marked completed but could not update user status")
)

// DefaultNotifyMessage is sent with the approval notification when none is
// configured.
const DefaultNotifyMessage = "Your payment has been approved! Your dashboard is now unlocked."

// Operator-facing messages.
const (
	MsgApproved           = "Payment approved and user updated. User will be able to access the dashboard."
	MsgApprovedRecordOnly = "Payment approved. No user account was updated."
	MsgRejected           = "Payment rejected"
	MsgConfirmRecordOnly  = "No user id attached. Approve payment record only?"
)

// Alert maps a workflow error to the message shown to the operator.
func Alert(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingPaymentID):
		return "Missing payment id"
	case errors.Is(err, ErrMissingUserID):
		return MsgConfirmRecordOnly
	case errors.Is(err, ErrNotPending):
		return "This payment has already been processed."
	case errors.Is(err, ErrUserUpdate):
		return "Payment marked completed but could not update user status."
	case errors.Is(err, ErrPaymentUpdate):
		return "Could not update payment"
	}
	return "Could not update payment"
}

// Backend is the subset of the backend client the workflow calls.
type Backend interface {
	UpdatePaymentStatus(ctx context.Context, token, paymentID, status string) (backend.PaymentUpdate, error)
	UpdateUserPaymentStatus(ctx context.Context, token, userID, status string) error
	NotifyUserApproval(ctx context.Context, token string, n backend.ApprovalNotice) error
}

// Recorder receives one Record per workflow run.
type Recorder interface {
	RecordApproval(ctx context.Context, rec Record)
}

// Action names.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Outcomes, also used as metric labels.
const (
	OutcomeApproved   = "approved"
	OutcomeRecordOnly = "approved_record_only"
	OutcomePartial    = "partial"
	OutcomeFailed     = "failed"
	OutcomeRefused    = "refused"
	OutcomeRejected   = "rejected"
)

// Request identifies the payment row the operator acted on.
type Request struct {
	PaymentID string
	UserID    string
	UserEmail string
	// CurrentStatus is the status shown in the operator's table. Empty means
	// unknown and is treated as pending.
	CurrentStatus string
	// RecordOnly is the operator's confirmation that a payment without a
	// user id should be approved anyway.
	RecordOnly bool
	Actor      string
}

// Record is the audit view of one run.
type Record struct {
	RunID     string
	Action    string
	Actor     string
	PaymentID string
	UserID    string
	Status    string
	Outcome   string
	Notified  bool
	Err       error
	Duration  time.Duration
}

// Result describes what a run changed.
type Result struct {
	RunID string
	// Status is the payment's status after the run.
	Status         string
	PaymentUpdated bool
	UserUpdated    bool
	Notified       bool
	Outcome        string
	// Payment is the record echoed by the backend, when it sent one.
	Payment *models.Payment
}

// Message returns the operator message for a successful result.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeApproved:
		return MsgApproved
	case OutcomeRecordOnly:
		return MsgApprovedRecordOnly
	case OutcomeRejected:
		return MsgRejected
	}
	return ""
}

// Workflow runs approvals and rejections against a Backend.
type Workflow struct {
	Backend Backend
	// ApproveStatus is sent in step one; "completed" unless configured to
	// "approved".
	ApproveStatus string
	NotifyMessage string
	Recorder      Recorder
	Log           *zap.Logger

	newRunID func() string
}

// New creates a Workflow. An empty approveStatus means completed; an empty
// notifyMessage means DefaultNotifyMessage.
func New(b Backend, approveStatus, notifyMessage string, rec Recorder, logger *zap.Logger) (*Workflow, error) {
	approveStatus = strings.ToLower(strings.TrimSpace(approveStatus))
	if approveStatus == "" {
		approveStatus = models.PaymentCompleted
	}
	if !models.ValidApprovalStatus(approveStatus) {
		return nil, fmt.Errorf("approve status must be %q or %q, got %q",
			models.PaymentCompleted, models.PaymentApproved, approveStatus)
	}
	if notifyMessage == "" {
		notifyMessage = DefaultNotifyMessage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		Backend:       b,
		ApproveStatus: approveStatus,
		NotifyMessage: notifyMessage,
		Recorder:      rec,
		Log:           logger,
		newRunID:      uuid.NewString,
	}, nil
}

func (w *Workflow) runID() string {
	if w.newRunID == nil {
		return uuid.NewString()
	}
	return w.newRunID()
}

func (w *Workflow) finish(ctx context.Context, rec Record, start time.Time) {
	rec.Duration = time.Since(start)
	metrics.ObserveApproval(rec.Outcome)
	if w.Recorder != nil {
		w.Recorder.RecordApproval(ctx, rec)
	}
}

// Approve runs the approval protocol for one payment.
//
// Errors are workflow sentinels wrapping the backend cause; check them with
// errors.Is. A returned ErrUserUpdate comes with a Result whose
// PaymentUpdated is true.
func (w *Workflow) Approve(ctx context.Context, token string, req Request) (Result, error) {
	start := time.Now()
	res := Result{RunID: w.runID(), Status: req.CurrentStatus}
	rec := Record{
		RunID:     res.RunID,
		Action:    ActionApprove,
		Actor:     req.Actor,
		PaymentID: req.PaymentID,
		UserID:    req.UserID,
		Status:    req.CurrentStatus,
	}
	log := w.Log.With(
		zap.String("run_id", res.RunID),
		zap.String("payment_id", req.PaymentID),
		zap.String("user_id", req.UserID),
	)

	refuse := func(err error) (Result, error) {
		res.Outcome = OutcomeRefused
		rec.Outcome, rec.Err = OutcomeRefused, err
		w.finish(ctx, rec, start)
		return res, err
	}

	paymentID := strings.TrimSpace(req.PaymentID)
	userID := strings.TrimSpace(req.UserID)
	if paymentID == "" {
		return refuse(ErrMissingPaymentID)
	}
	if models.IsTerminalPaymentStatus(req.CurrentStatus) {
		return refuse(ErrNotPending)
	}
	if userID == "" && !req.RecordOnly {
		return refuse(ErrMissingUserID)
	}

	// 1) payment record
	upd, err := w.Backend.UpdatePaymentStatus(ctx, token, paymentID, w.ApproveStatus)
	if err != nil {
		log.Warn("could not update payment record", zap.Error(err))
		res.Outcome = OutcomeFailed
		rec.Outcome, rec.Err = OutcomeFailed, err
		w.finish(ctx, rec, start)
		return res, fmt.Errorf("%w: %w", ErrPaymentUpdate, err)
	}
	res.PaymentUpdated = true
	res.Status = w.ApproveStatus
	res.Payment = upd.Payment
	rec.Status = w.ApproveStatus

	// The echoed record fills in a user the operator's row did not carry.
	userEmail := req.UserEmail
	if p := upd.Payment; p != nil {
		if userID == "" && !p.UserID.IsZero() {
			userID = p.UserID.String()
			rec.UserID = userID
			log = log.With(zap.String("echoed_user_id", userID))
		}
		if userEmail == "" {
			userEmail = strings.TrimSpace(p.UserEmail)
		}
	}

	// 2) user entitlement
	if userID != "" {
		if err := w.Backend.UpdateUserPaymentStatus(ctx, token, userID, models.PaymentCompleted); err != nil {
			log.Warn("payment updated but user payment status was not", zap.Error(err))
			res.Outcome = OutcomePartial
			rec.Outcome, rec.Err = OutcomePartial, err
			w.finish(ctx, rec, start)
			return res, fmt.Errorf("%w: %w", ErrUserUpdate, err)
		}
		res.UserUpdated = true
	}

	// 3) notification, best effort; sent for record-only approvals too
	err = w.Backend.NotifyUserApproval(ctx, token, backend.ApprovalNotice{
		UserID:    userID,
		UserEmail: userEmail,
		PaymentID: paymentID,
		Message:   w.NotifyMessage,
	})
	if err != nil {
		log.Info("approval notification not sent", zap.Error(err))
	} else {
		res.Notified = true
	}

	if userID == "" {
		res.Outcome = OutcomeRecordOnly
	} else {
		res.Outcome = OutcomeApproved
	}
	rec.Outcome = res.Outcome
	rec.Notified = res.Notified
	w.finish(ctx, rec, start)
	log.Info("payment approved", zap.String("outcome", res.Outcome), zap.Bool("notified", res.Notified))
	return res, nil
}

// Reject marks a pending payment rejected. The user record is not touched.
func (w *Workflow) Reject(ctx context.Context, token string, req Request) (Result, error) {
	start := time.Now()
	res := Result{RunID: w.runID(), Status: req.CurrentStatus}
	rec := Record{
		RunID:     res.RunID,
		Action:    ActionReject,
		Actor:     req.Actor,
		PaymentID: req.PaymentID,
		UserID:    req.UserID,
		Status:    req.CurrentStatus,
	}

	paymentID := strings.TrimSpace(req.PaymentID)
	var refusal error
	switch {
	case paymentID == "":
		refusal = ErrMissingPaymentID
	case models.IsTerminalPaymentStatus(req.CurrentStatus):
		refusal = ErrNotPending
	}
	if refusal != nil {
		res.Outcome = OutcomeRefused
		rec.Outcome, rec.Err = OutcomeRefused, refusal
		w.finish(ctx, rec, start)
		return res, refusal
	}

	upd, err := w.Backend.UpdatePaymentStatus(ctx, token, paymentID, models.PaymentRejected)
	if err != nil {
		w.Log.Warn("could not reject payment",
			zap.String("run_id", res.RunID),
			zap.String("payment_id", paymentID),
			zap.Error(err))
		res.Outcome = OutcomeFailed
		rec.Outcome, rec.Err = OutcomeFailed, err
		w.finish(ctx, rec, start)
		return res, fmt.Errorf("%w: %w", ErrPaymentUpdate, err)
	}

	res.PaymentUpdated = true
	res.Status = models.PaymentRejected
	res.Payment = upd.Payment
	res.Outcome = OutcomeRejected
	rec.Status = models.PaymentRejected
	rec.Outcome = OutcomeRejected
	w.finish(ctx, rec, start)
	return res, nil
}

// Apply returns a copy of rows with the payment the result refers to set to
// its new status. Rows for other payments are unchanged.
func Apply(rows []models.Payment, paymentID string, res Result) []models.Payment {
	if !res.PaymentUpdated {
		return rows
	}
	out := make([]models.Payment, len(rows))
	copy(out, rows)
	for i := range out {
		if out[i].ID.String() == paymentID {
			out[i].Status = res.Status
		}
	}
	return out
}

// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/enrolldesk/internal/app/store/audit"
	"github.com/dalemusser/enrolldesk/internal/app/system/approval"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in and sign-out events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for console actions (approvals, rejections, deletes, settings).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via audit.Store) when a store is configured and to
// structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when no MongoDB is
// configured; "db" destinations are then skipped.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.PaymentID != "" {
		fields = append(fields, zap.String("payment_id", event.PaymentID))
	}
	if event.RunID != "" {
		fields = append(fields, zap.String("run_id", event.RunID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful token sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, role, name string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Actor:     name,
		ActorRole: role,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// LoginFailed logs a rejected sign-in.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, role, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		ActorRole:     role,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, role, name string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		Actor:     name,
		ActorRole: role,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Admin Events ---

// RecordApproval logs one approval or rejection run. It satisfies
// approval.Recorder.
func (l *Logger) RecordApproval(ctx context.Context, rec approval.Record) {
	if l == nil {
		return
	}
	ev := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: approvalEventType(rec),
		Actor:     rec.Actor,
		ActorRole: "admin",
		UserID:    rec.UserID,
		PaymentID: rec.PaymentID,
		RunID:     rec.RunID,
		Success:   rec.Err == nil,
		Details: map[string]string{
			"action":      rec.Action,
			"outcome":     rec.Outcome,
			"status":      rec.Status,
			"notified":    boolToString(rec.Notified),
			"duration_ms": strconv.FormatInt(rec.Duration.Milliseconds(), 10),
		},
	}
	if rec.Err != nil {
		ev.FailureReason = rec.Err.Error()
	}
	l.Log(ctx, ev)
}

func approvalEventType(rec approval.Record) string {
	if rec.Action == approval.ActionReject {
		if rec.Outcome == approval.OutcomeRejected {
			return audit.EventPaymentRejected
		}
		return audit.EventPaymentRejectFailed
	}
	switch rec.Outcome {
	case approval.OutcomeApproved, approval.OutcomeRecordOnly:
		return audit.EventPaymentApproved
	case approval.OutcomePartial:
		return audit.EventPaymentApprovalPartial
	case approval.OutcomeRefused:
		return audit.EventPaymentApprovalRefused
	}
	return audit.EventPaymentApprovalFailed
}

// UserDeleted logs a user delete request and its result.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actor, userID string, err error) {
	ev := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserDeleted,
		Actor:     actor,
		ActorRole: "admin",
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   err == nil,
	}
	if err != nil {
		ev.FailureReason = err.Error()
	}
	l.Log(ctx, ev)
}

// CourseDeleted logs a course delete request and its result.
func (l *Logger) CourseDeleted(ctx context.Context, r *http.Request, actor, courseID string, err error) {
	ev := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCourseDeleted,
		Actor:     actor,
		ActorRole: "admin",
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   err == nil,
		Details: map[string]string{
			"course_id": courseID,
		},
	}
	if err != nil {
		ev.FailureReason = err.Error()
	}
	l.Log(ctx, ev)
}

// SettingsUpdated logs a console settings change.
func (l *Logger) SettingsUpdated(ctx context.Context, r *http.Request, actor, fieldsChanged string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSettingsUpdated,
		Actor:     actor,
		ActorRole: "admin",
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"fields_changed": fieldsChanged,
		},
	})
}

// --- Helper functions ---

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

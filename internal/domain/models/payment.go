// internal/domain/models/payment.go
package models

import (
	"encoding/json"
	"strings"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentApproved  = "approved"
	PaymentCompleted = "completed"
	PaymentRejected  = "rejected"
)

// Payment is a payment record as listed by GET /api/admin/payments.
//
// The backend is inconsistent about the user id key; both userId and
// user_id are accepted.
type Payment struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"userId"`
	UserName  string    `json:"user_name,omitempty"`
	UserEmail string    `json:"userEmail,omitempty"`
	Amount    Amount    `json:"amount"`
	Method    string    `json:"method,omitempty"`
	Status    string    `json:"status"`
	CreatedAt Timestamp `json:"created_at"`
}

func (p *Payment) UnmarshalJSON(b []byte) error {
	type plain Payment
	aux := struct {
		*plain
		UserIDSnake ID `json:"user_id"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if p.UserID.IsZero() {
		p.UserID = aux.UserIDSnake
	}
	return nil
}

// EffectiveStatus returns the lowercased status, defaulting to pending when
// the backend omitted it.
func (p Payment) EffectiveStatus() string {
	s := strings.ToLower(strings.TrimSpace(p.Status))
	if s == "" {
		return PaymentPending
	}
	return s
}

// IsTerminalPaymentStatus reports whether a payment in status s can no longer
// be approved or rejected from the console.
func IsTerminalPaymentStatus(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", PaymentPending:
		return false
	}
	return true
}

// ValidApprovalStatus reports whether s may be sent as the "approved" status
// in step one of the approval workflow.
func ValidApprovalStatus(s string) bool {
	return s == PaymentCompleted || s == PaymentApproved
}

// internal/app/store/backend/payments.go
package backend

import (
	"context"
	"net/http"

	"github.com/dalemusser/enrolldesk/internal/domain/models"
)

// ListPayments fetches every payment record.
func (c *Client) ListPayments(ctx context.Context, token string) ([]models.Payment, error) {
	out := listOf[models.Payment]("payments")
	if err := c.do(ctx, token, http.MethodGet, "/api/admin/payments", "payments", nil, out); err != nil {
		return nil, err
	}
	return out.items, nil
}

// PaymentUpdate is the backend's answer to a payment status change. Payment
// is nil when the backend answered without echoing the record.
type PaymentUpdate struct {
	Payment *models.Payment `json:"payment"`
}

// UpdatePaymentStatus sets the status of one payment record.
func (c *Client) UpdatePaymentStatus(ctx context.Context, token, paymentID, status string) (PaymentUpdate, error) {
	var out PaymentUpdate
	err := c.do(ctx, token, http.MethodPut, "/api/admin/payments/"+seg(paymentID), "payments_update",
		statusBody{Status: status}, &out)
	if err != nil {
		return PaymentUpdate{}, err
	}
	return out, nil
}

// UpdateUserPaymentStatus sets the payment status carried on the user record,
// which is what unlocks the student's dashboard.
func (c *Client) UpdateUserPaymentStatus(ctx context.Context, token, userID, status string) error {
	return c.do(ctx, token, http.MethodPut, "/api/user-payment-approval/"+seg(userID), "user_payment_approval",
		statusBody{Status: status}, nil)
}

// ApprovalNotice is the body of POST /api/notify-user-approval.
type ApprovalNotice struct {
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	PaymentID string `json:"paymentId"`
	Message   string `json:"message"`
}

// NotifyUserApproval asks the backend to tell the user their payment was
// approved. The endpoint does not require a token.
func (c *Client) NotifyUserApproval(ctx context.Context, token string, n ApprovalNotice) error {
	return c.do(ctx, token, http.MethodPost, "/api/notify-user-approval", "notify_user_approval", n, nil)
}

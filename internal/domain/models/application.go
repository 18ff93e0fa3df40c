// internal/domain/models/application.go
package models

// Application statuses. The status doubles as the badge style class.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Application is an enrollment application as listed by
// GET /api/admin/applications.
type Application struct {
	ID        ID        `json:"id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	Track     string    `json:"track,omitempty"`
	Status    string    `json:"status"`
	CreatedAt Timestamp `json:"created_at"`
}

// ValidApplicationFilter reports whether s is an accepted status filter.
// The empty string and "all" mean no filter.
func ValidApplicationFilter(s string) bool {
	switch s {
	case "", "all", ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

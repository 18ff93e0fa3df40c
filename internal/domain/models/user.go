// internal/domain/models/user.go
package models

// User is the read-only projection of a registered user as listed by
// GET /api/admin/users.
type User struct {
	ID            ID        `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Country       string    `json:"country,omitempty"`
	EmailVerified Flag      `json:"email_verified"`
	CreatedAt     Timestamp `json:"created_at"`
}

// Registration is one entry of the dashboard's recent registrations list.
type Registration struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"created_at"`
}

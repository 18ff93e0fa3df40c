// internal/domain/models/dashboard.go
package models

// DashboardSummary is the payload of GET /api/admin/dashboard.
// Every field is optional; missing counters stay zero.
type DashboardSummary struct {
	TotalUsers           Count          `json:"totalUsers"`
	PendingApplications  Count          `json:"pendingApplications"`
	ApprovedApplications Count          `json:"approvedApplications"`
	TotalRevenue         Amount         `json:"totalRevenue"`
	RecentRegistrations  []Registration `json:"recentRegistrations"`
}

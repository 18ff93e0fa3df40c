// internal/app/store/backend/admin.go
package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/enrolldesk/internal/domain/models"
)

// Dashboard fetches the summary counters and recent registrations.
func (c *Client) Dashboard(ctx context.Context, token string) (models.DashboardSummary, error) {
	var out models.DashboardSummary
	if err := c.do(ctx, token, http.MethodGet, "/api/admin/dashboard", "dashboard", nil, &out); err != nil {
		return models.DashboardSummary{}, err
	}
	return out, nil
}

// ListUsers fetches all registered users.
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	out := listOf[models.User]("users")
	if err := c.do(ctx, token, http.MethodGet, "/api/admin/users", "users", nil, out); err != nil {
		return nil, err
	}
	return out.items, nil
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, token, userID string) error {
	return c.do(ctx, token, http.MethodDelete, "/api/admin/users/"+seg(userID), "users_delete", nil, nil)
}

// ListApplications fetches applications, optionally filtered by status.
// An empty status or "all" fetches every application.
func (c *Client) ListApplications(ctx context.Context, token, status string) ([]models.Application, error) {
	path := "/api/admin/applications"
	if status != "" && status != "all" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}
	out := listOf[models.Application]("applications")
	if err := c.do(ctx, token, http.MethodGet, path, "applications", nil, out); err != nil {
		return nil, err
	}
	return out.items, nil
}

// ListCourses fetches the course catalog.
func (c *Client) ListCourses(ctx context.Context, token string) ([]models.Course, error) {
	out := listOf[models.Course]("courses")
	if err := c.do(ctx, token, http.MethodGet, "/api/admin/courses", "courses", nil, out); err != nil {
		return nil, err
	}
	return out.items, nil
}

// DeleteCourse removes a course from the catalog.
func (c *Client) DeleteCourse(ctx context.Context, token, courseID string) error {
	return c.do(ctx, token, http.MethodDelete, "/api/admin/courses/"+seg(courseID), "courses_delete", nil, nil)
}

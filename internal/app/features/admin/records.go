// internal/app/features/admin/records.go
package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleDeleteUser removes a user through the backend.
// POST /admin/users/{id}/delete
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	u := operator(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.flash(w, r, auth.FlashError, "Missing user id")
		redirect(w, r, "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Backend.DeleteUser(ctx, u.Token, id)
	h.AuditLog.UserDeleted(ctx, r, u.Name, id, err)
	if err != nil {
		h.Log.Warn("delete user failed", zap.String("user_id", id), zap.Error(err))
		h.flash(w, r, auth.FlashError, "Could not delete user")
		redirect(w, r, "/admin/users")
		return
	}

	h.Loaders.Users.Invalidate(ctx, u.VisitID)
	h.Loaders.Summary.Invalidate(ctx, u.VisitID)
	h.flash(w, r, auth.FlashSuccess, "User deleted")
	redirect(w, r, "/admin/users")
}

// HandleDeleteCourse removes a course from the catalog.
// POST /admin/courses/{id}/delete
func (h *Handler) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	u := operator(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.flash(w, r, auth.FlashError, "Missing course id")
		redirect(w, r, "/admin/courses")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Backend.DeleteCourse(ctx, u.Token, id)
	h.AuditLog.CourseDeleted(ctx, r, u.Name, id, err)
	if err != nil {
		h.Log.Warn("delete course failed", zap.String("course_id", id), zap.Error(err))
		h.flash(w, r, auth.FlashError, "Could not delete course")
		redirect(w, r, "/admin/courses")
		return
	}

	h.Loaders.Courses.Invalidate(ctx, u.VisitID)
	h.flash(w, r, auth.FlashSuccess, "Course deleted")
	redirect(w, r, "/admin/courses")
}

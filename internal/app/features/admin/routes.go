// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /admin requires an admin session
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleAdmin))

		// SECTIONS
		pr.Get("/", h.ServeSection)
		pr.Get("/{section}", h.ServeSection)

		// PAYMENTS
		pr.Get("/payments/table", h.ServePaymentsTable)
		pr.Get("/payments/export.csv", h.ServeExportCSV)
		pr.Post("/payments/{id}/approve", h.HandleApprove)
		pr.Post("/payments/{id}/reject", h.HandleReject)

		// DELETE
		pr.Post("/users/{id}/delete", h.HandleDeleteUser)
		pr.Post("/courses/{id}/delete", h.HandleDeleteCourse)

		// SETTINGS
		pr.Post("/settings", h.HandleSettings)
	})

	return r
}

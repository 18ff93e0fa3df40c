// internal/app/features/student/routes.go
package student

import (
	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleStudent))

		pr.Get("/", h.ServeSection)
		pr.Get("/{section}", h.ServeSection)

		pr.Post("/activities/{slug}", h.HandleActivity)
		pr.Post("/lab/{action}", h.HandleLab)
		pr.Post("/library/{slug}", h.HandleResource)
	})

	return r
}

// internal/app/features/admin/routes.go
package admin

import (
	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
)

// Routes mounts the admin console.
// Typically: r.Mount("/api/admin", admin.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Get("/stats", h.ServeStats)
	r.Get("/users", h.ServeUsers)
	r.Post("/users/{id}/status", h.HandleUserStatus)
	r.Post("/ngos/{id}/verification", h.HandleNGOVerification)
	r.Post("/projects/{id}/approval", h.HandleProjectApproval)
	r.Get("/audit", h.ServeAudit)

	return r
}

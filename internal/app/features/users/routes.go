// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
)

// Routes mounts the user profile routes.
// Typically: r.Mount("/api/users", users.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/{id}", h.ServeProfile)
		pr.Patch("/{id}", h.HandleUpdateProfile)
		pr.Get("/{id}/points", h.ServePointHistory)
		pr.Get("/{id}/badges", h.ServeBadges)
	})

	return r
}

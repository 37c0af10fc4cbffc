// internal/app/features/ngos/routes.go
package ngos

import (
	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
)

// Routes mounts the NGO directory routes.
// Typically: r.Mount("/api/ngos", ngos.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Directory browsing is public.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeNGO)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/{id}/reviews", h.HandleReview)
		pr.Post("/{id}/follow", h.HandleFollow)
		pr.Delete("/{id}/follow", h.HandleUnfollow)
	})

	return r
}

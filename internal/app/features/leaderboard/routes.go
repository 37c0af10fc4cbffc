// internal/app/features/leaderboard/routes.go
package leaderboard

import "github.com/go-chi/chi/v5"

// Routes mounts the leaderboard routes. Rankings are public.
// Typically: r.Mount("/api/leaderboard", leaderboard.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeTop)
	r.Get("/rank/{id}", h.ServeRank)
	r.Get("/categories/{category}", h.ServeCategory)

	return r
}

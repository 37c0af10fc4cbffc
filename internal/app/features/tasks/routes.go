// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
)

// Routes mounts the per-task routes.
// Typically: r.Mount("/api/tasks", tasks.Routes(handler))
//
// Listing and creation live under the owning project; see the projects
// feature, which wires ServeProjectTasks and HandleCreate into
// /api/projects/{id}/tasks.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeMine)
	r.Get("/{id}", h.ServeTask)
	r.Patch("/{id}", h.HandleUpdate)

	r.Post("/{id}/assign", h.HandleAssign)
	r.Post("/{id}/status", h.HandleStatus)
	r.Post("/{id}/progress", h.HandleProgress)
	r.Post("/{id}/complete", h.HandleComplete)

	r.Post("/{id}/deliverables", h.HandleAddDeliverable)
	r.Post("/{id}/deliverables/{index}/complete", h.HandleCompleteDeliverable)

	return r
}

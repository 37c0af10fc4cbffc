// internal/app/features/projects/routes.go
package projects

import (
	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/features/tasks"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
)

// Routes mounts the project routes, including the project-scoped task
// collection. Typically: r.Mount("/api/projects", projects.Routes(h, th))
func Routes(h *Handler, th *tasks.Handler) chi.Router {
	r := chi.NewRouter()

	// Browsing is public.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeProject)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)

		pr.Post("/{id}/apply", h.HandleApply)
		pr.Post("/{id}/volunteers/{userID}/status", h.HandleVolunteerStatus)
		pr.Post("/{id}/volunteers/{userID}/hours", h.HandleVolunteerHours)

		pr.Post("/{id}/milestones", h.HandleAddMilestone)
		pr.Post("/{id}/milestones/{index}/status", h.HandleMilestoneStatus)

		pr.Get("/{id}/tasks", th.ServeProjectTasks)
		pr.Post("/{id}/tasks", th.HandleCreate)
	})

	return r
}

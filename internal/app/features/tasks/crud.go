// internal/app/features/tasks/crud.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	taskstore "github.com/volunteerhub/volunteerhub/internal/app/store/tasks"
	"github.com/volunteerhub/volunteerhub/internal/app/system/htmlsanitize"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	BasePoints  int       `json:"base_points"`
	BonusPoints int       `json:"bonus_points"`
	StartDate   time.Time `json:"start_date"`
	DueDate     time.Time `json:"due_date"`
}

// HandleCreate handles POST /api/projects/{id}/tasks. Tasks are created
// by managers of the owning project and start in pending state.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		respond.Fail(w, http.StatusBadRequest, "title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.canManage(ctx, r, projectID) {
		respond.Fail(w, http.StatusForbidden, "not a manager of this project")
		return
	}

	created, err := h.Tasks.Create(ctx, models.Task{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Points: models.TaskPoints{
			Base:  req.BasePoints,
			Bonus: req.BonusPoints,
		},
		Timeline: models.TaskTimeline{
			StartDate: req.StartDate,
			DueDate:   req.DueDate,
		},
	})
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.Created(w, created)
}

// ServeProjectTasks handles GET /api/projects/{id}/tasks.
func (h *Handler) ServeProjectTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Tasks.ListByProject(ctx, projectID, query.Get(r, "status"))
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, map[string]any{"tasks": rows})
}

// ServeMine handles GET /api/tasks: the session user's assignments,
// due-date order.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Tasks.ListByAssignee(ctx, userID, query.Get(r, "status"))
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, map[string]any{"tasks": rows})
}

// ServeTask handles GET /api/tasks/{id}.
func (h *Handler) ServeTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid task id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, t)
}

type updateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	BasePoints  *int       `json:"base_points"`
	BonusPoints *int       `json:"bonus_points"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
}

// HandleUpdate handles PATCH /api/tasks/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if !h.canManage(ctx, r, t.ProjectID) {
		respond.Fail(w, http.StatusForbidden, "not a manager of this project")
		return
	}

	if req.Description != nil {
		clean := htmlsanitize.Sanitize(*req.Description)
		req.Description = &clean
	}

	updated, err := h.Tasks.UpdateDetails(ctx, id, taskstore.DetailUpdate{
		Title:       req.Title,
		Description: req.Description,
		BasePoints:  req.BasePoints,
		BonusPoints: req.BonusPoints,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, updated)
}

// internal/app/features/projects/milestones.go
package projects

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
)

type milestoneRequest struct {
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

// HandleAddMilestone handles POST /api/projects/{id}/milestones.
func (h *Handler) HandleAddMilestone(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req milestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respond.Fail(w, http.StatusBadRequest, "milestone title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if !h.canManage(ctx, r, p) {
		respond.Fail(w, http.StatusForbidden, "not a manager of this project")
		return
	}

	updated, err := h.Projects.AddMilestone(ctx, id, models.Milestone{
		Title:   strings.TrimSpace(req.Title),
		DueDate: req.DueDate,
	})
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.Created(w, updated)
}

type milestoneStatusRequest struct {
	Status string `json:"status"`
}

// HandleMilestoneStatus handles
// POST /api/projects/{id}/milestones/{index}/status.
func (h *Handler) HandleMilestoneStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respond.Fail(w, http.StatusBadRequest, "invalid milestone index")
		return
	}

	var req milestoneStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if !h.canManage(ctx, r, p) {
		respond.Fail(w, http.StatusForbidden, "not a manager of this project")
		return
	}

	updated, err := h.Projects.SetMilestoneStatus(ctx, id, index, req.Status)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, updated)
}

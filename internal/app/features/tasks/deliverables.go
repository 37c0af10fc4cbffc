// internal/app/features/tasks/deliverables.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
)

type deliverableRequest struct {
	Title string `json:"title"`
}

// HandleAddDeliverable handles POST /api/tasks/{id}/deliverables.
func (h *Handler) HandleAddDeliverable(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req deliverableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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

	updated, err := h.Tasks.AddDeliverable(ctx, id, strings.TrimSpace(req.Title))
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.Created(w, updated)
}

// HandleCompleteDeliverable handles
// POST /api/tasks/{id}/deliverables/{index}/complete. Completing the
// last open deliverable promotes the task to completed and credits the
// assignee the same way the complete endpoint does.
func (h *Handler) HandleCompleteDeliverable(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid task id")
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respond.Fail(w, http.StatusBadRequest, "invalid deliverable index")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if !h.canManage(ctx, r, t.ProjectID) && !isAssignee(r, t) {
		respond.Fail(w, http.StatusForbidden, "not a manager or assignee of this task")
		return
	}

	wasCompleted := t.Status == models.TaskCompleted

	updated, err := h.Tasks.CompleteDeliverable(ctx, id, index)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if updated.Status == models.TaskCompleted && !wasCompleted && updated.AssignedTo != nil {
		h.creditCompletion(ctx, updated, updated.ActualHours)
	}
	respond.OK(w, updated)
}

// internal/app/features/tasks/lifecycle.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/volunteerhub/volunteerhub/internal/app/store/audit"
	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"github.com/volunteerhub/volunteerhub/internal/app/system/mailer"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type assignRequest struct {
	UserID string `json:"user_id"`
}

// HandleAssign handles POST /api/tasks/{id}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
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
	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	updated, err := h.Tasks.Assign(ctx, id, userID)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, updated)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleStatus handles POST /api/tasks/{id}/status for the start, hold,
// and cancel moves. Completion has its own endpoint because it credits
// points.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req statusRequest
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
	if !h.canManage(ctx, r, t.ProjectID) && !isAssignee(r, t) {
		respond.Fail(w, http.StatusForbidden, "not a manager or assignee of this task")
		return
	}

	var updated models.Task
	switch req.Status {
	case models.TaskInProgress:
		updated, err = h.Tasks.Start(ctx, id)
	case models.TaskOnHold:
		updated, err = h.Tasks.Hold(ctx, id)
	case models.TaskCancelled:
		updated, err = h.Tasks.Cancel(ctx, id)
	default:
		respond.Fail(w, http.StatusBadRequest, "status must be in-progress, on-hold, or cancelled")
		return
	}
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, updated)
}

type progressRequest struct {
	Percentage  int      `json:"percentage"`
	Message     string   `json:"message"`
	Attachments []string `json:"attachments"`
}

// HandleProgress handles POST /api/tasks/{id}/progress. A report that
// reaches 100% completes the task and credits the assignee the same way
// the complete endpoint does.
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid task id")
		return
	}
	authorID, ok := sessionUserID(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req progressRequest
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
	if !h.canManage(ctx, r, t.ProjectID) && !isAssignee(r, t) {
		respond.Fail(w, http.StatusForbidden, "not a manager or assignee of this task")
		return
	}

	wasCompleted := t.Status == models.TaskCompleted

	updated, err := h.Tasks.ApplyProgress(ctx, id, req.Percentage, req.Message, authorID, req.Attachments)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if updated.Status == models.TaskCompleted && !wasCompleted && updated.AssignedTo != nil {
		h.creditCompletion(ctx, updated, updated.ActualHours)
	}
	respond.OK(w, updated)
}

type completeRequest struct {
	ActualHours float64 `json:"actual_hours"`
}

type completeResponse struct {
	Task      models.Task `json:"task"`
	Points    int         `json:"points_awarded"`
	NewBadges []string    `json:"new_badges,omitempty"`
}

// HandleComplete handles POST /api/tasks/{id}/complete. The task
// document is committed first; points, statistics, and the notification
// follow and never undo the completion when they fail.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req completeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // hours are optional
	}
	if req.ActualHours < 0 {
		respond.Fail(w, http.StatusBadRequest, "actual hours must be non-negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
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

	alreadyCompleted := t.Status == models.TaskCompleted

	completed, err := h.Tasks.Complete(ctx, id, req.ActualHours)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	resp := completeResponse{Task: completed}
	if completed.AssignedTo != nil && !alreadyCompleted {
		resp.Points, resp.NewBadges = h.creditCompletion(ctx, completed, req.ActualHours)
	}
	respond.OK(w, resp)
}

// creditCompletion awards the task points and bumps the assignee's
// statistics after the task document is committed. A failed credit is
// recorded in the audit trail; the completed task stands either way.
func (h *Handler) creditCompletion(ctx context.Context, t models.Task, hours float64) (int, []string) {
	assignee := *t.AssignedTo

	user, newBadges, err := h.Users.AddPoints(ctx, assignee, t.Points.Total, CompletionReason, &t.ProjectID)
	if err != nil {
		h.Log.Error("task completion credit failed",
			zap.String("task_id", t.ID.Hex()),
			zap.String("user_id", assignee.Hex()),
			zap.Error(err))
		h.AuditLog.Workflow(ctx, audit.EventPointsCreditFailed, assignee, false, map[string]string{
			"task_id": t.ID.Hex(),
			"reason":  CompletionReason,
		})
		return 0, nil
	}

	if err := h.Users.IncrementStats(ctx, assignee, userstore.StatsDelta{
		TasksCompleted:   1,
		HoursVolunteered: hours,
	}); err != nil {
		h.Log.Error("task completion stats update failed",
			zap.String("task_id", t.ID.Hex()),
			zap.String("user_id", assignee.Hex()),
			zap.Error(err))
	}

	h.AuditLog.Workflow(ctx, audit.EventTaskCompleted, assignee, true, map[string]string{
		"task_id": t.ID.Hex(),
		"points":  strconv.Itoa(t.Points.Total),
	})

	msg := mailer.BuildTaskCompletedEmail(mailer.TaskCompletedEmailData{
		SiteName:  h.Mail.SiteName(),
		UserName:  user.FullName,
		TaskTitle: t.Title,
		Points:    t.Points.Total,
		NewBadges: newBadges,
	})
	msg.To = user.Email
	msg.ToName = user.FullName
	h.Mail.SendBestEffort(msg)

	return t.Points.Total, newBadges
}

// internal/app/features/projects/roster.go
package projects

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/store/audit"
	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"github.com/volunteerhub/volunteerhub/internal/app/system/mailer"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type applyRequest struct {
	Role string `json:"role"`
}

// HandleApply handles POST /api/projects/{id}/apply. The session user
// joins the roster as an applicant.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}
	userID, ok := sessionUserID(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req applyRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // role is optional
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if p.Status != models.ProjectActive && p.Status != models.ProjectApproved {
		respond.Fail(w, http.StatusUnprocessableEntity, "project is not accepting applications")
		return
	}

	updated, err := h.Projects.Apply(ctx, id, userID, req.Role)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.Created(w, updated)
}

type volunteerStatusRequest struct {
	Status string `json:"status"`
}

// HandleVolunteerStatus handles
// POST /api/projects/{id}/volunteers/{userID}/status. Accepting an
// application credits the acceptance bonus and notifies the volunteer;
// both side effects run after the roster change is committed and never
// undo it.
func (h *Handler) HandleVolunteerStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}
	volunteerID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid volunteer id")
		return
	}

	var req volunteerStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
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

	wasAccepted := false
	wasCompleted := false
	if entry := p.VolunteerEntry(volunteerID); entry != nil {
		wasAccepted = entry.Status == models.RosterAccepted
		wasCompleted = entry.Status == models.RosterCompleted
	}

	updated, err := h.Projects.UpdateVolunteerStatus(ctx, id, volunteerID, req.Status)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	entry := updated.VolunteerEntry(volunteerID)
	if entry != nil && entry.Status == models.RosterAccepted && !wasAccepted {
		h.creditAcceptance(ctx, updated, volunteerID)
	}
	if entry != nil && entry.Status == models.RosterCompleted && !wasCompleted {
		h.creditProjectCompletion(ctx, updated, volunteerID, entry.HoursContributed)
	}

	respond.OK(w, updated)
}

// creditAcceptance applies the acceptance bonus and sends the
// notification email. The roster change has already been committed, so
// failures here are recorded in the audit trail instead of surfacing.
func (h *Handler) creditAcceptance(ctx context.Context, p models.Project, volunteerID primitive.ObjectID) {
	user, _, err := h.Users.AddPoints(ctx, volunteerID, AcceptanceBonus, AcceptanceReason, &p.ID)
	if err != nil {
		h.Log.Error("acceptance bonus credit failed",
			zap.String("project_id", p.ID.Hex()),
			zap.String("user_id", volunteerID.Hex()),
			zap.Error(err))
		h.AuditLog.Workflow(ctx, audit.EventPointsCreditFailed, volunteerID, false, map[string]string{
			"project_id": p.ID.Hex(),
			"reason":     AcceptanceReason,
		})
		return
	}

	h.AuditLog.Workflow(ctx, audit.EventVolunteerAccepted, volunteerID, true, map[string]string{
		"project_id": p.ID.Hex(),
	})

	msg := mailer.BuildAcceptanceEmail(mailer.AcceptanceEmailData{
		SiteName:     h.Mail.SiteName(),
		UserName:     user.FullName,
		ProjectTitle: p.Title,
		BonusPoints:  AcceptanceBonus,
	})
	msg.To = user.Email
	msg.ToName = user.FullName
	h.Mail.SendBestEffort(msg)
}

// creditProjectCompletion bumps the volunteer's projects-completed
// counter and rolls their logged roster hours into hours_volunteered
// once their entry reaches completed. The roster change has already
// been committed; a failure here is logged and does not undo it.
func (h *Handler) creditProjectCompletion(ctx context.Context, p models.Project, volunteerID primitive.ObjectID, hours float64) {
	if err := h.Users.IncrementStats(ctx, volunteerID, userstore.StatsDelta{
		ProjectsCompleted: 1,
		HoursVolunteered:  hours,
	}); err != nil {
		h.Log.Error("project completion stats update failed",
			zap.String("project_id", p.ID.Hex()),
			zap.String("user_id", volunteerID.Hex()),
			zap.Error(err))
	}
}

type hoursRequest struct {
	Hours float64 `json:"hours"`
}

// HandleVolunteerHours handles
// POST /api/projects/{id}/volunteers/{userID}/hours.
func (h *Handler) HandleVolunteerHours(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}
	volunteerID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid volunteer id")
		return
	}

	var req hoursRequest
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

	updated, err := h.Projects.AddVolunteerHours(ctx, id, volunteerID, req.Hours)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, updated)
}

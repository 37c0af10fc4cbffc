// internal/app/features/admin/decisions.go
package admin

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/volunteerhub/volunteerhub/internal/app/store/audit"
	"github.com/volunteerhub/volunteerhub/internal/app/system/mailer"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.uber.org/zap"
)

type userStatusRequest struct {
	Status string `json:"status"`
}

// HandleUserStatus handles POST /api/admin/users/{id}/status: enable or
// disable an account.
func (h *Handler) HandleUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req userStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Status != models.StatusActive && req.Status != models.StatusDisabled {
		respond.Fail(w, http.StatusBadRequest, "status must be active or disabled")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetStatus(ctx, id, req.Status); err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	event := audit.EventUserDisabled
	if req.Status == models.StatusActive {
		event = audit.EventUserEnabled
	}
	h.AuditLog.AdminAction(ctx, r, event, actorID(r), &id, nil)

	respond.OK(w, map[string]string{"status": req.Status})
}

type verificationRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// HandleNGOVerification handles POST /api/admin/ngos/{id}/verification.
// The decision is committed first; the owner notification is best
// effort.
func (h *Handler) HandleNGOVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid ngo id")
		return
	}

	var req verificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ngo, err := h.NGOs.UpdateVerification(ctx, id, req.Status, req.Note)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventNGOVerification, actorID(r), nil, map[string]string{
		"ngo_id": ngo.ID.Hex(),
		"status": ngo.Verification.Status,
	})

	if ngo.Verification.Status == models.VerificationVerified ||
		ngo.Verification.Status == models.VerificationRejected {
		h.notifyOwner(ctx, ngo)
	}

	respond.OK(w, ngo)
}

// notifyOwner emails the NGO owner about a verification decision.
func (h *Handler) notifyOwner(ctx context.Context, ngo models.NGO) {
	owner, err := h.Users.GetByID(ctx, ngo.OwnerID)
	if err != nil {
		h.Log.Warn("verification email skipped, owner lookup failed",
			zap.String("ngo_id", ngo.ID.Hex()),
			zap.Error(err))
		return
	}

	msg := mailer.BuildVerificationEmail(mailer.VerificationEmailData{
		SiteName:  h.Mail.SiteName(),
		NGOName:   ngo.Name,
		Verified:  ngo.Verification.Status == models.VerificationVerified,
		Reference: ngo.Verification.Reference,
		Note:      ngo.Verification.Note,
	})
	msg.To = owner.Email
	msg.ToName = owner.FullName
	h.Mail.SendBestEffort(msg)
}

type approvalRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// HandleProjectApproval handles POST /api/admin/projects/{id}/approval
// for projects in pending-approval state.
func (h *Handler) HandleProjectApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	status := models.ProjectRejected
	if req.Approve {
		status = models.ProjectApproved
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Projects.SetStatus(ctx, id, status)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventProjectApproval, actorID(r), nil, map[string]string{
		"project_id": p.ID.Hex(),
		"status":     p.Status,
		"note":       req.Note,
	})

	respond.OK(w, p)
}

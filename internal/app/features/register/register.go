// internal/app/features/register/register.go
package register

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/volunteerhub/volunteerhub/internal/app/store/audit"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auditlog"
	"github.com/volunteerhub/volunteerhub/internal/app/system/htmlsanitize"
	"github.com/volunteerhub/volunteerhub/internal/app/system/inputval"
	"github.com/volunteerhub/volunteerhub/internal/app/system/normalize"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLen is the minimum accepted password length.
const minPasswordLen = 8

// organizationRequest is the NGO profile submitted alongside an
// ngo-role registration.
type organizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Website     string `json:"website"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

type registerRequest struct {
	FullName     string               `json:"full_name"`
	Email        string               `json:"email"`
	Password     string               `json:"password"`
	Role         string               `json:"role"`
	Organization *organizationRequest `json:"organization,omitempty"`
}

type registerResponse struct {
	User models.User `json:"user"`
	NGO  *models.NGO `json:"ngo,omitempty"`
}

// HandleRegister creates a volunteer or NGO account. NGO registrations
// also create the organization document, which starts in pending
// verification until an admin reviews it.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	role := normalize.Role(req.Role)
	if role != models.RoleVolunteer && role != models.RoleNGO {
		respond.Fail(w, http.StatusBadRequest, "role must be volunteer or ngo")
		return
	}
	if normalize.Name(req.FullName) == "" {
		respond.Fail(w, http.StatusBadRequest, "full name is required")
		return
	}
	if !inputval.IsValidEmail(req.Email) {
		respond.Fail(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLen {
		respond.Fail(w, http.StatusBadRequest,
			fmt.Sprintf("password must be at least %d characters", minPasswordLen))
		return
	}
	if role == models.RoleNGO {
		if req.Organization == nil || normalize.Name(req.Organization.Name) == "" {
			respond.Fail(w, http.StatusBadRequest, "organization name is required for ngo accounts")
			return
		}
		if normalize.Category(req.Organization.Category) == "" {
			respond.Fail(w, http.StatusBadRequest, "organization category is required")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	user, err := h.Users.Create(ctx, models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: string(hash),
		Role:     role,
	})
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	resp := registerResponse{User: user}

	if role == models.RoleNGO {
		ngo, err := h.NGOs.Create(ctx, models.NGO{
			Name:        req.Organization.Name,
			Description: htmlsanitize.Sanitize(req.Organization.Description),
			Category:    req.Organization.Category,
			Website:     req.Organization.Website,
			City:        req.Organization.City,
			Country:     req.Organization.Country,
			OwnerID:     user.ID,
		})
		if err != nil {
			respond.Error(w, err, h.Log)
			return
		}
		if err := h.Users.SetNGO(ctx, user.ID, ngo.ID); err != nil {
			respond.Error(w, err, h.Log)
			return
		}
		user.NGOID = &ngo.ID
		resp.User = user
		resp.NGO = &ngo

		h.AuditLog.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventNGORegistered,
			UserID:    &user.ID,
			IP:        auditlog.ClientIP(r),
			Success:   true,
		})
	} else {
		h.AuditLog.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventUserRegistered,
			UserID:    &user.ID,
			IP:        auditlog.ClientIP(r),
			Success:   true,
		})
	}

	resp.User.Password = ""
	respond.Created(w, resp)
}

// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"net/http"

	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"github.com/volunteerhub/volunteerhub/internal/app/store/audit"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auditlog"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves session sign-in.
type Handler struct {
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		AuditLog: auditLog,
		Users:    userstore.New(db),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and opens a session. All failure modes
// return the same 401 so the response does not reveal whether the
// account exists; the audit trail records the precise reason.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.AuditLog.LoginFailure(ctx, r, audit.EventLoginFailedUserNotFound, req.Email)
			respond.Fail(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respond.Error(w, err, h.Log)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		h.AuditLog.LoginFailure(ctx, r, audit.EventLoginFailedWrongPassword, user.Email)
		respond.Fail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if user.Status != models.StatusActive {
		h.AuditLog.LoginFailure(ctx, r, audit.EventLoginFailedUserDisabled, user.Email)
		respond.Fail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	su := &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  user.Role,
	}
	if err := auth.SignIn(w, r, su); err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, user.ID)
	user.Password = ""
	respond.OK(w, map[string]any{"user": user})
}

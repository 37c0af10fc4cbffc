// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/volunteerhub/volunteerhub/internal/app/store/audit"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auditlog"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves session sign-out.
type Handler struct {
	Log      *zap.Logger
	AuditLog *auditlog.Logger
}

func NewHandler(auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, AuditLog: auditLog}
}

// HandleLogout clears the session. Signing out an anonymous session is a
// no-op that still returns 200.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.CurrentUser(r); ok {
		if id, err := primitive.ObjectIDFromHex(user.ID); err == nil {
			h.AuditLog.Log(r.Context(), audit.Event{
				Category:  audit.CategoryAuth,
				EventType: audit.EventLogout,
				UserID:    &id,
				IP:        auditlog.ClientIP(r),
				Success:   true,
			})
		}
	}

	if err := auth.SignOut(w, r); err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, map[string]string{"status": "signed out"})
}

// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	ngostore "github.com/volunteerhub/volunteerhub/internal/app/store/ngos"
	projectstore "github.com/volunteerhub/volunteerhub/internal/app/store/projects"
	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auditlog"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/app/system/mailer"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AcceptanceBonus is credited when a volunteer's application is accepted.
const AcceptanceBonus = 50

// AcceptanceReason is the ledger reason for the acceptance bonus.
const AcceptanceReason = "Project application accepted"

// Handler serves project CRUD, the volunteer roster, and milestones.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Mail     *mailer.Mailer
	Projects *projectstore.Store
	NGOs     *ngostore.Store
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, mail *mailer.Mailer, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Mail:     mail,
		Projects: projectstore.New(db),
		NGOs:     ngostore.New(db),
		Users:    userstore.New(db),
	}
}

// projectID parses the {id} route parameter.
func projectID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// sessionUserID extracts the session user's ObjectID.
func sessionUserID(r *http.Request) (primitive.ObjectID, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	return id, err == nil
}

// canManage reports whether the session user may manage the project:
// admins always, ngo users only for projects of the NGO they own.
func (h *Handler) canManage(ctx context.Context, r *http.Request, p models.Project) bool {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	if su.Role == models.RoleAdmin {
		return true
	}
	if su.Role != models.RoleNGO {
		return false
	}
	ownerID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return false
	}
	ngo, err := h.NGOs.GetByOwner(ctx, ownerID)
	if err != nil {
		return false
	}
	return ngo.ID == p.NGOID
}

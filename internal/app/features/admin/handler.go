// internal/app/features/admin/handler.go
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/store/audit"
	ngostore "github.com/volunteerhub/volunteerhub/internal/app/store/ngos"
	projectstore "github.com/volunteerhub/volunteerhub/internal/app/store/projects"
	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auditlog"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin console: platform stats, user management,
// NGO verification, project approval, and the audit trail.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Mail     *mailer.Mailer
	Users    *userstore.Store
	NGOs     *ngostore.Store
	Projects *projectstore.Store
	Audit    *audit.Store
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, mail *mailer.Mailer, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: auditLog,
		Mail:     mail,
		Users:    userstore.New(db),
		NGOs:     ngostore.New(db),
		Projects: projectstore.New(db),
		Audit:    audit.New(db),
	}
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// actorID extracts the admin's ObjectID from the session.
func actorID(r *http.Request) primitive.ObjectID {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

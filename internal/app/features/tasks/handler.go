// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	ngostore "github.com/volunteerhub/volunteerhub/internal/app/store/ngos"
	projectstore "github.com/volunteerhub/volunteerhub/internal/app/store/projects"
	taskstore "github.com/volunteerhub/volunteerhub/internal/app/store/tasks"
	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auditlog"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/app/system/mailer"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CompletionReason is the ledger reason written when task points are
// credited.
const CompletionReason = "Task completed"

// Handler serves task CRUD, the task lifecycle, and deliverables.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Mail     *mailer.Mailer
	Tasks    *taskstore.Store
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
		Tasks:    taskstore.New(db),
		Projects: projectstore.New(db),
		NGOs:     ngostore.New(db),
		Users:    userstore.New(db),
	}
}

// taskID parses the {id} route parameter.
func taskID(r *http.Request) (primitive.ObjectID, bool) {
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

// canManage reports whether the session user may manage tasks of the
// given project: admins always, ngo users only for projects of the NGO
// they own.
func (h *Handler) canManage(ctx context.Context, r *http.Request, projectID primitive.ObjectID) bool {
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
	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		return false
	}
	ngo, err := h.NGOs.GetByOwner(ctx, ownerID)
	if err != nil {
		return false
	}
	return ngo.ID == p.NGOID
}

// isAssignee reports whether the session user is assigned to the task.
func isAssignee(r *http.Request, t models.Task) bool {
	id, ok := sessionUserID(r)
	if !ok || t.AssignedTo == nil {
		return false
	}
	return *t.AssignedTo == id
}

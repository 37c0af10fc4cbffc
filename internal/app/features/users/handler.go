// internal/app/features/users/handler.go
package users

import (
	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves user profiles, point history, and badges.
type Handler struct {
	Log   *zap.Logger
	Users *userstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:   logger,
		Users: userstore.New(db),
	}
}

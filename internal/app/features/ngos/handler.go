// internal/app/features/ngos/handler.go
package ngos

import (
	ngostore "github.com/volunteerhub/volunteerhub/internal/app/store/ngos"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public NGO directory plus reviews and follows.
type Handler struct {
	Log  *zap.Logger
	NGOs *ngostore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:  logger,
		NGOs: ngostore.New(db),
	}
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin promotes the configured account to admin, creating it if
// it does not exist yet. A created account has no password; the owner
// registers normally once and keeps the admin role, or sets the password
// out of band.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := deps.MongoDatabase.Collection("users")
	folded := text.Fold(email)

	var existing models.User
	err := users.FindOne(ctx, bson.M{"email": folded}).Decode(&existing)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return nil
		}
		_, err = users.UpdateByID(ctx, existing.ID, bson.M{"$set": bson.M{
			"role":       models.RoleAdmin,
			"updated_at": time.Now().UTC(),
		}})
		if err != nil {
			return err
		}
		logger.Info("promoted existing user to admin", zap.String("email", folded))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		now := time.Now().UTC()
		_, err = users.InsertOne(ctx, models.User{
			ID:           primitive.NewObjectID(),
			FullName:     "Platform Admin",
			FullNameCI:   text.Fold("Platform Admin"),
			Email:        folded,
			Role:         models.RoleAdmin,
			Status:       models.StatusActive,
			StatsVisible: false,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		logger.Info("created admin account", zap.String("email", folded))
		return nil

	default:
		return err
	}
}

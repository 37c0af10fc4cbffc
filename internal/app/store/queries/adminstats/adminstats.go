// Package adminstats provides the read-only aggregate counts behind the
// admin console dashboard.
package adminstats

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	UsersByRole        map[string]int64 `json:"users_by_role"`
	UsersByStatus      map[string]int64 `json:"users_by_status"`
	NGOsByVerification map[string]int64 `json:"ngos_by_verification"`
	ProjectsByStatus   map[string]int64 `json:"projects_by_status"`
	TasksByStatus      map[string]int64 `json:"tasks_by_status"`
	PointsAwarded      int64            `json:"points_awarded"`
	HoursVolunteered   float64          `json:"hours_volunteered"`
}

// Collect gathers all dashboard counts.
func Collect(ctx context.Context, db *mongo.Database) (PlatformStats, error) {
	stats := PlatformStats{}
	var err error

	if stats.UsersByRole, err = countBy(ctx, db, "users", "$role"); err != nil {
		return stats, err
	}
	if stats.UsersByStatus, err = countBy(ctx, db, "users", "$status"); err != nil {
		return stats, err
	}
	if stats.NGOsByVerification, err = countBy(ctx, db, "ngos", "$verification.status"); err != nil {
		return stats, err
	}
	if stats.ProjectsByStatus, err = countBy(ctx, db, "projects", "$status"); err != nil {
		return stats, err
	}
	if stats.TasksByStatus, err = countBy(ctx, db, "tasks", "$status"); err != nil {
		return stats, err
	}

	stats.PointsAwarded, stats.HoursVolunteered, err = totals(ctx, db)
	return stats, err
}

// countBy groups a collection on a field expression and counts each group.
func countBy(ctx context.Context, db *mongo.Database, collection, groupExpr string) (map[string]int64, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   groupExpr,
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := db.Collection(collection).Aggregate(ctx, pipe)
	if err != nil {
		return nil, fmt.Errorf("count %s by %s: %w", collection, groupExpr, err)
	}
	defer cur.Close(ctx)

	out := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.Count
	}
	return out, cur.Err()
}

// totals sums lifetime points and volunteered hours across all users.
func totals(ctx context.Context, db *mongo.Database) (int64, float64, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"points": bson.M{"$sum": "$points.total"},
			"hours":  bson.M{"$sum": "$statistics.hours_volunteered"},
		}}},
	}

	cur, err := db.Collection("users").Aggregate(ctx, pipe)
	if err != nil {
		return 0, 0, fmt.Errorf("platform totals: %w", err)
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row struct {
			Points int64   `bson:"points"`
			Hours  float64 `bson:"hours"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, 0, err
		}
		return row.Points, row.Hours, nil
	}
	return 0, 0, cur.Err()
}

// Package indexes reconciles the MongoDB indexes the app relies on.
// EnsureAll is called at startup; every ensure* function is idempotent
// and errors are aggregated so startup can fail fast with the full list.
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureAll creates all required indexes.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureNGOs(ctx, db); err != nil {
		problems = append(problems, "ngos: "+err.Error())
	}
	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// createSet creates the given indexes, tolerating "already exists" style
// conflicts so repeated startups are clean.
func createSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil && isConflictErr(err) {
		return nil
	}
	return err
}

// Mongo/DocDB returns IndexOptionsConflict or IndexKeySpecsConflict when
// an equivalent index already exists under a different name.
func isConflictErr(err error) bool {
	s := err.Error()
	return strings.Contains(s, "IndexOptionsConflict") ||
		strings.Contains(s, "IndexKeySpecsConflict")
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return createSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("role_status"),
		},
		// Leaderboard sorts
		{
			Keys:    bson.D{{Key: "points.total", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("points_total_desc"),
		},
		{
			Keys:    bson.D{{Key: "statistics.projects_completed", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("projects_completed_desc"),
		},
		{
			Keys:    bson.D{{Key: "statistics.hours_volunteered", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("hours_volunteered_desc"),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("full_name_ci"),
		},
	})
}

func ensureNGOs(ctx context.Context, db *mongo.Database) error {
	return createSet(ctx, db.Collection("ngos"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("name_ci"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("uniq_owner").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "verification.status", Value: 1}},
			Options: options.Index().SetName("verification_status"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category"),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	return createSet(ctx, db.Collection("projects"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ngo_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("ngo_status"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}},
			Options: options.Index().SetName("status_category"),
		},
		{
			Keys:    bson.D{{Key: "volunteers.user_id", Value: 1}},
			Options: options.Index().SetName("volunteer_user"),
		},
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}},
			Options: options.Index().SetName("title_ci"),
		},
	})
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	return createSet(ctx, db.Collection("tasks"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("project_status"),
		},
		{
			Keys:    bson.D{{Key: "assigned_to", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("assignee_status"),
		},
		{
			Keys:    bson.D{{Key: "timeline.due_date", Value: 1}},
			Options: options.Index().SetName("due_date"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return createSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("category_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("user_timestamp"),
		},
	})
}

// Package leaderboard provides the read-only ranking queries. Only
// active users who have left their statistics visible participate;
// disabled or private accounts never appear and never affect another
// user's rank.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"github.com/volunteerhub/volunteerhub/internal/domain/rank"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// metricField maps a metric name to its document field.
var metricField = map[string]string{
	rank.MetricPoints:   "points.total",
	rank.MetricProjects: "statistics.projects_completed",
	rank.MetricHours:    "statistics.hours_volunteered",
}

// visibleMatch matches the users who participate in rankings.
func visibleMatch() bson.M {
	return bson.M{
		"status":        models.StatusActive,
		"stats_visible": true,
	}
}

// Entry is one leaderboard row.
type Entry struct {
	UserID   primitive.ObjectID `bson:"_id" json:"user_id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Value    float64            `bson:"value" json:"value"`
	Badges   int                `bson:"badges" json:"badges"`
}

// TopN returns the best n users by metric, descending, ties broken by
// _id so pagination is stable. A non-zero since/until window is honored
// for the points metric only: the value becomes the sum of ledger
// entries inside the window instead of the lifetime total.
func TopN(ctx context.Context, db *mongo.Database, metric string, n int, since, until time.Time) ([]Entry, error) {
	field, ok := metricField[metric]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard metric %q", metric)
	}

	var valueExpr any = "$" + field
	if metric == rank.MetricPoints && (!since.IsZero() || !until.IsZero()) {
		valueExpr = windowedPointsExpr(since, until)
	}

	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: visibleMatch()}},
		bson.D{{Key: "$addFields", Value: bson.M{"value": valueExpr}}},
		bson.D{{Key: "$match", Value: bson.M{"value": bson.M{"$gt": 0}}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "value", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$limit", Value: n}},
		bson.D{{Key: "$project", Value: bson.M{
			"full_name": 1,
			"value":     1,
			"badges":    bson.M{"$size": bson.M{"$ifNull": bson.A{"$badges", bson.A{}}}},
		}}},
	}

	cur, err := db.Collection("users").Aggregate(ctx, pipe)
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	defer cur.Close(ctx)

	var out []Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return out, nil
}

// windowedPointsExpr sums points.earned entries inside [since, until].
func windowedPointsExpr(since, until time.Time) bson.M {
	cond := bson.A{}
	if !since.IsZero() {
		cond = append(cond, bson.M{"$gte": bson.A{"$$entry.timestamp", since}})
	}
	if !until.IsZero() {
		cond = append(cond, bson.M{"$lte": bson.A{"$$entry.timestamp", until}})
	}
	return bson.M{"$sum": bson.M{
		"$map": bson.M{
			"input": bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$points.earned", bson.A{}}},
				"as":    "entry",
				"cond":  bson.M{"$and": cond},
			}},
			"as": "entry",
			"in": "$$entry.amount",
		},
	}}
}

// Standing is one user's rank within a metric.
type Standing struct {
	UserID     primitive.ObjectID `json:"user_id"`
	Metric     string             `json:"metric"`
	Value      float64            `json:"value"`
	Rank       int                `json:"rank"`
	Percentile int                `json:"percentile"`
	Total      int                `json:"total"`
}

// Rank computes the user's position for a metric. The counting stays in
// the database; rank.FromCounts turns the counts into rank/percentile.
func Rank(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, metric string) (Standing, error) {
	field, ok := metricField[metric]
	if !ok {
		return Standing{}, fmt.Errorf("unknown leaderboard metric %q", metric)
	}

	users := db.Collection("users")

	var doc struct {
		Points     models.Points         `bson:"points"`
		Statistics models.UserStatistics `bson:"statistics"`
	}
	if err := users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		return Standing{}, err
	}

	var value float64
	switch metric {
	case rank.MetricPoints:
		value = float64(doc.Points.Total)
	case rank.MetricProjects:
		value = float64(doc.Statistics.ProjectsCompleted)
	case rank.MetricHours:
		value = doc.Statistics.HoursVolunteered
	}

	match := visibleMatch()
	match[field] = bson.M{"$gt": value}
	greater, err := users.CountDocuments(ctx, match)
	if err != nil {
		return Standing{}, fmt.Errorf("count greater: %w", err)
	}

	match = visibleMatch()
	match[field] = bson.M{"$gt": 0}
	total, err := users.CountDocuments(ctx, match)
	if err != nil {
		return Standing{}, fmt.Errorf("count participants: %w", err)
	}

	r, pct := rank.FromCounts(int(greater), int(total))
	return Standing{
		UserID:     userID,
		Metric:     metric,
		Value:      value,
		Rank:       r,
		Percentile: pct,
		Total:      int(total),
	}, nil
}

// CategoryLeader is one row of the per-category leaderboard.
type CategoryLeader struct {
	UserID            primitive.ObjectID `bson:"_id" json:"user_id"`
	FullName          string             `bson:"full_name" json:"full_name"`
	ProjectsCompleted int                `bson:"projects_completed" json:"projects_completed"`
	HoursContributed  float64            `bson:"hours_contributed" json:"hours_contributed"`
}

// CategoryLeaders ranks volunteers by completed work inside one project
// category: roster entries with status completed on completed projects,
// grouped per user, ordered by project count then hours.
func CategoryLeaders(ctx context.Context, db *mongo.Database, category string, n int) ([]CategoryLeader, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"category": category,
			"status":   models.ProjectCompleted,
		}}},
		bson.D{{Key: "$unwind", Value: "$volunteers"}},
		bson.D{{Key: "$match", Value: bson.M{
			"volunteers.status": models.RosterCompleted,
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":                "$volunteers.user_id",
			"projects_completed": bson.M{"$sum": 1},
			"hours_contributed":  bson.M{"$sum": "$volunteers.hours_contributed"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "projects_completed", Value: -1},
			{Key: "hours_contributed", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$limit", Value: n}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: "$user"}},
		bson.D{{Key: "$match", Value: bson.M{
			"user.status":        models.StatusActive,
			"user.stats_visible": true,
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{"full_name": "$user.full_name"}}},
		bson.D{{Key: "$project", Value: bson.M{
			"full_name":          1,
			"projects_completed": 1,
			"hours_contributed":  1,
		}}},
	}

	cur, err := db.Collection("projects").Aggregate(ctx, pipe)
	if err != nil {
		return nil, fmt.Errorf("category leaders: %w", err)
	}
	defer cur.Close(ctx)

	var out []CategoryLeader
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode category leaders: %w", err)
	}
	return out, nil
}

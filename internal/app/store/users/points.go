// internal/app/store/users/points.go
package userstore

// The points ledger. The running total and the append-only earned log
// live on the user document and are mutated only here, with a single
// atomic update per credit, so total == sum(earned[*].amount) holds in
// every observable state.

import (
	"context"
	"time"

	"github.com/volunteerhub/volunteerhub/internal/domain/gamification"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddPoints appends an earned-log entry and increments the running total
// in one atomic update, then evaluates badge thresholds against the new
// total and merges in any newly earned badges. It returns the updated
// user and the names of the badges the credit earned.
//
// Amounts may be negative (penalty adjustments); the applied amount is
// clamped so the total never drops below zero. The clamped amount is the
// one written to the log, keeping the total/log-sum invariant intact.
func (s *Store) AddPoints(ctx context.Context, userID primitive.ObjectID, amount int, reason string, projectID *primitive.ObjectID) (models.User, []string, error) {
	now := time.Now().UTC()

	// Clamp against the current total. Single-writer per aggregate is
	// assumed, so the read-then-update pair cannot interleave with a
	// concurrent credit for the same user.
	current, err := s.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, nil, err
	}
	applied := amount
	if current.Points.Total+applied < 0 {
		applied = -current.Points.Total
	}

	entry := models.PointEntry{
		Amount:    applied,
		Reason:    reason,
		Timestamp: now,
		ProjectID: projectID,
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"points.earned": entry},
		"$inc":  bson.M{"points.total": applied},
		"$set":  bson.M{"updated_at": now},
	}, after).Decode(&updated)
	if err != nil {
		return models.User{}, nil, err
	}

	newNames := gamification.NewlyEarned(updated.Points.Total, updated.BadgeNames())
	if len(newNames) == 0 {
		return updated, nil, nil
	}

	badges := make([]models.Badge, 0, len(newNames))
	for _, name := range newNames {
		badges = append(badges, models.Badge{Name: name, EarnedAt: now})
	}

	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"badges": bson.M{"$each": badges}},
	}, after).Decode(&updated)
	if err != nil {
		return models.User{}, nil, err
	}
	return updated, newNames, nil
}

// PointHistory returns the earned log, optionally restricted to entries
// within [since, until). Zero times mean unbounded.
func (s *Store) PointHistory(ctx context.Context, userID primitive.ObjectID, since, until time.Time) ([]models.PointEntry, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if since.IsZero() && until.IsZero() {
		return u.Points.Earned, nil
	}

	var entries []models.PointEntry
	for _, e := range u.Points.Earned {
		if !since.IsZero() && e.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && !e.Timestamp.Before(until) {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/volunteerhub/volunteerhub/internal/app/system/normalize"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrEmailTaken is returned when creating a user with an email that
// already exists.
var ErrEmailTaken = errors.New("email is already registered")

// Store wraps the users collection.
type Store struct {
	c *mongo.Collection
}

// New creates a user Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new user. Email and name are normalized, CI fields are
// folded, and timestamps/defaults are stamped here.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()

	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID fetches a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u)
	return u, err
}

// ProfileUpdate enumerates the profile fields a user may change.
// Nil fields are left untouched; no other fields are patchable.
type ProfileUpdate struct {
	FullName     *string
	StatsVisible *bool
}

// UpdateProfile applies an enumerated profile update.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.StatsVisible != nil {
		set["stats_visible"] = *upd.StatsVisible
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetStatus enables or disables an account.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     normalize.Status(status),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetNGO links an ngo-role user to their NGO document.
func (s *Store) SetNGO(ctx context.Context, id, ngoID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"ngo_id":     ngoID,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// StatsDelta is applied to a user's statistics counters with $inc.
type StatsDelta struct {
	ProjectsCompleted int
	TasksCompleted    int
	HoursVolunteered  float64
	ImpactScore       int
}

// IncrementStats bumps the statistics counters atomically.
func (s *Store) IncrementStats(ctx context.Context, id primitive.ObjectID, d StatsDelta) error {
	inc := bson.M{}
	if d.ProjectsCompleted != 0 {
		inc["statistics.projects_completed"] = d.ProjectsCompleted
	}
	if d.TasksCompleted != 0 {
		inc["statistics.tasks_completed"] = d.TasksCompleted
	}
	if d.HoursVolunteered != 0 {
		inc["statistics.hours_volunteered"] = d.HoursVolunteered
	}
	if d.ImpactScore != 0 {
		inc["statistics.impact_score"] = d.ImpactScore
	}
	if len(inc) == 0 {
		return nil
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$inc": inc,
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Role   string
	Status string
	Search string // folded prefix match on full_name_ci
}

// List returns users matching the filter, sorted by name, with a
// limit+1 look-ahead for pagination.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.User, error) {
	q := bson.M{}
	if f.Role != "" {
		q["role"] = normalize.Role(f.Role)
	}
	if f.Status != "" {
		q["status"] = normalize.Status(f.Status)
	}
	if f.Search != "" {
		q["full_name_ci"] = bson.M{"$regex": "^" + text.Fold(f.Search)}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

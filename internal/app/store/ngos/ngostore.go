// Package ngostore persists NGO organizations: profile data, the admin
// verification workflow, the review aggregate and the follower set.
package ngostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"github.com/volunteerhub/volunteerhub/internal/app/system/normalize"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrOwnerHasNGO is returned when the owning user already manages an
	// organization. One NGO per ngo-role account.
	ErrOwnerHasNGO = errors.New("user already owns an organization")

	// ErrBadVerificationStatus is returned for a status outside the
	// verification vocabulary.
	ErrBadVerificationStatus = errors.New("unknown verification status")

	// ErrBadVerificationTransition is returned when the requested status
	// is not reachable from the current one.
	ErrBadVerificationTransition = errors.New("verification transition not allowed")
)

// verificationNext lists the reachable statuses per current status.
// Verified and rejected are terminal.
var verificationNext = map[string][]string{
	models.VerificationPending:     {models.VerificationUnderReview},
	models.VerificationUnderReview: {models.VerificationVerified, models.VerificationRejected},
	models.VerificationVerified:    {},
	models.VerificationRejected:    {},
}

// Store wraps the ngos collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store bound to the ngos collection of db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ngos")}
}

// Create inserts a new organization in pending verification state.
func (s *Store) Create(ctx context.Context, n models.NGO) (models.NGO, error) {
	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.Name = normalize.Name(n.Name)
	n.NameCI = text.Fold(n.Name)
	n.CityCI = text.Fold(n.City)
	n.Category = normalize.Category(n.Category)
	n.Verification = models.Verification{Status: models.VerificationPending}
	n.Rating = models.Rating{}
	n.Followers = nil
	n.CreatedAt = now
	n.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		if wafflemongo.IsDup(err) {
			return models.NGO{}, ErrOwnerHasNGO
		}
		return models.NGO{}, fmt.Errorf("insert ngo: %w", err)
	}
	return n, nil
}

// GetByID fetches one organization.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.NGO, error) {
	var n models.NGO
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	return n, err
}

// GetByOwner fetches the organization managed by the given user.
func (s *Store) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) (models.NGO, error) {
	var n models.NGO
	err := s.c.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&n)
	return n, err
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Category           string
	Country            string
	VerificationStatus string
	Search             string // name prefix, case/diacritic-insensitive
}

// List returns organizations newest first.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.NGO, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = normalize.Category(f.Category)
	}
	if f.Country != "" {
		filter["country"] = f.Country
	}
	if f.VerificationStatus != "" {
		filter["verification.status"] = normalize.Status(f.VerificationStatus)
	}
	if f.Search != "" {
		filter["name_ci"] = bson.M{"$regex": "^" + text.Fold(f.Search)}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list ngos: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.NGO
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode ngos: %w", err)
	}
	return out, nil
}

// ProfileUpdate is the enumerated update command for NGO profile fields.
type ProfileUpdate struct {
	Description *string
	Website     *string
	City        *string
	Country     *string
}

// UpdateProfile applies an enumerated profile update.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Website != nil {
		set["website"] = *upd.Website
	}
	if upd.City != nil {
		set["city"] = *upd.City
		set["city_ci"] = text.Fold(*upd.City)
	}
	if upd.Country != nil {
		set["country"] = *upd.Country
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

// UpdateVerification moves the organization through the review workflow.
// Reaching verified assigns a reference number; the note is stored on
// every transition so rejections carry a reason.
func (s *Store) UpdateVerification(ctx context.Context, id primitive.ObjectID, status, note string) (models.NGO, error) {
	status = normalize.Status(status)
	if _, ok := verificationNext[status]; !ok {
		return models.NGO{}, fmt.Errorf("%w: %q", ErrBadVerificationStatus, status)
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return models.NGO{}, err
	}

	allowed := false
	for _, next := range verificationNext[current.Verification.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return models.NGO{}, fmt.Errorf("%w: %s → %s",
			ErrBadVerificationTransition, current.Verification.Status, status)
	}

	now := time.Now().UTC()
	set := bson.M{
		"verification.status":      status,
		"verification.note":        note,
		"verification.reviewed_at": now,
		"updated_at":               now,
	}
	if status == models.VerificationVerified {
		set["verification.reference"] = uuid.NewString()
	}

	var updated models.NGO
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return models.NGO{}, fmt.Errorf("update verification: %w", err)
	}
	return updated, nil
}

// AddReview records a user's review. A user reviews an organization at
// most once; reviewing again replaces the earlier entry. Average and
// Count are recomputed from the full review array.
func (s *Store) AddReview(ctx context.Context, id primitive.ObjectID, review models.Review) (models.NGO, error) {
	n, err := s.GetByID(ctx, id)
	if err != nil {
		return models.NGO{}, err
	}

	review.CreatedAt = time.Now().UTC()
	reviews := make([]models.Review, 0, len(n.Rating.Reviews)+1)
	for _, r := range n.Rating.Reviews {
		if r.UserID != review.UserID {
			reviews = append(reviews, r)
		}
	}
	reviews = append(reviews, review)

	sum := 0
	for _, r := range reviews {
		sum += r.Stars
	}
	rating := models.Rating{
		Average: float64(sum) / float64(len(reviews)),
		Count:   len(reviews),
		Reviews: reviews,
	}

	var updated models.NGO
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"rating": rating, "updated_at": review.CreatedAt}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return models.NGO{}, fmt.Errorf("add review: %w", err)
	}
	return updated, nil
}

// Follow adds the user to the follower set. Following twice is a no-op.
func (s *Store) Follow(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"followers": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Unfollow removes the user from the follower set.
func (s *Store) Unfollow(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"followers": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Package projectstore persists projects: profile data, the approval
// workflow, the milestone list and the volunteer roster. Roster rules
// live in internal/domain/roster; this store loads the document, applies
// the rule, and writes the whole roster back in one document update.
package projectstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/volunteerhub/volunteerhub/internal/app/system/inputval"
	"github.com/volunteerhub/volunteerhub/internal/app/system/normalize"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"github.com/volunteerhub/volunteerhub/internal/domain/roster"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrBadProjectStatus is returned for a status outside the project
	// vocabulary.
	ErrBadProjectStatus = errors.New("unknown project status")

	// ErrBadProjectTransition is returned when the requested status is
	// not reachable from the current one.
	ErrBadProjectTransition = errors.New("project transition not allowed")

	// ErrMilestoneIndex is returned for an out-of-range milestone index.
	ErrMilestoneIndex = errors.New("milestone index out of range")
)

// projectNext lists the reachable statuses per current status.
// Completed, cancelled and rejected are terminal.
var projectNext = map[string][]string{
	models.ProjectDraft:           {models.ProjectPendingApproval, models.ProjectCancelled},
	models.ProjectPendingApproval: {models.ProjectApproved, models.ProjectRejected},
	models.ProjectApproved:        {models.ProjectActive, models.ProjectCancelled},
	models.ProjectActive:          {models.ProjectCompleted, models.ProjectCancelled, models.ProjectOnHold},
	models.ProjectOnHold:          {models.ProjectActive, models.ProjectCancelled},
	models.ProjectCompleted:       {},
	models.ProjectCancelled:       {},
	models.ProjectRejected:        {},
}

// Store wraps the projects collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store bound to the projects collection of db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

// Create inserts a new project in draft state. Capacity must be at least
// one and the timeline must run forward.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	if p.Requirements.Volunteers.Total < 1 {
		return models.Project{}, fmt.Errorf("%w: volunteer capacity must be at least 1", inputval.ErrInvalid)
	}
	if !p.Timeline.StartDate.Before(p.Timeline.EndDate) {
		return models.Project{}, fmt.Errorf("%w: start date must precede end date", inputval.ErrInvalid)
	}

	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Title = normalize.Name(p.Title)
	p.TitleCI = text.Fold(p.Title)
	p.Category = normalize.Category(p.Category)
	p.Status = models.ProjectDraft
	p.Requirements.Volunteers.Current = 0
	p.Volunteers = nil
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

// GetByID fetches one project.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, err
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	NGOID    primitive.ObjectID
	Status   string
	Category string
	Search   string // title prefix, case/diacritic-insensitive
}

// List returns projects newest first.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.Project, error) {
	filter := bson.M{}
	if f.NGOID != primitive.NilObjectID {
		filter["ngo_id"] = f.NGOID
	}
	if f.Status != "" {
		filter["status"] = normalize.Status(f.Status)
	}
	if f.Category != "" {
		filter["category"] = normalize.Category(f.Category)
	}
	if f.Search != "" {
		filter["title_ci"] = bson.M{"$regex": "^" + text.Fold(f.Search)}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return out, nil
}

// ProfileUpdate is the enumerated update command for project fields.
// Capacity changes go through here so the derived current count is never
// touched; status changes go through SetStatus.
type ProfileUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	Skills      *[]string
	Capacity    *int
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateProfile applies an enumerated profile update.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	if upd.Capacity != nil && *upd.Capacity < 1 {
		return fmt.Errorf("%w: volunteer capacity must be at least 1", inputval.ErrInvalid)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		title := normalize.Name(*upd.Title)
		set["title"] = title
		set["title_ci"] = text.Fold(title)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = normalize.Category(*upd.Category)
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Skills != nil {
		set["requirements.skills"] = *upd.Skills
	}
	if upd.Capacity != nil {
		set["requirements.volunteers.total"] = *upd.Capacity
	}
	if upd.StartDate != nil {
		set["timeline.start_date"] = *upd.StartDate
	}
	if upd.EndDate != nil {
		set["timeline.end_date"] = *upd.EndDate
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

// SetStatus moves the project through its lifecycle, including the admin
// approval step (pending-approval → approved/rejected).
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Project, error) {
	status = normalize.Status(status)
	if _, ok := projectNext[status]; !ok {
		return models.Project{}, fmt.Errorf("%w: %q", ErrBadProjectStatus, status)
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}

	allowed := false
	for _, next := range projectNext[current.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return models.Project{}, fmt.Errorf("%w: %s → %s",
			ErrBadProjectTransition, current.Status, status)
	}

	var updated models.Project
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return models.Project{}, fmt.Errorf("set project status: %w", err)
	}
	return updated, nil
}

// Delete removes a project. Only drafts may be deleted; anything further
// along is cancelled instead so the roster history survives.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "status": models.ProjectDraft})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		p, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s projects cannot be deleted", ErrBadProjectTransition, p.Status)
	}
	return nil
}

// Apply adds a volunteer application to the roster.
func (s *Store) Apply(ctx context.Context, id, userID primitive.ObjectID, role string) (models.Project, error) {
	return s.mutateRoster(ctx, id, func(p *models.Project) error {
		return roster.Apply(p, userID, role, time.Now().UTC())
	})
}

// UpdateVolunteerStatus moves a roster entry to a new status.
func (s *Store) UpdateVolunteerStatus(ctx context.Context, id, userID primitive.ObjectID, status string) (models.Project, error) {
	return s.mutateRoster(ctx, id, func(p *models.Project) error {
		return roster.UpdateStatus(p, userID, normalize.Status(status))
	})
}

// AddVolunteerHours records hours contributed by a roster member.
func (s *Store) AddVolunteerHours(ctx context.Context, id, userID primitive.ObjectID, hours float64) (models.Project, error) {
	if hours < 0 {
		return models.Project{}, fmt.Errorf("%w: hours must be non-negative", inputval.ErrInvalid)
	}
	return s.mutateRoster(ctx, id, func(p *models.Project) error {
		return roster.AddHours(p, userID, hours)
	})
}

// mutateRoster loads the project, applies the roster rule, and persists
// the roster plus the derived accepted count in one document update.
func (s *Store) mutateRoster(ctx context.Context, id primitive.ObjectID, fn func(*models.Project) error) (models.Project, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if err := fn(&p); err != nil {
		return models.Project{}, err
	}

	p.UpdatedAt = time.Now().UTC()
	_, err = s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"volunteers":                      p.Volunteers,
		"requirements.volunteers.current": p.Requirements.Volunteers.Current,
		"updated_at":                      p.UpdatedAt,
	}})
	if err != nil {
		return models.Project{}, fmt.Errorf("update roster: %w", err)
	}
	return p, nil
}

// AddMilestone appends a milestone to the timeline.
func (s *Store) AddMilestone(ctx context.Context, id primitive.ObjectID, m models.Milestone) (models.Project, error) {
	if m.Title == "" {
		return models.Project{}, fmt.Errorf("%w: milestone title is required", inputval.ErrInvalid)
	}
	if m.Status == "" {
		m.Status = models.MilestonePending
	}

	var updated models.Project
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"timeline.milestones": m},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return models.Project{}, fmt.Errorf("add milestone: %w", err)
	}
	return updated, nil
}

// SetMilestoneStatus updates one milestone by position.
func (s *Store) SetMilestoneStatus(ctx context.Context, id primitive.ObjectID, index int, status string) (models.Project, error) {
	status = normalize.Status(status)
	switch status {
	case models.MilestonePending, models.MilestoneInProgress,
		models.MilestoneCompleted, models.MilestoneDelayed:
	default:
		return models.Project{}, fmt.Errorf("%w: unknown milestone status %q", inputval.ErrInvalid, status)
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if index < 0 || index >= len(p.Timeline.Milestones) {
		return models.Project{}, fmt.Errorf("%w: %d", ErrMilestoneIndex, index)
	}

	field := fmt.Sprintf("timeline.milestones.%d.status", index)
	var updated models.Project
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return models.Project{}, fmt.Errorf("set milestone status: %w", err)
	}
	return updated, nil
}

// Package taskstore persists tasks. Lifecycle rules live in
// internal/domain/tasklife; mutations load the document, apply the rule,
// and write the affected fields back in one document update.
package taskstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/volunteerhub/volunteerhub/internal/app/system/inputval"
	"github.com/volunteerhub/volunteerhub/internal/app/system/normalize"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"github.com/volunteerhub/volunteerhub/internal/domain/tasklife"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the tasks collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store bound to the tasks collection of db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Create inserts a new task in pending state. The timeline must run
// forward; points.total is derived from base + bonus.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ProjectID == primitive.NilObjectID {
		return models.Task{}, fmt.Errorf("%w: project is required", inputval.ErrInvalid)
	}
	if !t.Timeline.StartDate.Before(t.Timeline.DueDate) {
		return models.Task{}, fmt.Errorf("%w: start date must precede due date", inputval.ErrInvalid)
	}
	if t.Points.Base < 0 || t.Points.Bonus < 0 {
		return models.Task{}, fmt.Errorf("%w: points must be non-negative", inputval.ErrInvalid)
	}

	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.Title = normalize.Name(t.Title)
	t.TitleCI = text.Fold(t.Title)
	t.Status = models.TaskPending
	t.AssignedTo = nil
	t.Progress = models.TaskProgress{}
	t.Timeline.CompletedDate = nil
	tasklife.RecomputePoints(&t)
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// GetByID fetches one task.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	return t, err
}

// ListByProject returns a project's tasks, oldest first, optionally
// narrowed to one status.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, status string) ([]models.Task, error) {
	filter := bson.M{"project_id": projectID}
	if status != "" {
		filter["status"] = normalize.Status(status)
	}
	return s.find(ctx, filter, bson.D{{Key: "created_at", Value: 1}})
}

// ListByAssignee returns a user's tasks, due date ascending.
func (s *Store) ListByAssignee(ctx context.Context, userID primitive.ObjectID, status string) ([]models.Task, error) {
	filter := bson.M{"assigned_to": userID}
	if status != "" {
		filter["status"] = normalize.Status(status)
	}
	return s.find(ctx, filter, bson.D{{Key: "timeline.due_date", Value: 1}})
}

func (s *Store) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return out, nil
}

// DetailUpdate is the enumerated update command for task fields.
// Changing base or bonus recomputes points.total.
type DetailUpdate struct {
	Title       *string
	Description *string
	BasePoints  *int
	BonusPoints *int
	StartDate   *time.Time
	DueDate     *time.Time
}

// UpdateDetails applies an enumerated detail update.
func (s *Store) UpdateDetails(ctx context.Context, id primitive.ObjectID, upd DetailUpdate) (models.Task, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	if upd.Title != nil {
		t.Title = normalize.Name(*upd.Title)
		t.TitleCI = text.Fold(t.Title)
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.BasePoints != nil {
		if *upd.BasePoints < 0 {
			return models.Task{}, fmt.Errorf("%w: points must be non-negative", inputval.ErrInvalid)
		}
		t.Points.Base = *upd.BasePoints
	}
	if upd.BonusPoints != nil {
		if *upd.BonusPoints < 0 {
			return models.Task{}, fmt.Errorf("%w: points must be non-negative", inputval.ErrInvalid)
		}
		t.Points.Bonus = *upd.BonusPoints
	}
	tasklife.RecomputePoints(&t)
	if upd.StartDate != nil {
		t.Timeline.StartDate = *upd.StartDate
	}
	if upd.DueDate != nil {
		t.Timeline.DueDate = *upd.DueDate
	}
	if !t.Timeline.StartDate.Before(t.Timeline.DueDate) {
		return models.Task{}, fmt.Errorf("%w: start date must precede due date", inputval.ErrInvalid)
	}

	return s.save(ctx, t)
}

// Assign gives the task to a volunteer.
func (s *Store) Assign(ctx context.Context, id, userID primitive.ObjectID) (models.Task, error) {
	return s.mutate(ctx, id, func(t *models.Task) error {
		return tasklife.Assign(t, userID)
	})
}

// Start moves an assigned task to in-progress.
func (s *Store) Start(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	return s.mutate(ctx, id, tasklife.Start)
}

// Hold suspends a non-terminal task.
func (s *Store) Hold(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	return s.mutate(ctx, id, tasklife.Hold)
}

// Cancel terminates a non-terminal task.
func (s *Store) Cancel(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	return s.mutate(ctx, id, tasklife.Cancel)
}

// ApplyProgress records a progress update. Hitting 100 completes the
// task; when deliverables exist their derived percentage stays
// authoritative.
func (s *Store) ApplyProgress(ctx context.Context, id primitive.ObjectID, pct int, message string, authorID primitive.ObjectID, attachments []string) (models.Task, error) {
	return s.mutate(ctx, id, func(t *models.Task) error {
		return tasklife.ApplyProgress(t, pct, message, authorID, attachments, time.Now().UTC())
	})
}

// Complete forces the task to completed and records the actual hours.
func (s *Store) Complete(ctx context.Context, id primitive.ObjectID, actualHours float64) (models.Task, error) {
	if actualHours < 0 {
		return models.Task{}, fmt.Errorf("%w: hours must be non-negative", inputval.ErrInvalid)
	}
	return s.mutate(ctx, id, func(t *models.Task) error {
		if t.Status == models.TaskCancelled {
			return tasklife.ErrTerminal
		}
		tasklife.Complete(t, actualHours, time.Now().UTC())
		return nil
	})
}

// AddDeliverable appends a deliverable.
func (s *Store) AddDeliverable(ctx context.Context, id primitive.ObjectID, title string) (models.Task, error) {
	if title == "" {
		return models.Task{}, fmt.Errorf("%w: deliverable title is required", inputval.ErrInvalid)
	}
	return s.mutate(ctx, id, func(t *models.Task) error {
		if t.IsTerminal() {
			return tasklife.ErrTerminal
		}
		tasklife.AddDeliverable(t, title)
		return nil
	})
}

// CompleteDeliverable marks one deliverable done and recomputes the task
// percentage from the deliverable set.
func (s *Store) CompleteDeliverable(ctx context.Context, id primitive.ObjectID, index int) (models.Task, error) {
	return s.mutate(ctx, id, func(t *models.Task) error {
		return tasklife.CompleteDeliverable(t, index, time.Now().UTC())
	})
}

// mutate loads the task, applies the lifecycle rule, and persists the
// result.
func (s *Store) mutate(ctx context.Context, id primitive.ObjectID, fn func(*models.Task) error) (models.Task, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := fn(&t); err != nil {
		return models.Task{}, err
	}
	return s.save(ctx, t)
}

// save writes the mutable fields of t back in one document update.
func (s *Store) save(ctx context.Context, t models.Task) (models.Task, error) {
	t.UpdatedAt = time.Now().UTC()
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return models.Task{}, fmt.Errorf("save task: %w", err)
	}
	return t, nil
}

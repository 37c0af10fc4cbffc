// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses. Completed and cancelled are terminal.
const (
	TaskPending    = "pending"
	TaskAssigned   = "assigned"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
	TaskOnHold     = "on-hold"
)

// Deliverable statuses.
const (
	DeliverablePending    = "pending"
	DeliverableInProgress = "in-progress"
	DeliverableCompleted  = "completed"
)

// Task belongs to exactly one project and owns its deliverables and
// progress-update log.
//
// NOTE:
//   - Timeline.CompletedDate is set if and only if Status is "completed".
//   - Points.Total is recomputed whenever Base or Bonus change.
//   - Once any deliverable exists, Progress.Percentage is derived from
//     deliverable completion; message-driven progress still appends to
//     Progress.Updates but the percentage is owned by the deliverable
//     recompute path.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description" json:"description"`

	Status     string              `bson:"status" json:"status"`
	AssignedTo *primitive.ObjectID `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`

	Progress     TaskProgress  `bson:"progress" json:"progress"`
	Timeline     TaskTimeline  `bson:"timeline" json:"timeline"`
	Points       TaskPoints    `bson:"points" json:"points"`
	Deliverables []Deliverable `bson:"deliverables,omitempty" json:"deliverables,omitempty"`

	// ActualHours is recorded on completion and credited to the
	// assignee's hours_volunteered counter.
	ActualHours float64 `bson:"actual_hours,omitempty" json:"actual_hours,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TaskProgress holds the completion percentage and the append-only log of
// progress messages.
type TaskProgress struct {
	Percentage int              `bson:"percentage" json:"percentage"` // 0..100
	Updates    []ProgressUpdate `bson:"updates,omitempty" json:"updates,omitempty"`
}

// ProgressUpdate is one entry in a task's progress log.
type ProgressUpdate struct {
	Percentage  int                `bson:"percentage" json:"percentage"`
	Message     string             `bson:"message" json:"message"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	Attachments []string           `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}

// TaskTimeline holds the task schedule. StartDate must precede DueDate
// (enforced at creation).
type TaskTimeline struct {
	StartDate     time.Time  `bson:"start_date" json:"start_date"`
	DueDate       time.Time  `bson:"due_date" json:"due_date"`
	CompletedDate *time.Time `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
}

// TaskPoints is the point value of a task. Total = Base + Bonus.
type TaskPoints struct {
	Base  int `bson:"base" json:"base"`
	Bonus int `bson:"bonus" json:"bonus"`
	Total int `bson:"total" json:"total"`
}

// Deliverable is one expected output of a task.
type Deliverable struct {
	Title       string     `bson:"title" json:"title"`
	Status      string     `bson:"status" json:"status"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// IsTerminal reports whether the task can no longer change state.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskCompleted || t.Status == TaskCancelled
}

// CompletedDeliverables counts deliverables with status "completed".
func (t *Task) CompletedDeliverables() int {
	n := 0
	for _, d := range t.Deliverables {
		if d.Status == DeliverableCompleted {
			n++
		}
	}
	return n
}

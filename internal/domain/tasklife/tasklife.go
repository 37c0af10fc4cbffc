// Package tasklife implements the task status machine and the derived
// schedule/progress fields. All functions operate on a Task value in
// memory; persistence is the caller's concern (taskstore applies the
// mutated fields atomically).
package tasklife

import (
	"errors"
	"math"
	"time"

	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrTerminal is returned when mutating a completed or cancelled task.
	ErrTerminal = errors.New("task is in a terminal state")
	// ErrNoDeliverables is returned when completing a deliverable on a
	// task that has none.
	ErrNoDeliverables = errors.New("task has no deliverables")
	// ErrDeliverableIndex is returned for an out-of-range deliverable index.
	ErrDeliverableIndex = errors.New("deliverable index out of range")
)

// Assign sets the assignee and moves the task to assigned. Assigning a
// completed or cancelled task is rejected.
func Assign(t *models.Task, userID primitive.ObjectID) error {
	if t.IsTerminal() {
		return ErrTerminal
	}
	t.AssignedTo = &userID
	t.Status = models.TaskAssigned
	return nil
}

// Hold moves a non-terminal task to on-hold.
func Hold(t *models.Task) error {
	if t.IsTerminal() {
		return ErrTerminal
	}
	t.Status = models.TaskOnHold
	return nil
}

// Cancel moves a non-terminal task to cancelled.
func Cancel(t *models.Task) error {
	if t.IsTerminal() {
		return ErrTerminal
	}
	t.Status = models.TaskCancelled
	return nil
}

// Start moves a non-terminal task to in-progress.
func Start(t *models.Task) error {
	if t.IsTerminal() {
		return ErrTerminal
	}
	t.Status = models.TaskInProgress
	return nil
}

// ApplyProgress clamps pct to [0,100], appends a progress-update record,
// and promotes the task to completed when the clamped value reaches 100.
// The promotion is one-directional and idempotent: a task that is already
// completed stays completed and keeps its original completed date.
// A cancelled task is terminal and rejects progress outright.
//
// When the task has deliverables, the percentage is owned by the
// deliverable recompute path; the update record is still appended but the
// stored percentage is left alone.
func ApplyProgress(t *models.Task, pct int, message string, authorID primitive.ObjectID, attachments []string, now time.Time) error {
	if t.Status == models.TaskCancelled {
		return ErrTerminal
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	t.Progress.Updates = append(t.Progress.Updates, models.ProgressUpdate{
		Percentage:  pct,
		Message:     message,
		AuthorID:    authorID,
		Attachments: attachments,
		Timestamp:   now,
	})

	if len(t.Deliverables) == 0 {
		t.Progress.Percentage = pct
	}

	if pct >= 100 && t.Status != models.TaskCompleted {
		t.Status = models.TaskCompleted
		done := now
		t.Timeline.CompletedDate = &done
	}
	return nil
}

// Complete force-transitions the task to completed: percentage 100,
// completed date stamped, optional actual hours recorded. Calling it on an
// already-completed task keeps the original completed date.
func Complete(t *models.Task, actualHours float64, now time.Time) {
	if t.Status != models.TaskCompleted {
		t.Status = models.TaskCompleted
		done := now
		t.Timeline.CompletedDate = &done
	}
	t.Progress.Percentage = 100
	if actualHours > 0 {
		t.ActualHours = actualHours
	}
}

// AddDeliverable appends a pending deliverable and recomputes the
// deliverable-derived percentage.
func AddDeliverable(t *models.Task, title string) {
	t.Deliverables = append(t.Deliverables, models.Deliverable{
		Title:  title,
		Status: models.DeliverablePending,
	})
	recomputeDeliverableProgress(t)
}

// CompleteDeliverable marks the deliverable at index completed and
// recomputes progress.percentage as round(100 * completed / total). When
// the recomputed value reaches 100 the task itself is completed. A
// cancelled task is terminal and rejects the move.
func CompleteDeliverable(t *models.Task, index int, now time.Time) error {
	if t.Status == models.TaskCancelled {
		return ErrTerminal
	}
	if len(t.Deliverables) == 0 {
		return ErrNoDeliverables
	}
	if index < 0 || index >= len(t.Deliverables) {
		return ErrDeliverableIndex
	}

	if t.Deliverables[index].Status != models.DeliverableCompleted {
		t.Deliverables[index].Status = models.DeliverableCompleted
		done := now
		t.Deliverables[index].CompletedAt = &done
	}
	recomputeDeliverableProgress(t)

	if t.Progress.Percentage >= 100 && t.Status != models.TaskCompleted {
		t.Status = models.TaskCompleted
		completed := now
		t.Timeline.CompletedDate = &completed
	}
	return nil
}

func recomputeDeliverableProgress(t *models.Task) {
	total := len(t.Deliverables)
	if total == 0 {
		return
	}
	done := t.CompletedDeliverables()
	t.Progress.Percentage = int(math.Round(100 * float64(done) / float64(total)))
}

// DaysRemaining returns ceil((dueDate - now) / 1 day), or 0 when the task
// is terminal. Overdue tasks yield a negative count.
func DaysRemaining(t *models.Task, now time.Time) int {
	if t.IsTerminal() {
		return 0
	}
	return int(math.Ceil(t.Timeline.DueDate.Sub(now).Hours() / 24))
}

// IsOverdue reports whether the task is past due. Terminal tasks are
// never overdue.
func IsOverdue(t *models.Task, now time.Time) bool {
	if t.IsTerminal() {
		return false
	}
	return DaysRemaining(t, now) < 0
}

// DeliverableProgress returns the deliverable-based percentage when any
// deliverables exist, otherwise the stored progress percentage.
func DeliverableProgress(t *models.Task) int {
	total := len(t.Deliverables)
	if total == 0 {
		return t.Progress.Percentage
	}
	return int(math.Round(100 * float64(t.CompletedDeliverables()) / float64(total)))
}

// RecomputePoints refreshes points.total from base and bonus.
func RecomputePoints(t *models.Task) {
	t.Points.Total = t.Points.Base + t.Points.Bonus
}

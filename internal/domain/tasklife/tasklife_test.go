package tasklife_test

import (
	"errors"
	"testing"
	"time"

	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"github.com/volunteerhub/volunteerhub/internal/domain/tasklife"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTask(status string) *models.Task {
	now := time.Now().UTC()
	return &models.Task{
		ID:     primitive.NewObjectID(),
		Status: status,
		Timeline: models.TaskTimeline{
			StartDate: now,
			DueDate:   now.Add(7 * 24 * time.Hour),
		},
	}
}

func TestAssign(t *testing.T) {
	task := newTask(models.TaskPending)
	userID := primitive.NewObjectID()

	if err := tasklife.Assign(task, userID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if task.Status != models.TaskAssigned {
		t.Errorf("status: got %q, want %q", task.Status, models.TaskAssigned)
	}
	if task.AssignedTo == nil || *task.AssignedTo != userID {
		t.Error("expected AssignedTo to be set")
	}
}

func TestAssign_TerminalRejected(t *testing.T) {
	for _, status := range []string{models.TaskCompleted, models.TaskCancelled} {
		task := newTask(status)
		err := tasklife.Assign(task, primitive.NewObjectID())
		if !errors.Is(err, tasklife.ErrTerminal) {
			t.Errorf("Assign on %s task: got %v, want ErrTerminal", status, err)
		}
	}
}

func TestApplyProgress_ClampsAndAppends(t *testing.T) {
	task := newTask(models.TaskInProgress)
	author := primitive.NewObjectID()
	now := time.Now().UTC()

	if err := tasklife.ApplyProgress(task, 150, "almost there", author, nil, now); err != nil {
		t.Fatalf("ApplyProgress failed: %v", err)
	}

	if task.Progress.Percentage != 100 {
		t.Errorf("percentage: got %d, want 100 (clamped)", task.Progress.Percentage)
	}
	if len(task.Progress.Updates) != 1 {
		t.Fatalf("expected 1 progress update, got %d", len(task.Progress.Updates))
	}
	if task.Progress.Updates[0].Message != "almost there" {
		t.Errorf("message: got %q", task.Progress.Updates[0].Message)
	}

	if err := tasklife.ApplyProgress(task, -10, "negative", author, nil, now); err != nil {
		t.Fatalf("ApplyProgress failed: %v", err)
	}
	if len(task.Progress.Updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(task.Progress.Updates))
	}
	if task.Progress.Updates[1].Percentage != 0 {
		t.Errorf("negative percentage should clamp to 0, got %d", task.Progress.Updates[1].Percentage)
	}
}

func TestApplyProgress_HundredCompletes(t *testing.T) {
	task := newTask(models.TaskInProgress)
	now := time.Now().UTC()

	if err := tasklife.ApplyProgress(task, 100, "done", primitive.NewObjectID(), nil, now); err != nil {
		t.Fatalf("ApplyProgress failed: %v", err)
	}

	if task.Status != models.TaskCompleted {
		t.Errorf("status: got %q, want completed", task.Status)
	}
	if task.Timeline.CompletedDate == nil {
		t.Fatal("expected CompletedDate to be set")
	}

	// Idempotent on status: a second call keeps the original date.
	first := *task.Timeline.CompletedDate
	if err := tasklife.ApplyProgress(task, 100, "again", primitive.NewObjectID(), nil, now.Add(time.Hour)); err != nil {
		t.Fatalf("ApplyProgress on completed task: %v", err)
	}
	if task.Status != models.TaskCompleted {
		t.Errorf("status after second call: got %q", task.Status)
	}
	if !task.Timeline.CompletedDate.Equal(first) {
		t.Error("CompletedDate should not change on repeat completion")
	}
}

func TestComplete_Force(t *testing.T) {
	task := newTask(models.TaskAssigned)
	now := time.Now().UTC()

	tasklife.Complete(task, 12.5, now)

	if task.Status != models.TaskCompleted {
		t.Errorf("status: got %q", task.Status)
	}
	if task.Progress.Percentage != 100 {
		t.Errorf("percentage: got %d, want 100", task.Progress.Percentage)
	}
	if task.Timeline.CompletedDate == nil {
		t.Error("expected CompletedDate to be set")
	}
	if task.ActualHours != 12.5 {
		t.Errorf("actual hours: got %v, want 12.5", task.ActualHours)
	}
}

func TestCompleteDeliverable_RecomputesPercentage(t *testing.T) {
	task := newTask(models.TaskInProgress)
	now := time.Now().UTC()

	tasklife.AddDeliverable(task, "report")
	tasklife.AddDeliverable(task, "photos")
	tasklife.AddDeliverable(task, "summary")

	if err := tasklife.CompleteDeliverable(task, 0, now); err != nil {
		t.Fatalf("CompleteDeliverable failed: %v", err)
	}
	if task.Progress.Percentage != 33 {
		t.Errorf("1 of 3 deliverables: percentage got %d, want 33", task.Progress.Percentage)
	}

	if err := tasklife.CompleteDeliverable(task, 1, now); err != nil {
		t.Fatalf("CompleteDeliverable failed: %v", err)
	}
	if task.Progress.Percentage != 67 {
		t.Errorf("2 of 3 deliverables: percentage got %d, want 67", task.Progress.Percentage)
	}

	if err := tasklife.CompleteDeliverable(task, 2, now); err != nil {
		t.Fatalf("CompleteDeliverable failed: %v", err)
	}
	if task.Progress.Percentage != 100 {
		t.Errorf("3 of 3 deliverables: percentage got %d, want 100", task.Progress.Percentage)
	}
	if task.Status != models.TaskCompleted {
		t.Errorf("all deliverables done: status got %q, want completed", task.Status)
	}
}

func TestCompleteDeliverable_Guards(t *testing.T) {
	task := newTask(models.TaskInProgress)
	now := time.Now().UTC()

	if err := tasklife.CompleteDeliverable(task, 0, now); !errors.Is(err, tasklife.ErrNoDeliverables) {
		t.Errorf("zero deliverables: got %v, want ErrNoDeliverables", err)
	}

	tasklife.AddDeliverable(task, "report")
	if err := tasklife.CompleteDeliverable(task, 5, now); !errors.Is(err, tasklife.ErrDeliverableIndex) {
		t.Errorf("out of range: got %v, want ErrDeliverableIndex", err)
	}
}

func TestCancelledStaysCancelled(t *testing.T) {
	now := time.Now().UTC()
	author := primitive.NewObjectID()

	task := newTask(models.TaskCancelled)
	if err := tasklife.ApplyProgress(task, 100, "done anyway", author, nil, now); !errors.Is(err, tasklife.ErrTerminal) {
		t.Errorf("ApplyProgress on cancelled task: got %v, want ErrTerminal", err)
	}
	if task.Status != models.TaskCancelled {
		t.Errorf("status: got %q, want cancelled", task.Status)
	}
	if task.Timeline.CompletedDate != nil {
		t.Error("CompletedDate must stay unset on a cancelled task")
	}
	if len(task.Progress.Updates) != 0 {
		t.Errorf("no update should be recorded, got %d", len(task.Progress.Updates))
	}

	task = newTask(models.TaskInProgress)
	tasklife.AddDeliverable(task, "report")
	if err := tasklife.Cancel(task); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if err := tasklife.CompleteDeliverable(task, 0, now); !errors.Is(err, tasklife.ErrTerminal) {
		t.Errorf("CompleteDeliverable on cancelled task: got %v, want ErrTerminal", err)
	}
	if task.Status != models.TaskCancelled {
		t.Errorf("status: got %q, want cancelled", task.Status)
	}
}

func TestDeliverableProgress_OverridesMessageDriven(t *testing.T) {
	task := newTask(models.TaskInProgress)
	now := time.Now().UTC()
	author := primitive.NewObjectID()

	tasklife.AddDeliverable(task, "a")
	tasklife.AddDeliverable(task, "b")

	// Message-driven progress on a task with deliverables records the
	// update but does not move the stored percentage.
	if err := tasklife.ApplyProgress(task, 90, "nearly", author, nil, now); err != nil {
		t.Fatalf("ApplyProgress failed: %v", err)
	}
	if task.Progress.Percentage != 0 {
		t.Errorf("percentage should stay deliverable-derived, got %d", task.Progress.Percentage)
	}
	if len(task.Progress.Updates) != 1 {
		t.Errorf("update log should still grow, got %d entries", len(task.Progress.Updates))
	}

	if err := tasklife.CompleteDeliverable(task, 0, now); err != nil {
		t.Fatalf("CompleteDeliverable failed: %v", err)
	}
	if got := tasklife.DeliverableProgress(task); got != 50 {
		t.Errorf("DeliverableProgress: got %d, want 50", got)
	}
}

func TestDaysRemaining_And_Overdue(t *testing.T) {
	now := time.Now().UTC()

	task := newTask(models.TaskInProgress)
	task.Timeline.DueDate = now.Add(49 * time.Hour)
	if got := tasklife.DaysRemaining(task, now); got != 3 {
		t.Errorf("49h remaining: got %d days, want 3 (ceil)", got)
	}
	if tasklife.IsOverdue(task, now) {
		t.Error("task with future due date should not be overdue")
	}

	task.Timeline.DueDate = now.Add(-48 * time.Hour)
	if !tasklife.IsOverdue(task, now) {
		t.Error("task past due should be overdue")
	}

	// Terminal tasks report zero days and are never overdue.
	task.Status = models.TaskCompleted
	if got := tasklife.DaysRemaining(task, now); got != 0 {
		t.Errorf("terminal task days remaining: got %d, want 0", got)
	}
	if tasklife.IsOverdue(task, now) {
		t.Error("terminal task should not be overdue")
	}
}

func TestRecomputePoints(t *testing.T) {
	task := newTask(models.TaskPending)
	task.Points.Base = 100
	task.Points.Bonus = 25
	tasklife.RecomputePoints(task)
	if task.Points.Total != 125 {
		t.Errorf("points total: got %d, want 125", task.Points.Total)
	}
}

package taskstore_test

import (
	"errors"
	"testing"
	"time"

	taskstore "github.com/volunteerhub/volunteerhub/internal/app/store/tasks"
	"github.com/volunteerhub/volunteerhub/internal/app/system/inputval"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"github.com/volunteerhub/volunteerhub/internal/domain/tasklife"
	"github.com/volunteerhub/volunteerhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTask() models.Task {
	now := time.Now().UTC()
	return models.Task{
		ProjectID: primitive.NewObjectID(),
		Title:     "Plant trees",
		Timeline: models.TaskTimeline{
			StartDate: now,
			DueDate:   now.Add(7 * 24 * time.Hour),
		},
		Points: models.TaskPoints{Base: 40, Bonus: 10},
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newTask())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.TaskPending {
		t.Errorf("new tasks start pending, got %q", created.Status)
	}
	if created.Points.Total != 50 {
		t.Errorf("points total: got %d, want 50", created.Points.Total)
	}
	if created.AssignedTo != nil {
		t.Error("new tasks start unassigned")
	}

	bad := newTask()
	bad.Timeline.DueDate = bad.Timeline.StartDate.Add(-time.Hour)
	if _, err := store.Create(ctx, bad); !errors.Is(err, inputval.ErrInvalid) {
		t.Errorf("inverted timeline: got %v, want ErrInvalid", err)
	}
}

func TestAssignAndLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task, err := store.Create(ctx, newTask())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	user := primitive.NewObjectID()
	updated, err := store.Assign(ctx, task.ID, user)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if updated.Status != models.TaskAssigned {
		t.Errorf("status: got %q, want assigned", updated.Status)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != user {
		t.Error("assignee not recorded")
	}

	if _, err := store.Start(ctx, task.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := store.Cancel(ctx, task.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	// Cancelled is terminal: no reassignment.
	if _, err := store.Assign(ctx, task.ID, primitive.NewObjectID()); !errors.Is(err, tasklife.ErrTerminal) {
		t.Errorf("assign cancelled: got %v, want ErrTerminal", err)
	}
}

func TestApplyProgress_PromotesAtHundred(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task, err := store.Create(ctx, newTask())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	author := primitive.NewObjectID()

	updated, err := store.ApplyProgress(ctx, task.ID, 40, "halfway there", author, nil)
	if err != nil {
		t.Fatalf("ApplyProgress failed: %v", err)
	}
	if updated.Progress.Percentage != 40 {
		t.Errorf("percentage: got %d, want 40", updated.Progress.Percentage)
	}
	if len(updated.Progress.Updates) != 1 {
		t.Errorf("updates: got %d, want 1", len(updated.Progress.Updates))
	}

	updated, err = store.ApplyProgress(ctx, task.ID, 150, "done", author, nil)
	if err != nil {
		t.Fatalf("ApplyProgress failed: %v", err)
	}
	if updated.Progress.Percentage != 100 {
		t.Errorf("percentage should clamp to 100, got %d", updated.Progress.Percentage)
	}
	if updated.Status != models.TaskCompleted {
		t.Errorf("status: got %q, want completed", updated.Status)
	}
	if updated.Timeline.CompletedDate == nil {
		t.Error("expected completed date to be stamped")
	}
}

func TestApplyProgress_CancelledRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task, err := store.Create(ctx, newTask())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.AddDeliverable(ctx, task.ID, "report"); err != nil {
		t.Fatalf("AddDeliverable failed: %v", err)
	}
	if _, err := store.Cancel(ctx, task.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if _, err := store.ApplyProgress(ctx, task.ID, 100, "done", primitive.NewObjectID(), nil); !errors.Is(err, tasklife.ErrTerminal) {
		t.Errorf("progress on cancelled: got %v, want ErrTerminal", err)
	}
	if _, err := store.CompleteDeliverable(ctx, task.ID, 0); !errors.Is(err, tasklife.ErrTerminal) {
		t.Errorf("deliverable on cancelled: got %v, want ErrTerminal", err)
	}

	reloaded, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.Status != models.TaskCancelled {
		t.Errorf("status: got %q, want cancelled", reloaded.Status)
	}
	if reloaded.Timeline.CompletedDate != nil {
		t.Error("completed date must stay unset")
	}
}

func TestComplete_RecordsHours(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task, err := store.Create(ctx, newTask())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := store.Complete(ctx, task.ID, 6.5)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if updated.Status != models.TaskCompleted {
		t.Errorf("status: got %q, want completed", updated.Status)
	}
	if updated.Progress.Percentage != 100 {
		t.Errorf("percentage: got %d, want 100", updated.Progress.Percentage)
	}
	if updated.ActualHours != 6.5 {
		t.Errorf("actual hours: got %v, want 6.5", updated.ActualHours)
	}

	// Completing again keeps the original completed date.
	first := *updated.Timeline.CompletedDate
	updated, err = store.Complete(ctx, task.ID, 7)
	if err != nil {
		t.Fatalf("second Complete failed: %v", err)
	}
	if !updated.Timeline.CompletedDate.Equal(first) {
		t.Error("completed date should not move on re-completion")
	}
}

func TestDeliverables_DrivePercentage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task, err := store.Create(ctx, newTask())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, title := range []string{"survey", "report", "photos"} {
		if _, err := store.AddDeliverable(ctx, task.ID, title); err != nil {
			t.Fatalf("AddDeliverable failed: %v", err)
		}
	}

	updated, err := store.CompleteDeliverable(ctx, task.ID, 0)
	if err != nil {
		t.Fatalf("CompleteDeliverable failed: %v", err)
	}
	if updated.Progress.Percentage != 33 {
		t.Errorf("1/3 done: got %d, want 33", updated.Progress.Percentage)
	}

	// A manual progress report still lands in the log, but the
	// deliverable-derived percentage stays authoritative.
	updated, err = store.ApplyProgress(ctx, task.ID, 90, "almost", primitive.NewObjectID(), nil)
	if err != nil {
		t.Fatalf("ApplyProgress failed: %v", err)
	}
	if updated.Progress.Percentage != 33 {
		t.Errorf("percentage after manual report: got %d, want 33", updated.Progress.Percentage)
	}
	if len(updated.Progress.Updates) != 1 {
		t.Errorf("updates: got %d, want 1", len(updated.Progress.Updates))
	}

	if _, err := store.CompleteDeliverable(ctx, task.ID, 1); err != nil {
		t.Fatalf("CompleteDeliverable failed: %v", err)
	}
	updated, err = store.CompleteDeliverable(ctx, task.ID, 2)
	if err != nil {
		t.Fatalf("CompleteDeliverable failed: %v", err)
	}
	if updated.Progress.Percentage != 100 {
		t.Errorf("3/3 done: got %d, want 100", updated.Progress.Percentage)
	}
	if updated.Status != models.TaskCompleted {
		t.Errorf("status: got %q, want completed", updated.Status)
	}

	if _, err := store.CompleteDeliverable(ctx, task.ID, 5); !errors.Is(err, tasklife.ErrDeliverableIndex) {
		t.Errorf("bad index: got %v, want ErrDeliverableIndex", err)
	}
}

func TestUpdateDetails_RecomputesPoints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task, err := store.Create(ctx, newTask())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	base := 100
	bonus := 25
	updated, err := store.UpdateDetails(ctx, task.ID, taskstore.DetailUpdate{
		BasePoints:  &base,
		BonusPoints: &bonus,
	})
	if err != nil {
		t.Fatalf("UpdateDetails failed: %v", err)
	}
	if updated.Points.Total != 125 {
		t.Errorf("points total: got %d, want 125", updated.Points.Total)
	}

	neg := -1
	if _, err := store.UpdateDetails(ctx, task.ID, taskstore.DetailUpdate{BasePoints: &neg}); !errors.Is(err, inputval.ErrInvalid) {
		t.Errorf("negative base: got %v, want ErrInvalid", err)
	}
}

func TestListByAssignee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		task, err := store.Create(ctx, newTask())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if i < 2 {
			if _, err := store.Assign(ctx, task.ID, user); err != nil {
				t.Fatalf("Assign failed: %v", err)
			}
		}
	}

	mine, err := store.ListByAssignee(ctx, user, "")
	if err != nil {
		t.Fatalf("ListByAssignee failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("assigned tasks: got %d, want 2", len(mine))
	}

	assigned, err := store.ListByAssignee(ctx, user, models.TaskAssigned)
	if err != nil {
		t.Fatalf("ListByAssignee failed: %v", err)
	}
	if len(assigned) != 2 {
		t.Errorf("status filter: got %d, want 2", len(assigned))
	}
}

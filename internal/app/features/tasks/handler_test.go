package tasks_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/features/tasks"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/app/system/mailer"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"github.com/volunteerhub/volunteerhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*tasks.Handler, http.Handler) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := tasks.NewHandler(db, nil, mailer.New("", "noreply@example.com", "VolunteerHub", zap.NewNop()), zap.NewNop())
	return h, tasks.Routes(h)
}

func asUser(req *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(req, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	})
}

type scene struct {
	owner     models.User
	volunteer models.User
	project   models.Project
	task      models.Task
}

func buildScene(t *testing.T, h *tasks.Handler) scene {
	t.Helper()
	fixtures := testutil.NewFixtures(t, h.DB)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com", models.RoleNGO)
	ngo := fixtures.CreateNGO(ctx, "Green Earth", owner.ID)
	project := fixtures.CreateProject(ctx, "Beach Cleanup", ngo.ID, 5)
	volunteer := fixtures.CreateUser(ctx, "Jane", "jane@example.com", models.RoleVolunteer)
	task := fixtures.CreateTask(ctx, "Collect samples", project.ID, 100)

	return scene{owner: owner, volunteer: volunteer, project: project, task: task}
}

func TestHandleCreate(t *testing.T) {
	h, _ := newTestHandler(t)
	sc := buildScene(t, h)

	// Creation is mounted under the owning project.
	router := chi.NewRouter()
	router.Post("/projects/{id}/tasks", h.HandleCreate)
	createURL := "/projects/" + sc.project.ID.Hex() + "/tasks"

	payload := `{
		"title": "Write report",
		"base_points": 80,
		"bonus_points": 20,
		"start_date": "2026-09-01T00:00:00Z",
		"due_date": "2026-09-10T00:00:00Z"
	}`

	// Volunteers cannot create tasks.
	req := asUser(httptest.NewRequest("POST", createURL, strings.NewReader(payload)), sc.volunteer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("volunteer create: got %d, want 403", rec.Code)
	}

	req = asUser(httptest.NewRequest("POST", createURL, strings.NewReader(payload)), sc.owner)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if created.Status != models.TaskPending {
		t.Errorf("status: got %q, want %q", created.Status, models.TaskPending)
	}
	if created.Points.Total != 100 {
		t.Errorf("total points: got %d, want 100", created.Points.Total)
	}
}

func TestAssignAndStatus(t *testing.T) {
	h, router := newTestHandler(t)
	sc := buildScene(t, h)

	body := `{"user_id":"` + sc.volunteer.ID.Hex() + `"}`
	req := asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/assign", strings.NewReader(body)), sc.owner)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: got %d: %s", rec.Code, rec.Body.String())
	}

	// The assignee can start their own task.
	req = asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/status", strings.NewReader(`{"status":"in-progress"}`)), sc.volunteer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if updated.Status != models.TaskInProgress {
		t.Errorf("status: got %q, want %q", updated.Status, models.TaskInProgress)
	}

	// A bystander can do neither.
	fixtures := testutil.NewFixtures(t, h.DB)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	stranger := fixtures.CreateUser(ctx, "Mallory", "mallory@example.com", models.RoleVolunteer)

	req = asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/status", strings.NewReader(`{"status":"on-hold"}`)), stranger)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger: got %d, want 403", rec.Code)
	}
}

func TestHandleComplete_CreditsAssignee(t *testing.T) {
	h, router := newTestHandler(t)
	sc := buildScene(t, h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := h.Tasks.Assign(ctx, sc.task.ID, sc.volunteer.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	req := asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/complete", strings.NewReader(`{"actual_hours":6}`)), sc.owner)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Task      models.Task `json:"task"`
		Points    int         `json:"points_awarded"`
		NewBadges []string    `json:"new_badges"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Task.Status != models.TaskCompleted {
		t.Errorf("status: got %q, want %q", resp.Task.Status, models.TaskCompleted)
	}
	if resp.Points != 100 {
		t.Errorf("points awarded: got %d, want 100", resp.Points)
	}

	credited, err := h.Users.GetByID(ctx, sc.volunteer.ID)
	if err != nil {
		t.Fatalf("load volunteer: %v", err)
	}
	if credited.Points.Total != 100 {
		t.Errorf("ledger total: got %d, want 100", credited.Points.Total)
	}
	if credited.Statistics.TasksCompleted != 1 {
		t.Errorf("tasks completed: got %d, want 1", credited.Statistics.TasksCompleted)
	}
	if credited.Statistics.HoursVolunteered != 6 {
		t.Errorf("hours: got %v, want 6", credited.Statistics.HoursVolunteered)
	}
	if len(credited.Badges) != 1 || credited.Badges[0].Name != "First Steps" {
		t.Errorf("badges: got %+v", credited.Badges)
	}

	// Completing again is idempotent for the ledger.
	req = asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/complete", strings.NewReader(`{}`)), sc.owner)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-complete: got %d: %s", rec.Code, rec.Body.String())
	}
	credited, err = h.Users.GetByID(ctx, sc.volunteer.ID)
	if err != nil {
		t.Fatalf("reload volunteer: %v", err)
	}
	if credited.Points.Total != 100 {
		t.Errorf("double credit: got %d, want 100", credited.Points.Total)
	}
}

func TestHandleComplete_UnassignedAwardsNothing(t *testing.T) {
	h, router := newTestHandler(t)
	sc := buildScene(t, h)

	req := asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/complete", strings.NewReader(`{}`)), sc.owner)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Points int `json:"points_awarded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Points != 0 {
		t.Errorf("points awarded: got %d, want 0", resp.Points)
	}
}

func TestHandleProgress_HundredCreditsAssignee(t *testing.T) {
	h, router := newTestHandler(t)
	sc := buildScene(t, h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := h.Tasks.Assign(ctx, sc.task.ID, sc.volunteer.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	req := asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/progress", strings.NewReader(`{"percentage":100,"message":"all done"}`)), sc.volunteer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if updated.Status != models.TaskCompleted {
		t.Fatalf("status: got %q, want %q", updated.Status, models.TaskCompleted)
	}

	credited, err := h.Users.GetByID(ctx, sc.volunteer.ID)
	if err != nil {
		t.Fatalf("load volunteer: %v", err)
	}
	if credited.Points.Total != 100 {
		t.Errorf("ledger total: got %d, want 100", credited.Points.Total)
	}
	if credited.Statistics.TasksCompleted != 1 {
		t.Errorf("tasks completed: got %d, want 1", credited.Statistics.TasksCompleted)
	}

	// A later explicit complete must not pay out a second time.
	req = asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/complete", strings.NewReader(`{}`)), sc.owner)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-complete: got %d: %s", rec.Code, rec.Body.String())
	}
	credited, err = h.Users.GetByID(ctx, sc.volunteer.ID)
	if err != nil {
		t.Fatalf("reload volunteer: %v", err)
	}
	if credited.Points.Total != 100 {
		t.Errorf("double credit: got %d, want 100", credited.Points.Total)
	}
}

func TestHandleProgress_CancelledRejected(t *testing.T) {
	h, router := newTestHandler(t)
	sc := buildScene(t, h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := h.Tasks.Assign(ctx, sc.task.ID, sc.volunteer.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := h.Tasks.Cancel(ctx, sc.task.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	req := asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/progress", strings.NewReader(`{"percentage":100,"message":"resurrect"}`)), sc.volunteer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("progress on cancelled task: got %d, want 422: %s", rec.Code, rec.Body.String())
	}

	reloaded, err := h.Tasks.GetByID(ctx, sc.task.ID)
	if err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if reloaded.Status != models.TaskCancelled {
		t.Errorf("status: got %q, want %q", reloaded.Status, models.TaskCancelled)
	}
	if reloaded.Timeline.CompletedDate != nil {
		t.Error("CompletedDate must stay unset on a cancelled task")
	}

	credited, err := h.Users.GetByID(ctx, sc.volunteer.ID)
	if err != nil {
		t.Fatalf("load volunteer: %v", err)
	}
	if credited.Points.Total != 0 {
		t.Errorf("cancelled task must not pay out, ledger total %d", credited.Points.Total)
	}
}

func TestDeliverablesDriveProgress(t *testing.T) {
	h, router := newTestHandler(t)
	sc := buildScene(t, h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := h.Tasks.Assign(ctx, sc.task.ID, sc.volunteer.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	for _, title := range []string{"Draft", "Final"} {
		req := asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/deliverables", strings.NewReader(`{"title":"`+title+`"}`)), sc.owner)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("add %s: got %d: %s", title, rec.Code, rec.Body.String())
		}
	}

	req := asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/deliverables/0/complete", nil), sc.volunteer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete deliverable: got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if updated.Progress.Percentage != 50 {
		t.Errorf("percentage: got %d, want 50", updated.Progress.Percentage)
	}

	req = asUser(httptest.NewRequest("POST", "/"+sc.task.ID.Hex()+"/deliverables/1/complete", nil), sc.volunteer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete last deliverable: got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if updated.Status != models.TaskCompleted || updated.Progress.Percentage != 100 {
		t.Errorf("final state: status %q pct %d", updated.Status, updated.Progress.Percentage)
	}

	// Completing the last deliverable pays out like the complete endpoint.
	credited, err := h.Users.GetByID(ctx, sc.volunteer.ID)
	if err != nil {
		t.Fatalf("load volunteer: %v", err)
	}
	if credited.Points.Total != 100 {
		t.Errorf("ledger total: got %d, want 100", credited.Points.Total)
	}
	if credited.Statistics.TasksCompleted != 1 {
		t.Errorf("tasks completed: got %d, want 1", credited.Statistics.TasksCompleted)
	}
}

package leaderboard_test

import (
	"testing"
	"time"

	"github.com/volunteerhub/volunteerhub/internal/app/store/queries/leaderboard"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"github.com/volunteerhub/volunteerhub/internal/domain/rank"
	"github.com/volunteerhub/volunteerhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestTopN_PointsOrderAndVisibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateVolunteerWithPoints(ctx, "Alice", 500)
	fixtures.CreateVolunteerWithPoints(ctx, "Bob", 300)
	fixtures.CreateVolunteerWithPoints(ctx, "Cara", 100)

	// Hidden stats and disabled accounts never appear.
	hidden := fixtures.CreateVolunteerWithPoints(ctx, "Dan", 900)
	if _, err := db.Collection("users").UpdateByID(ctx, hidden.ID,
		bson.M{"$set": bson.M{"stats_visible": false}}); err != nil {
		t.Fatalf("hide stats: %v", err)
	}
	disabled := fixtures.CreateVolunteerWithPoints(ctx, "Eve", 800)
	if _, err := db.Collection("users").UpdateByID(ctx, disabled.ID,
		bson.M{"$set": bson.M{"status": models.StatusDisabled}}); err != nil {
		t.Fatalf("disable account: %v", err)
	}

	top, err := leaderboard.TopN(ctx, db, rank.MetricPoints, 10, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("TopN failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("rows: got %d, want 3", len(top))
	}
	want := []struct {
		name  string
		value float64
	}{{"Alice", 500}, {"Bob", 300}, {"Cara", 100}}
	for i, w := range want {
		if top[i].FullName != w.name || top[i].Value != w.value {
			t.Errorf("row %d: got (%s, %v), want (%s, %v)",
				i, top[i].FullName, top[i].Value, w.name, w.value)
		}
	}
}

func TestTopN_PeriodWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	old := now.Add(-60 * 24 * time.Hour)

	// Alice earned everything long ago; Bob earned this month.
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com", models.RoleVolunteer)
	if _, err := db.Collection("users").UpdateByID(ctx, alice.ID, bson.M{"$set": bson.M{
		"points.total": 500,
		"points.earned": []models.PointEntry{
			{Amount: 500, Reason: "seed", Timestamp: old},
		},
	}}); err != nil {
		t.Fatalf("seed alice: %v", err)
	}
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com", models.RoleVolunteer)
	if _, err := db.Collection("users").UpdateByID(ctx, bob.ID, bson.M{"$set": bson.M{
		"points.total": 200,
		"points.earned": []models.PointEntry{
			{Amount: 200, Reason: "seed", Timestamp: now.Add(-time.Hour)},
		},
	}}); err != nil {
		t.Fatalf("seed bob: %v", err)
	}

	since := now.Add(-30 * 24 * time.Hour)
	top, err := leaderboard.TopN(ctx, db, rank.MetricPoints, 10, since, time.Time{})
	if err != nil {
		t.Fatalf("TopN failed: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("windowed rows: got %d, want 1", len(top))
	}
	if top[0].FullName != "Bob" || top[0].Value != 200 {
		t.Errorf("windowed leader: got (%s, %v), want (Bob, 200)", top[0].FullName, top[0].Value)
	}
}

func TestRank_Position(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateVolunteerWithPoints(ctx, "Alice", 500)
	bob := fixtures.CreateVolunteerWithPoints(ctx, "Bob", 300)
	fixtures.CreateVolunteerWithPoints(ctx, "Cara", 300)
	fixtures.CreateVolunteerWithPoints(ctx, "Dan", 100)

	standing, err := leaderboard.Rank(ctx, db, bob.ID, rank.MetricPoints)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	// One user strictly above 300, so tied users share rank 2 out of 4.
	if standing.Rank != 2 {
		t.Errorf("rank: got %d, want 2", standing.Rank)
	}
	if standing.Percentile != 75 {
		t.Errorf("percentile: got %d, want 75", standing.Percentile)
	}
	if standing.Total != 4 {
		t.Errorf("total: got %d, want 4", standing.Total)
	}
}

func TestCategoryLeaders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com", models.RoleNGO)
	ngo := fixtures.CreateNGO(ctx, "Green Earth", owner.ID)

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com", models.RoleVolunteer)
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com", models.RoleVolunteer)

	now := time.Now().UTC()
	seedCompleted := func(title string, entries []models.ProjectVolunteer) {
		p := fixtures.CreateProject(ctx, title, ngo.ID, 10)
		if _, err := db.Collection("projects").UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
			"status":     models.ProjectCompleted,
			"volunteers": entries,
		}}); err != nil {
			t.Fatalf("seed project %s: %v", title, err)
		}
	}

	seedCompleted("Cleanup One", []models.ProjectVolunteer{
		{UserID: alice.ID, Status: models.RosterCompleted, JoinedDate: now, HoursContributed: 10},
		{UserID: bob.ID, Status: models.RosterCompleted, JoinedDate: now, HoursContributed: 4},
	})
	seedCompleted("Cleanup Two", []models.ProjectVolunteer{
		{UserID: alice.ID, Status: models.RosterCompleted, JoinedDate: now, HoursContributed: 6},
		// Bob only applied here; applications do not count.
		{UserID: bob.ID, Status: models.RosterApplied, JoinedDate: now},
	})

	leaders, err := leaderboard.CategoryLeaders(ctx, db, "environment", 10)
	if err != nil {
		t.Fatalf("CategoryLeaders failed: %v", err)
	}
	if len(leaders) != 2 {
		t.Fatalf("rows: got %d, want 2", len(leaders))
	}
	if leaders[0].UserID != alice.ID || leaders[0].ProjectsCompleted != 2 || leaders[0].HoursContributed != 16 {
		t.Errorf("first leader: got %+v", leaders[0])
	}
	if leaders[1].UserID != bob.ID || leaders[1].ProjectsCompleted != 1 {
		t.Errorf("second leader: got %+v", leaders[1])
	}
}

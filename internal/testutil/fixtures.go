package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		Role:         role,
		Status:       models.StatusActive,
		StatsVisible: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateVolunteerWithPoints creates an active, stats-visible volunteer
// whose ledger holds a single entry of the given amount.
func (f *Fixtures) CreateVolunteerWithPoints(ctx context.Context, fullName string, points int) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        text.Fold(fullName) + "@example.com",
		Role:         models.RoleVolunteer,
		Status:       models.StatusActive,
		StatsVisible: true,
		Points: models.Points{
			Total: points,
			Earned: []models.PointEntry{
				{Amount: points, Reason: "seed", Timestamp: now},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test volunteer: %v", err)
	}
	return user
}

// CreateNGO creates a verified test NGO owned by ownerID.
func (f *Fixtures) CreateNGO(ctx context.Context, name string, ownerID primitive.ObjectID) models.NGO {
	f.t.Helper()

	now := time.Now().UTC()
	ngo := models.NGO{
		ID:       primitive.NewObjectID(),
		Name:     name,
		NameCI:   text.Fold(name),
		Category: "environment",
		City:     "Test City",
		CityCI:   text.Fold("Test City"),
		Country:  "Testland",
		OwnerID:  ownerID,
		Verification: models.Verification{
			Status: models.VerificationVerified,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("ngos").InsertOne(ctx, ngo); err != nil {
		f.t.Fatalf("failed to create test NGO: %v", err)
	}
	return ngo
}

// CreateProject creates an active project with the given volunteer
// capacity, owned by ngoID.
func (f *Fixtures) CreateProject(ctx context.Context, title string, ngoID primitive.ObjectID, capacity int) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: "A test project",
		Category:    "environment",
		NGOID:       ngoID,
		Status:      models.ProjectActive,
		Requirements: models.ProjectRequirements{
			Volunteers: models.VolunteerCapacity{Total: capacity},
		},
		Timeline: models.ProjectTimeline{
			StartDate: now,
			EndDate:   now.Add(30 * 24 * time.Hour),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("projects").InsertOne(ctx, project); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateTask creates a pending task on projectID worth the given points.
func (f *Fixtures) CreateTask(ctx context.Context, title string, projectID primitive.ObjectID, basePoints int) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Title:     title,
		TitleCI:   text.Fold(title),
		Status:    models.TaskPending,
		Points: models.TaskPoints{
			Base:  basePoints,
			Total: basePoints,
		},
		Timeline: models.TaskTimeline{
			StartDate: now,
			DueDate:   now.Add(7 * 24 * time.Hour),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses.
const (
	ProjectDraft           = "draft"
	ProjectPendingApproval = "pending-approval"
	ProjectApproved        = "approved"
	ProjectActive          = "active"
	ProjectCompleted       = "completed"
	ProjectCancelled       = "cancelled"
	ProjectOnHold          = "on-hold"
	ProjectRejected        = "rejected"
)

// Volunteer roster statuses.
const (
	RosterApplied   = "applied"
	RosterAccepted  = "accepted"
	RosterRejected  = "rejected"
	RosterCompleted = "completed"
	RosterDropped   = "dropped"
)

// Milestone statuses.
const (
	MilestonePending    = "pending"
	MilestoneInProgress = "in-progress"
	MilestoneCompleted  = "completed"
	MilestoneDelayed    = "delayed"
)

// Project belongs to one NGO and owns its volunteer roster and milestones.
//
// NOTE:
//   - Requirements.Volunteers.Current is derived: always the count of
//     roster entries with status "accepted". It is recomputed after every
//     roster mutation and never written independently.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	NGOID       primitive.ObjectID `bson:"ngo_id" json:"ngo_id"`

	Status       string              `bson:"status" json:"status"`
	Requirements ProjectRequirements `bson:"requirements" json:"requirements"`
	Volunteers   []ProjectVolunteer  `bson:"volunteers,omitempty" json:"volunteers,omitempty"`
	Timeline     ProjectTimeline     `bson:"timeline" json:"timeline"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProjectRequirements captures volunteer capacity and needed skills.
type ProjectRequirements struct {
	Volunteers VolunteerCapacity `bson:"volunteers" json:"volunteers"`
	Skills     []string          `bson:"skills,omitempty" json:"skills,omitempty"`
}

// VolunteerCapacity pairs the configured capacity with the derived count
// of accepted volunteers.
type VolunteerCapacity struct {
	Total   int `bson:"total" json:"total"`     // capacity, >= 1
	Current int `bson:"current" json:"current"` // derived: count of accepted
}

// ProjectVolunteer is one roster entry on a project.
type ProjectVolunteer struct {
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role             string             `bson:"role" json:"role"`
	Status           string             `bson:"status" json:"status"`
	JoinedDate       time.Time          `bson:"joined_date" json:"joined_date"`
	HoursContributed float64            `bson:"hours_contributed" json:"hours_contributed"`
}

// ProjectTimeline holds the project schedule and its ordered milestones.
type ProjectTimeline struct {
	StartDate  time.Time   `bson:"start_date" json:"start_date"`
	EndDate    time.Time   `bson:"end_date" json:"end_date"`
	Milestones []Milestone `bson:"milestones,omitempty" json:"milestones,omitempty"`
}

// Milestone is a named checkpoint in the project timeline.
type Milestone struct {
	Title   string    `bson:"title" json:"title"`
	Status  string    `bson:"status" json:"status"`
	DueDate time.Time `bson:"due_date" json:"due_date"`
}

// VolunteerEntry returns the roster entry for userID, or nil.
func (p *Project) VolunteerEntry(userID primitive.ObjectID) *ProjectVolunteer {
	for i := range p.Volunteers {
		if p.Volunteers[i].UserID == userID {
			return &p.Volunteers[i]
		}
	}
	return nil
}

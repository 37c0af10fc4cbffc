// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents volunteers, NGO account owners, and admins.
//
// NOTE:
//   - Points and badges are owned by the user document and are only
//     mutated through userstore.AddPoints, never by direct field writes.
//     Points.Total must always equal the sum of Points.Earned amounts.
//   - Badges never contain duplicate names; a badge is never removed.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password,omitempty" json:"-"` // bcrypt hash
	Role       string             `bson:"role" json:"role"`            // volunteer | ngo | admin
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	// NGOID links an ngo-role user to the NGO document they manage.
	NGOID *primitive.ObjectID `bson:"ngo_id,omitempty" json:"ngo_id,omitempty"`

	Points     Points         `bson:"points" json:"points"`
	Badges     []Badge        `bson:"badges,omitempty" json:"badges,omitempty"`
	Statistics UserStatistics `bson:"statistics" json:"statistics"`

	// StatsVisible controls whether the user appears on leaderboards.
	StatsVisible bool `bson:"stats_visible" json:"stats_visible"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Points is the per-user point ledger: a running total plus the
// append-only log of earning events that the total is derived from.
type Points struct {
	Total  int          `bson:"total" json:"total"`
	Earned []PointEntry `bson:"earned,omitempty" json:"earned,omitempty"`
}

// PointEntry is one append-only record in the earned-points log.
type PointEntry struct {
	Amount    int                 `bson:"amount" json:"amount"`
	Reason    string              `bson:"reason" json:"reason"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
	ProjectID *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
}

// Badge is an earned badge with its award time.
type Badge struct {
	Name     string    `bson:"name" json:"name"`
	EarnedAt time.Time `bson:"earned_at" json:"earned_at"`
}

// UserStatistics holds the activity counters shown on profiles and used
// for leaderboard metrics.
type UserStatistics struct {
	ProjectsCompleted int     `bson:"projects_completed" json:"projects_completed"`
	TasksCompleted    int     `bson:"tasks_completed" json:"tasks_completed"`
	HoursVolunteered  float64 `bson:"hours_volunteered" json:"hours_volunteered"`
	ImpactScore       int     `bson:"impact_score" json:"impact_score"`
}

// BadgeNames returns the names of the user's earned badges.
func (u *User) BadgeNames() []string {
	names := make([]string, 0, len(u.Badges))
	for _, b := range u.Badges {
		names = append(names, b.Name)
	}
	return names
}

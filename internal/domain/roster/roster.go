// Package roster implements the volunteer application/acceptance rules
// for a project: duplicate and capacity guards on apply, a validated
// status transition table, and the derived accepted count.
//
// The transition table is a deliberate tightening: the workflow the rules
// were lifted from allowed any status jump. Transitions out of rejected
// back to applied are allowed so an NGO can reconsider an application.
package roster

import (
	"errors"
	"time"

	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrDuplicateApplication is returned when the user already has a
	// roster entry of any status.
	ErrDuplicateApplication = errors.New("user has already applied to this project")
	// ErrCapacityExceeded is returned when accepted volunteers have
	// reached the configured capacity.
	ErrCapacityExceeded = errors.New("project volunteer capacity reached")
	// ErrNotInRoster is returned when the user has no roster entry.
	ErrNotInRoster = errors.New("user is not in the project roster")
	// ErrBadStatus is returned for an unknown roster status value.
	ErrBadStatus = errors.New("unknown roster status")
	// ErrBadTransition is returned for a disallowed status transition.
	ErrBadTransition = errors.New("roster status transition not allowed")
)

// transitions is the allowed roster status graph.
var transitions = map[string][]string{
	models.RosterApplied:   {models.RosterAccepted, models.RosterRejected, models.RosterDropped},
	models.RosterAccepted:  {models.RosterCompleted, models.RosterDropped},
	models.RosterRejected:  {models.RosterApplied},
	models.RosterCompleted: {},
	models.RosterDropped:   {models.RosterApplied},
}

// Apply appends a new roster entry with status applied. It fails when the
// user is already present (any status) or when accepted volunteers have
// reached capacity.
func Apply(p *models.Project, userID primitive.ObjectID, role string, now time.Time) error {
	if p.VolunteerEntry(userID) != nil {
		return ErrDuplicateApplication
	}
	if p.Requirements.Volunteers.Current >= p.Requirements.Volunteers.Total {
		return ErrCapacityExceeded
	}
	if role == "" {
		role = "volunteer"
	}

	p.Volunteers = append(p.Volunteers, models.ProjectVolunteer{
		UserID:     userID,
		Role:       role,
		Status:     models.RosterApplied,
		JoinedDate: now,
	})
	RecomputeCurrent(p)
	return nil
}

// UpdateStatus moves the user's roster entry to newStatus after checking
// the transition table, then recomputes the accepted count. Accepting a
// volunteer when capacity is already full is rejected.
func UpdateStatus(p *models.Project, userID primitive.ObjectID, newStatus string) error {
	entry := p.VolunteerEntry(userID)
	if entry == nil {
		return ErrNotInRoster
	}

	allowed, ok := transitions[entry.Status]
	if !ok {
		return ErrBadStatus
	}
	if _, valid := transitions[newStatus]; !valid {
		return ErrBadStatus
	}
	if newStatus == entry.Status {
		// No-op transition; nothing to recompute.
		return nil
	}

	permitted := false
	for _, s := range allowed {
		if s == newStatus {
			permitted = true
			break
		}
	}
	if !permitted {
		return ErrBadTransition
	}

	if newStatus == models.RosterAccepted &&
		p.Requirements.Volunteers.Current >= p.Requirements.Volunteers.Total {
		return ErrCapacityExceeded
	}

	entry.Status = newStatus
	RecomputeCurrent(p)
	return nil
}

// AddHours credits contributed hours to the user's roster entry.
func AddHours(p *models.Project, userID primitive.ObjectID, hours float64) error {
	entry := p.VolunteerEntry(userID)
	if entry == nil {
		return ErrNotInRoster
	}
	entry.HoursContributed += hours
	return nil
}

// RecomputeCurrent refreshes requirements.volunteers.current as the count
// of roster entries with status accepted. Called after every roster
// mutation; current is never written independently.
func RecomputeCurrent(p *models.Project) {
	n := 0
	for _, v := range p.Volunteers {
		if v.Status == models.RosterAccepted {
			n++
		}
	}
	p.Requirements.Volunteers.Current = n
}

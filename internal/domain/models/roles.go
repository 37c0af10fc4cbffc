// internal/domain/models/roles.go
package models

// User roles. A user is exactly one of these; NGO accounts are users with
// RoleNGO that own an NGO document.
const (
	RoleVolunteer = "volunteer"
	RoleNGO       = "ngo"
	RoleAdmin     = "admin"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// IsValidRole checks if a value is a recognized user role.
func IsValidRole(role string) bool {
	switch role {
	case RoleVolunteer, RoleNGO, RoleAdmin:
		return true
	}
	return false
}

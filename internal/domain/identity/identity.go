package identity

import "github.com/google/uuid"

// Role is the caller role carried in the authenticated token. Authentication
// itself lives outside this service; we only consume the resulting identity.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// Staff roles may bypass the advance-booking window on direct creation.
// Off-time checks are never bypassed, regardless of role.
func (r Role) CanBypassAdvanceWindow() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Actor is the authenticated subject of a request.
type Actor struct {
	ID         uuid.UUID
	Role       Role
	BusinessID uuid.UUID
}

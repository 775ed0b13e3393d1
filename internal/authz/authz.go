// Package authz decides who may approve or reject a leave request.
package authz

import "go-leave/internal/domain"

// Actor is the user acting on a request, resolved from the users table.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       domain.Role
}

type Policy struct{}

func NewPolicy() Policy {
	return Policy{}
}

// CanDecide reports whether actor may decide a request whose owner reports to
// ownerSuperiorID. Admin and HR decide anything. Every other role decides
// only for direct reports, read from the hierarchy rather than the role, with
// no walk further up.
func (Policy) CanDecide(actor Actor, ownerSuperiorID *string) bool {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleHR:
		return true
	case domain.RoleSuperior, domain.RoleEmployee:
		return isDirectSuperior(actor, ownerSuperiorID)
	default:
		return false
	}
}

func isDirectSuperior(actor Actor, ownerSuperiorID *string) bool {
	return ownerSuperiorID != nil && actor.EmployeeID != "" && *ownerSuperiorID == actor.EmployeeID
}

// DecidesAll reports whether actor may decide requests outside their own
// reporting line.
func (Policy) DecidesAll(actor Actor) bool {
	return actor.Role == domain.RoleAdmin || actor.Role == domain.RoleHR
}

// CanView reports whether actor may read a request owned by ownerID.
func (p Policy) CanView(actor Actor, ownerID string, ownerSuperiorID *string) bool {
	if actor.EmployeeID != "" && actor.EmployeeID == ownerID {
		return true
	}
	return p.CanDecide(actor, ownerSuperiorID)
}

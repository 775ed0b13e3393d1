package rbac

import "go-leave/internal/domain"

const (
	ResourceLeave    = "leave"
	ResourceEmployee = "employee"

	ActionCreate = "create"
	ActionRead   = "read"
	ActionDecide = "decide"
)

type permission struct {
	Role     domain.Role
	Resource string
	Action   string
}

// roleHierarchy lists (member, parent) pairs: each role inherits every
// permission of the role it points to.
var roleHierarchy = [][2]domain.Role{
	{domain.RoleSuperior, domain.RoleEmployee},
	{domain.RoleHR, domain.RoleSuperior},
	{domain.RoleAdmin, domain.RoleHR},
}

var staticPermissions = []permission{
	{domain.RoleEmployee, ResourceLeave, ActionCreate},
	{domain.RoleEmployee, ResourceLeave, ActionRead},
	{domain.RoleEmployee, ResourceEmployee, ActionRead},
	// Any role may reach the decide routes; the reporting line is checked per request.
	{domain.RoleEmployee, ResourceLeave, ActionDecide},
}

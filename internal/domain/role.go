package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "rh"
	RoleSuperior Role = "superieur"
	RoleEmployee Role = "employe"
)

func AllRoles() []Role {
	return []Role{RoleAdmin, RoleHR, RoleSuperior, RoleEmployee}
}

func ParseRole(v string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(v)))
	switch r {
	case RoleAdmin, RoleHR, RoleSuperior, RoleEmployee:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", v)
	}
}

func (r Role) String() string {
	return string(r)
}

package auth

import "strings"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDean     Role = "dean"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

var Roles = []Role{RoleAdmin, RoleDean, RoleManager, RoleEmployee}

// ParseRole maps a stored role string onto the closed set. Unknown values
// fall back to RoleEmployee, the least privileged role.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleDean:
		return RoleDean
	case RoleManager:
		return RoleManager
	default:
		return RoleEmployee
	}
}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GlobalScope reports whether the role sees every employee regardless of
// reporting lines.
func (r Role) GlobalScope() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

type UserContext struct {
	UserID     string
	EmployeeID string
	Role       Role
}

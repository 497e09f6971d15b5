package user

import "strings"

type Role string

const (
	RoleAdmin    Role = "ADMIN"    // HR / management login, full access
	RoleManager  Role = "MANAGER"  // Can upload and export
	RoleEmployee Role = "EMPLOYEE" // Sees only their own record
)

// ParseRole accepts any casing and reports false for unknown roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return r, true
	}
	return "", false
}

// Principal is the authenticated caller as carried by the access token.
type Principal struct {
	Username   string
	Role       Role
	EmployeeID string
}

// IsManager checks if the caller is a manager or admin
func (p Principal) IsManager() bool {
	return p.Role == RoleManager || p.Role == RoleAdmin
}

// IsEmployee reports whether the caller is restricted to their own record.
func (p Principal) IsEmployee() bool {
	return p.Role == RoleEmployee
}

// CanSee reports whether the caller may read the given employee's record.
func (p Principal) CanSee(employeeID string) bool {
	if !p.IsEmployee() {
		return true
	}
	return p.EmployeeID != "" && p.EmployeeID == employeeID
}

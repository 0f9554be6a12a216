package domain

import "time"

// UserRole is the legacy role enum. It remains authoritative for users
// without a role reference.
type UserRole string

const (
	UserRoleAgencyOwner UserRole = "agency_owner"
	UserRoleStaffMember UserRole = "staff_member"
)

// User is an account belonging to at most one agency.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	RoleID       *string
	AgencyID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ResolvedRole unifies the transitional dual role representation: either
// the legacy enum or a custom Role record. Callers resolve it once at load
// time instead of branching on role_id everywhere.
type ResolvedRole struct {
	System *UserRole
	Custom *Role
}

// ResolveRole builds the tagged variant for a user. A loaded custom role
// takes precedence; the enum is the fallback.
func ResolveRole(user *User, custom *Role) ResolvedRole {
	if custom != nil {
		return ResolvedRole{Custom: custom}
	}
	role := user.Role
	return ResolvedRole{System: &role}
}

// Label returns the display name of the role.
func (r ResolvedRole) Label() string {
	if r.Custom != nil {
		return r.Custom.Name
	}
	if r.System != nil {
		return string(*r.System)
	}
	return ""
}

// Permissions returns the fine-grained capability keys. Legacy enum roles
// carry no permission set and grant nothing here.
func (r ResolvedRole) Permissions() []string {
	if r.Custom != nil {
		return r.Custom.Permissions
	}
	return nil
}

// HasPermission reports whether the role grants the capability key.
func (r ResolvedRole) HasPermission(key string) bool {
	for _, perm := range r.Permissions() {
		if perm == key {
			return true
		}
	}
	return false
}

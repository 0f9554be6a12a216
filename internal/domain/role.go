package domain

import (
	"regexp"
	"time"
)

// Role is a named permission bundle. System roles are immutable and
// cannot be deleted.
type Role struct {
	ID          string
	Name        string
	Permissions []string
	IsSystem    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var roleNamePattern = regexp.MustCompile(`^[a-z_]+$`)

// ValidRoleName reports whether a role name matches the required pattern.
func ValidRoleName(name string) bool {
	return roleNamePattern.MatchString(name)
}

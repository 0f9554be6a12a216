// Package policy factors authorization checks into predicates so that
// services never weave ownership rules into each operation ad hoc.
package policy

import (
	"github.com/spec-kit/staffing-service/internal/domain"
)

// IsAgencyOwner reports whether the user owns the agency.
func IsAgencyOwner(user *domain.User, agency *domain.Agency) bool {
	if user == nil || agency == nil {
		return false
	}
	return user.ID == agency.OwnerUserID
}

// IsMember reports whether the user belongs to the agency.
func IsMember(user *domain.User, agency *domain.Agency) bool {
	if user == nil || agency == nil || user.AgencyID == nil {
		return false
	}
	return *user.AgencyID == agency.ID
}

// SameAgency reports whether the user belongs to the event's agency.
func SameAgency(user *domain.User, event *domain.Event) bool {
	if user == nil || event == nil || user.AgencyID == nil {
		return false
	}
	return *user.AgencyID == event.AgencyID
}

// CanManageAssignment reports whether the actor may accept, reject or
// remove an assignment: they must own the assignment's event's agency.
func CanManageAssignment(actor *domain.User, event *domain.Event, agency *domain.Agency) bool {
	if event == nil || agency == nil || event.AgencyID != agency.ID {
		return false
	}
	return IsAgencyOwner(actor, agency)
}

// CanViewEvent reports whether the user may see the event at all.
func CanViewEvent(user *domain.User, event *domain.Event) bool {
	return SameAgency(user, event)
}

// CanSubscribeToEvent gates real-time channel subscriptions: the viewer
// must see the event and either own the agency or hold an accepted
// assignment on it.
func CanSubscribeToEvent(user *domain.User, event *domain.Event, agency *domain.Agency, assignment *domain.EventAssignment) bool {
	if !CanViewEvent(user, event) {
		return false
	}
	if IsAgencyOwner(user, agency) {
		return true
	}
	return assignment != nil && assignment.Status == domain.AssignmentStatusAccepted
}

// HasPermission resolves fine-grained capability checks through the
// user's role reference. Legacy enum roles grant no permissions.
func HasPermission(user *domain.User, role *domain.Role, key string) bool {
	if user == nil {
		return false
	}
	return domain.ResolveRole(user, role).HasPermission(key)
}

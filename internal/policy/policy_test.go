package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/staffing-service/internal/domain"
)

func agencyMember(agencyID string) *domain.User {
	return &domain.User{ID: "member-1", Role: domain.UserRoleStaffMember, AgencyID: &agencyID}
}

func TestIsAgencyOwner(t *testing.T) {
	agency := &domain.Agency{ID: "a1", OwnerUserID: "u1"}

	assert.True(t, IsAgencyOwner(&domain.User{ID: "u1"}, agency))
	assert.False(t, IsAgencyOwner(&domain.User{ID: "u2"}, agency))
	assert.False(t, IsAgencyOwner(nil, agency))
	assert.False(t, IsAgencyOwner(&domain.User{ID: "u1"}, nil))
}

func TestSameAgency(t *testing.T) {
	event := &domain.Event{ID: "e1", AgencyID: "a1"}

	assert.True(t, SameAgency(agencyMember("a1"), event))
	assert.False(t, SameAgency(agencyMember("a2"), event))
	assert.False(t, SameAgency(&domain.User{ID: "drifter"}, event), "no agency at all")
}

func TestCanManageAssignment(t *testing.T) {
	agency := &domain.Agency{ID: "a1", OwnerUserID: "owner"}
	event := &domain.Event{ID: "e1", AgencyID: "a1"}

	owner := &domain.User{ID: "owner"}
	assert.True(t, CanManageAssignment(owner, event, agency))

	member := agencyMember("a1")
	assert.False(t, CanManageAssignment(member, event, agency), "membership alone is not enough")

	foreignEvent := &domain.Event{ID: "e2", AgencyID: "a2"}
	assert.False(t, CanManageAssignment(owner, foreignEvent, agency), "event outside the agency")
}

func TestCanSubscribeToEvent(t *testing.T) {
	agency := &domain.Agency{ID: "a1", OwnerUserID: "owner"}
	event := &domain.Event{ID: "e1", AgencyID: "a1"}
	ownerAgencyID := "a1"
	owner := &domain.User{ID: "owner", AgencyID: &ownerAgencyID}
	member := agencyMember("a1")

	assert.True(t, CanSubscribeToEvent(owner, event, agency, nil), "owner needs no assignment")
	assert.False(t, CanSubscribeToEvent(member, event, agency, nil), "member without assignment")

	pending := &domain.EventAssignment{Status: domain.AssignmentStatusPending}
	assert.False(t, CanSubscribeToEvent(member, event, agency, pending), "pending is not enough")

	accepted := &domain.EventAssignment{Status: domain.AssignmentStatusAccepted}
	assert.True(t, CanSubscribeToEvent(member, event, agency, accepted))

	outsider := agencyMember("a2")
	assert.False(t, CanSubscribeToEvent(outsider, event, agency, accepted), "other agency never subscribes")
}

func TestHasPermission(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.UserRoleStaffMember}
	role := &domain.Role{Name: "shift_lead", Permissions: []string{"events.manage"}}

	assert.True(t, HasPermission(user, role, "events.manage"))
	assert.False(t, HasPermission(user, role, "payroll.process"))
	assert.False(t, HasPermission(user, nil, "events.manage"), "legacy enum grants no fine-grained permissions")
	assert.False(t, HasPermission(nil, role, "events.manage"))
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/events"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

type assignmentFixture struct {
	service     *AssignmentService
	assignments *fakeAssignmentRepo
	dispatcher  *recordingDispatcher
	owner       *domain.User
	staff       *domain.User
	outsider    *domain.User
	event       *domain.Event
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()

	users := newFakeUserRepo()
	agencies := newFakeAgencyRepo()
	eventsRepo := newFakeEventRepo()
	assignments := newFakeAssignmentRepo()
	dispatcher := &recordingDispatcher{}

	owner := users.add(&domain.User{Name: "Owner", Email: "owner@example.com", Role: domain.UserRoleAgencyOwner})
	agency := agencies.add(&domain.Agency{Name: "Crew Co", OwnerUserID: owner.ID})
	owner.AgencyID = &agency.ID

	staff := users.add(&domain.User{Name: "Staff", Email: "staff@example.com", Role: domain.UserRoleStaffMember, AgencyID: &agency.ID})

	otherAgency := agencies.add(&domain.Agency{Name: "Other", OwnerUserID: "nobody"})
	outsider := users.add(&domain.User{Name: "Outsider", Email: "out@example.com", Role: domain.UserRoleStaffMember, AgencyID: &otherAgency.ID})

	event := eventsRepo.add(&domain.Event{
		AgencyID:           agency.ID,
		Name:               "Warehouse shift",
		Date:               time.Now().Add(48 * time.Hour),
		RequiredStaffCount: 3,
		Status:             domain.EventStatusStaffing,
	})

	svc := NewAssignmentService(AssignmentDependencies{
		AssignmentRepo: assignments,
		EventRepo:      eventsRepo,
		AgencyRepo:     agencies,
		UserRepo:       users,
		Dispatcher:     dispatcher,
	})
	return &assignmentFixture{
		service:     svc,
		assignments: assignments,
		dispatcher:  dispatcher,
		owner:       owner,
		staff:       staff,
		outsider:    outsider,
		event:       event,
	}
}

func TestApplyCreatesPendingAssignment(t *testing.T) {
	fx := newAssignmentFixture(t)

	assignment, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "happy to help")
	require.NoError(t, err)

	assert.Equal(t, domain.AssignmentStatusPending, assignment.Status)
	assert.Equal(t, "happy to help", assignment.Notes)
	assert.Nil(t, assignment.RespondedAt)

	published, ok := fx.dispatcher.lastOfType(events.EventAssignmentApplied)
	require.True(t, ok)
	payload := published.Payload.(events.AssignmentChangedPayload)
	assert.Equal(t, fx.staff.ID, payload.UserID)
	assert.False(t, payload.Reapplied)
}

func TestApplyCrossAgencyIsUnauthorized(t *testing.T) {
	fx := newAssignmentFixture(t)

	_, err := fx.service.Apply(context.Background(), fx.event.ID, fx.outsider.ID, "")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

func TestApplyTwiceWhilePendingFails(t *testing.T) {
	fx := newAssignmentFixture(t)

	_, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.NoError(t, err)

	_, err = fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_APPLICATION", apperrors.CodeOf(err))
}

func TestApplyWhileAcceptedFails(t *testing.T) {
	fx := newAssignmentFixture(t)

	assignment, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.NoError(t, err)
	_, err = fx.service.Accept(context.Background(), assignment.ID, fx.owner.ID, nil)
	require.NoError(t, err)

	_, err = fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_APPLICATION", apperrors.CodeOf(err))
}

func TestReapplyAfterRejectionResetsAssignment(t *testing.T) {
	fx := newAssignmentFixture(t)

	assignment, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "first try")
	require.NoError(t, err)
	rejectNotes := "no slots"
	_, err = fx.service.Reject(context.Background(), assignment.ID, fx.owner.ID, &rejectNotes)
	require.NoError(t, err)

	again, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "second try")
	require.NoError(t, err)

	assert.Equal(t, assignment.ID, again.ID, "reapply reuses the existing row")
	assert.Equal(t, domain.AssignmentStatusPending, again.Status)
	assert.Equal(t, "second try", again.Notes)
	assert.Nil(t, again.RespondedAt, "response timestamp cleared on reapply")

	published, ok := fx.dispatcher.lastOfType(events.EventAssignmentApplied)
	require.True(t, ok)
	assert.True(t, published.Payload.(events.AssignmentChangedPayload).Reapplied)
}

func TestAcceptSetsRespondedAt(t *testing.T) {
	fx := newAssignmentFixture(t)

	assignment, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.NoError(t, err)

	accepted, err := fx.service.Accept(context.Background(), assignment.ID, fx.owner.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.AssignmentStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)
	assert.WithinDuration(t, time.Now(), *accepted.RespondedAt, time.Second)
}

func TestRespondRequiresPendingStatus(t *testing.T) {
	fx := newAssignmentFixture(t)

	assignment, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.NoError(t, err)
	_, err = fx.service.Accept(context.Background(), assignment.ID, fx.owner.ID, nil)
	require.NoError(t, err)

	_, err = fx.service.Reject(context.Background(), assignment.ID, fx.owner.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE_TRANSITION", apperrors.CodeOf(err))
}

func TestRespondByNonOwnerIsUnauthorized(t *testing.T) {
	fx := newAssignmentFixture(t)

	assignment, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.NoError(t, err)

	_, err = fx.service.Accept(context.Background(), assignment.ID, fx.staff.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

func TestCancelOwnPendingApplication(t *testing.T) {
	fx := newAssignmentFixture(t)

	_, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.NoError(t, err)

	require.NoError(t, fx.service.Cancel(context.Background(), fx.event.ID, fx.staff.ID))

	_, err = fx.assignments.GetByEventAndUser(context.Background(), fx.event.ID, fx.staff.ID)
	assert.Error(t, err, "assignment row removed")
}

func TestCancelAcceptedAssignmentFails(t *testing.T) {
	fx := newAssignmentFixture(t)

	assignment, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.NoError(t, err)
	_, err = fx.service.Accept(context.Background(), assignment.ID, fx.owner.ID, nil)
	require.NoError(t, err)

	err = fx.service.Cancel(context.Background(), fx.event.ID, fx.staff.ID)
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE_TRANSITION", apperrors.CodeOf(err))
}

func TestOwnerRemovesAcceptedAssignment(t *testing.T) {
	fx := newAssignmentFixture(t)

	assignment, err := fx.service.Apply(context.Background(), fx.event.ID, fx.staff.ID, "")
	require.NoError(t, err)
	_, err = fx.service.Accept(context.Background(), assignment.ID, fx.owner.ID, nil)
	require.NoError(t, err)

	require.NoError(t, fx.service.Remove(context.Background(), assignment.ID, fx.owner.ID))

	_, ok := fx.dispatcher.lastOfType(events.EventAssignmentRemoved)
	assert.True(t, ok)
}

func TestListForEventDeniedToOtherAgency(t *testing.T) {
	fx := newAssignmentFixture(t)

	_, err := fx.service.ListForEvent(context.Background(), fx.event.ID, fx.outsider.ID)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

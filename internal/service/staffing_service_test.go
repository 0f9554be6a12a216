package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staffing-service/internal/domain"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

type staffingFixture struct {
	service     *StaffingService
	assignments *fakeAssignmentRepo
	events      *fakeEventRepo
	viewer      *domain.User
	outsider    *domain.User
	event       *domain.Event
}

func newStaffingFixture(t *testing.T, required int) *staffingFixture {
	t.Helper()

	users := newFakeUserRepo()
	eventsRepo := newFakeEventRepo()
	assignments := newFakeAssignmentRepo()

	agencyID := "agency-1"
	viewer := users.add(&domain.User{Name: "Viewer", Role: domain.UserRoleStaffMember, AgencyID: &agencyID})
	otherAgency := "agency-2"
	outsider := users.add(&domain.User{Name: "Outsider", Role: domain.UserRoleStaffMember, AgencyID: &otherAgency})

	event := eventsRepo.add(&domain.Event{
		AgencyID:           agencyID,
		Name:               "Festival",
		Date:               time.Now().Add(24 * time.Hour),
		RequiredStaffCount: required,
		Status:             domain.EventStatusStaffing,
	})

	svc := NewStaffingService(StaffingDependencies{
		AssignmentRepo: assignments,
		EventRepo:      eventsRepo,
		UserRepo:       users,
	})
	return &staffingFixture{
		service:     svc,
		assignments: assignments,
		events:      eventsRepo,
		viewer:      viewer,
		outsider:    outsider,
		event:       event,
	}
}

func (fx *staffingFixture) seedAssignments(accepted, pending, rejected int) {
	add := func(n int, status domain.AssignmentStatus) {
		for i := 0; i < n; i++ {
			fx.assignments.add(&domain.EventAssignment{
				EventID: fx.event.ID,
				UserID:  "user-" + string(rune('a'+len(fx.assignments.assignments))),
				Status:  status,
			})
		}
	}
	add(accepted, domain.AssignmentStatusAccepted)
	add(pending, domain.AssignmentStatusPending)
	add(rejected, domain.AssignmentStatusRejected)
}

func TestComputeStaffingCountsAndPercentage(t *testing.T) {
	fx := newStaffingFixture(t, 4)
	fx.seedAssignments(2, 3, 1)

	summary, err := fx.service.ComputeStaffing(context.Background(), fx.event.ID, fx.viewer.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.RequiredStaffCount)
	assert.Equal(t, 2, summary.AcceptedCount)
	assert.Equal(t, 3, summary.PendingCount)
	assert.Equal(t, 2, summary.SpotsRemaining)
	assert.InDelta(t, 50.0, summary.Percentage, 1e-9)
}

func TestComputeStaffingOverstaffedClampsToHundred(t *testing.T) {
	fx := newStaffingFixture(t, 2)
	fx.seedAssignments(3, 0, 0)

	summary, err := fx.service.ComputeStaffing(context.Background(), fx.event.ID, fx.viewer.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.SpotsRemaining, "never negative")
	assert.InDelta(t, 100.0, summary.Percentage, 1e-9, "clamped at 100")
}

func TestComputeStaffingDeniedToOtherAgency(t *testing.T) {
	fx := newStaffingFixture(t, 2)

	_, err := fx.service.ComputeStaffing(context.Background(), fx.event.ID, fx.outsider.ID)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

func TestCanApplyStates(t *testing.T) {
	fx := newStaffingFixture(t, 1)

	allowed, err := fx.service.CanApply(context.Background(), fx.event.ID, fx.viewer.ID)
	require.NoError(t, err)
	assert.True(t, allowed, "no assignment yet")

	assignment := fx.assignments.add(&domain.EventAssignment{
		EventID: fx.event.ID,
		UserID:  fx.viewer.ID,
		Status:  domain.AssignmentStatusPending,
	})

	allowed, err = fx.service.CanApply(context.Background(), fx.event.ID, fx.viewer.ID)
	require.NoError(t, err)
	assert.False(t, allowed, "pending application blocks reapply")

	assignment.Status = domain.AssignmentStatusRejected
	allowed, err = fx.service.CanApply(context.Background(), fx.event.ID, fx.viewer.ID)
	require.NoError(t, err)
	assert.True(t, allowed, "rejected may reapply even when fully staffed")

	allowed, err = fx.service.CanApply(context.Background(), fx.event.ID, fx.outsider.ID)
	require.NoError(t, err)
	assert.False(t, allowed, "other agency may never apply")
}

func TestStaffingZeroRequiredIsZeroPercent(t *testing.T) {
	summary := domain.NewStaffingSummary("evt", 0, 3, 1)
	assert.InDelta(t, 0.0, summary.Percentage, 1e-9)
	assert.Equal(t, 0, summary.SpotsRemaining)
}

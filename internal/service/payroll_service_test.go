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

type payrollFixture struct {
	service       *PayrollService
	payments      *fakePaymentRepo
	compensations *fakeCompensationRepo
	dispatcher    *recordingDispatcher
	owner         *domain.User
	staff         *domain.User
	agency        *domain.Agency
	event         *domain.Event
}

// newPayrollFixture builds an hourly event running 18:00 to 23:00.
func newPayrollFixture(t *testing.T, compType domain.CompensationType, compAmount float64) *payrollFixture {
	t.Helper()

	users := newFakeUserRepo()
	agencies := newFakeAgencyRepo()
	eventsRepo := newFakeEventRepo()
	payments := newFakePaymentRepo()
	compensations := newFakeCompensationRepo()
	dispatcher := &recordingDispatcher{}

	owner := users.add(&domain.User{Name: "Owner", Role: domain.UserRoleAgencyOwner})
	agency := agencies.add(&domain.Agency{Name: "Crew Co", OwnerUserID: owner.ID})
	owner.AgencyID = &agency.ID
	staff := users.add(&domain.User{Name: "Staff", Role: domain.UserRoleStaffMember, AgencyID: &agency.ID})

	from := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	event := eventsRepo.add(&domain.Event{
		AgencyID:           agency.ID,
		Name:               "Gala night",
		Date:               from,
		TimeFrom:           &from,
		TimeTo:             &to,
		RequiredStaffCount: 2,
		Status:             domain.EventStatusReady,
	})
	payments.agencyOf[event.ID] = agency.ID
	payments.nameOf[staff.ID] = staff.Name

	require.NoError(t, compensations.UpsertCompensation(context.Background(), &domain.EventCompensation{
		EventID: event.ID,
		Type:    compType,
		Amount:  compAmount,
	}))

	svc := NewPayrollService(PayrollDependencies{
		PaymentRepo:      payments,
		CompensationRepo: compensations,
		EventRepo:        eventsRepo,
		AgencyRepo:       agencies,
		UserRepo:         users,
		Dispatcher:       dispatcher,
	})
	return &payrollFixture{
		service:       svc,
		payments:      payments,
		compensations: compensations,
		dispatcher:    dispatcher,
		owner:         owner,
		staff:         staff,
		agency:        agency,
		event:         event,
	}
}

func TestProcessPaymentHourlyDerivesAmountFromWindow(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	created, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	// 18:00 to 23:00 at $20/h
	assert.InDelta(t, 5.0, created[0].HoursWorked, 1e-9)
	assert.InDelta(t, 20.0, created[0].HourlyRate, 1e-9)
	assert.InDelta(t, 100.0, created[0].Amount, 1e-9)
	assert.Equal(t, fx.owner.ID, created[0].PaidByUserID)
}

func TestProcessPaymentHourlyRateOverride(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	rate := 30.0
	created, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID, Rate: &rate},
	})
	require.NoError(t, err)
	assert.InDelta(t, 150.0, created[0].Amount, 1e-9)
}

func TestProcessPaymentHourlyFallsBackToLastPayment(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	// previous payout on another event at $25/h
	require.NoError(t, fx.payments.CreateBatch(context.Background(), "earlier-event", []*domain.EventPayment{{
		EventID:     "earlier-event",
		UserID:      fx.staff.ID,
		HoursWorked: 4,
		HourlyRate:  25,
		Amount:      100,
		PaidAt:      time.Now().Add(-72 * time.Hour),
	}}))

	created, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, created[0].HourlyRate, 1e-9)
	assert.InDelta(t, 125.0, created[0].Amount, 1e-9)
}

func TestProcessPaymentHourlySkipsFixedLastPayment(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	// a fixed payout carries rate 0 and must not seed the rate chain
	require.NoError(t, fx.payments.CreateBatch(context.Background(), "earlier-event", []*domain.EventPayment{{
		EventID:     "earlier-event",
		UserID:      fx.staff.ID,
		HoursWorked: 4,
		HourlyRate:  0,
		Amount:      300,
		PaidAt:      time.Now().Add(-72 * time.Hour),
	}}))

	created, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, created[0].HourlyRate, 1e-9)
	assert.InDelta(t, 100.0, created[0].Amount, 1e-9)
}

func TestProcessPaymentFixedIgnoresHours(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationFixed, 300)

	created, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.NoError(t, err)

	assert.InDelta(t, 300.0, created[0].Amount, 1e-9)
	assert.InDelta(t, 0.0, created[0].HourlyRate, 1e-9, "hourly rate recorded as zero for fixed pay")
	assert.InDelta(t, 5.0, created[0].HoursWorked, 1e-9, "hours still recorded for bookkeeping")
}

func TestProcessPaymentSecondBatchFails(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	_, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.NoError(t, err)

	_, err = fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.Error(t, err)
	assert.Equal(t, "ALREADY_PAID", apperrors.CodeOf(err))
}

func TestProcessPaymentInvalidRowRejectsWholeBatch(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 0)

	// zero rate and no override yields a zero amount, which is invalid
	_, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	paid, err := fx.payments.ExistsForEvent(context.Background(), fx.event.ID)
	require.NoError(t, err)
	assert.False(t, paid, "nothing persisted when a row is invalid")
}

func TestProcessPaymentEmptyBatchFails(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	_, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}

func TestProcessPaymentRequiresOwner(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	_, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.staff.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

func TestProcessPaymentPublishesEvent(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	_, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.NoError(t, err)

	published, ok := fx.dispatcher.lastOfType(events.EventPaymentProcessed)
	require.True(t, ok)
	payload := published.Payload.(events.PaymentProcessedPayload)
	assert.Equal(t, 1, payload.PaymentCount)
	assert.InDelta(t, 100.0, payload.TotalAmount, 1e-9)
}

func TestMyPaymentsSumsLifetimeTotal(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	_, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.NoError(t, err)
	require.NoError(t, fx.payments.CreateBatch(context.Background(), "other-event", []*domain.EventPayment{{
		EventID: "other-event",
		UserID:  fx.staff.ID,
		Amount:  50,
		PaidAt:  time.Now(),
	}}))

	list, total, err := fx.service.MyPayments(context.Background(), fx.staff.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.InDelta(t, 150.0, total, 1e-9)
}

func TestTotalPaidSums(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	_, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.NoError(t, err)
	require.NoError(t, fx.payments.CreateBatch(context.Background(), "other-event", []*domain.EventPayment{{
		EventID: "other-event",
		UserID:  fx.staff.ID,
		Amount:  50,
		PaidAt:  time.Now(),
	}}))

	userTotal, err := fx.service.TotalPaidForUser(context.Background(), fx.staff.ID)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, userTotal, 1e-9)

	eventTotal, err := fx.service.TotalPaidForEvent(context.Background(), fx.event.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, eventTotal, 1e-9)
}

func TestAgencyPayrollSummaryOwnerOnly(t *testing.T) {
	fx := newPayrollFixture(t, domain.CompensationHourly, 20)

	_, err := fx.service.ProcessPayment(context.Background(), fx.event.ID, fx.owner.ID, []PaymentInput{
		{UserID: fx.staff.ID},
	})
	require.NoError(t, err)

	totals, err := fx.service.AgencyPayrollSummary(context.Background(), fx.agency.ID, fx.owner.ID)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, fx.staff.ID, totals[0].UserID)
	assert.Equal(t, 1, totals[0].PaymentCount)
	assert.InDelta(t, 100.0, totals[0].TotalAmount, 1e-9)

	_, err = fx.service.AgencyPayrollSummary(context.Background(), fx.agency.ID, fx.staff.ID)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

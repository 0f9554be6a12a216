package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/policy"
	"github.com/spec-kit/staffing-service/internal/repository"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// PayrollService computes per-staff payout amounts and records the
// one-time payment batch for an event.
type PayrollService struct {
	payments      repository.PaymentRepository
	compensations repository.CompensationRepository
	eventsRepo    repository.EventRepository
	agencies      repository.AgencyRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
}

// PayrollDependencies bundles repositories.
type PayrollDependencies struct {
	PaymentRepo      repository.PaymentRepository
	CompensationRepo repository.CompensationRepository
	EventRepo        repository.EventRepository
	AgencyRepo       repository.AgencyRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
}

// NewPayrollService creates the service.
func NewPayrollService(deps PayrollDependencies) *PayrollService {
	return &PayrollService{
		payments:      deps.PaymentRepo,
		compensations: deps.CompensationRepo,
		eventsRepo:    deps.EventRepo,
		agencies:      deps.AgencyRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
	}
}

// PaymentInput is one staff row in a payment batch. Nil fields fall back
// to derived defaults: hours from the event's time window, rate/amount
// from the staff member's last payment, then the event compensation.
type PaymentInput struct {
	UserID string
	Hours  *float64
	Rate   *float64
	Amount *float64
	Notes  string
}

// ProcessPayment records the event's payment batch atomically. The whole
// event is paid once: any existing payment fails the call, and a single
// invalid row rejects the entire batch.
func (s *PayrollService) ProcessPayment(ctx context.Context, eventID, actorID string, inputs []PaymentInput) ([]domain.EventPayment, error) {
	if len(inputs) == 0 {
		return nil, apperrors.NewValidationError("payment batch is empty", nil)
	}
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, actorID, event); err != nil {
		return nil, err
	}

	paid, err := s.payments.ExistsForEvent(ctx, event.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if paid {
		return nil, apperrors.NewAlreadyPaid(map[string]any{"event_id": event.ID})
	}

	comp, err := s.compensations.GetCompensation(ctx, event.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	paidAt := time.Now()
	batch := make([]*domain.EventPayment, 0, len(inputs))
	for i, input := range inputs {
		payment, err := s.buildPayment(ctx, event, comp, actorID, paidAt, input)
		if err != nil {
			return nil, err
		}
		if payment.Amount <= 0 || payment.HoursWorked < 0 || payment.HourlyRate < 0 {
			return nil, apperrors.NewValidationError("invalid payment data", map[string]any{
				"row":         i,
				"user_id":     input.UserID,
				"amount":      payment.Amount,
				"hours":       payment.HoursWorked,
				"hourly_rate": payment.HourlyRate,
			})
		}
		batch = append(batch, payment)
	}

	if err := s.payments.CreateBatch(ctx, event.ID, batch); err != nil {
		if errors.Is(err, repository.ErrEventAlreadyPaid) {
			return nil, apperrors.NewAlreadyPaid(map[string]any{"event_id": event.ID})
		}
		return nil, apperrors.MapError(err)
	}

	created := make([]domain.EventPayment, 0, len(batch))
	total := 0.0
	for _, payment := range batch {
		created = append(created, *payment)
		total += payment.Amount
	}
	s.publish(ctx, event.ID, actorID, events.PaymentProcessedPayload{
		PaymentCount: len(created),
		TotalAmount:  total,
		PaidAt:       paidAt,
	})
	return created, nil
}

// buildPayment resolves one batch row against the default chain.
func (s *PayrollService) buildPayment(ctx context.Context, event *domain.Event, comp *domain.EventCompensation, actorID string, paidAt time.Time, input PaymentInput) (*domain.EventPayment, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, apperrors.NewValidationError("payment row missing user_id", nil)
	}

	hours := event.HoursWorked()
	if input.Hours != nil {
		hours = *input.Hours
	}

	last, err := s.payments.LastPaymentForUser(ctx, input.UserID, event.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var rate, amount float64
	compType := domain.CompensationHourly
	if comp != nil {
		compType = comp.Type
	}

	switch compType {
	case domain.CompensationFixed:
		// flat figure, hourly rate recorded as 0 for bookkeeping
		switch {
		case input.Amount != nil:
			amount = *input.Amount
		case last != nil:
			amount = last.Amount
		case comp != nil:
			amount = comp.Amount
		}
	default:
		// a prior fixed payment records rate 0 and cannot seed the chain
		switch {
		case input.Rate != nil:
			rate = *input.Rate
		case last != nil && last.HourlyRate > 0:
			rate = last.HourlyRate
		case comp != nil:
			rate = comp.Amount
		}
		amount = rate * hours
		if input.Amount != nil {
			amount = *input.Amount
		}
	}

	return &domain.EventPayment{
		EventID:      event.ID,
		UserID:       input.UserID,
		PaidByUserID: actorID,
		HoursWorked:  hours,
		HourlyRate:   rate,
		Amount:       amount,
		Notes:        strings.TrimSpace(input.Notes),
		PaidAt:       paidAt,
	}, nil
}

// ListEventPayments returns an event's payment rows for the agency owner.
func (s *PayrollService) ListEventPayments(ctx context.Context, eventID, actorID string) ([]domain.EventPayment, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, actorID, event); err != nil {
		return nil, err
	}
	list, err := s.payments.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// TotalPaidForUser returns the lifetime payout sum for a staff member.
func (s *PayrollService) TotalPaidForUser(ctx context.Context, userID string) (float64, error) {
	total, err := s.payments.TotalForUser(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return total, nil
}

// TotalPaidForEvent returns the payout sum recorded for an event.
func (s *PayrollService) TotalPaidForEvent(ctx context.Context, eventID string) (float64, error) {
	total, err := s.payments.TotalForEvent(ctx, eventID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return total, nil
}

// AgencyPayrollSummary returns per-staff payout totals across all of the
// agency's events. Only the agency owner may read it.
func (s *PayrollService) AgencyPayrollSummary(ctx context.Context, agencyID, actorID string) ([]domain.StaffPayoutTotal, error) {
	agency, err := s.agencies.GetByID(ctx, agencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agency", map[string]any{"agency_id": agencyID})
		}
		return nil, apperrors.MapError(err)
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": actorID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.IsAgencyOwner(actor, agency) {
		return nil, apperrors.NewUnauthorized("only the agency owner can view payroll")
	}
	totals, err := s.payments.StaffTotalsByAgency(ctx, agency.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return totals, nil
}

// MyPayments returns a staff member's own payment history.
func (s *PayrollService) MyPayments(ctx context.Context, userID string) ([]domain.EventPayment, float64, error) {
	list, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	total := 0.0
	for _, payment := range list {
		total += payment.Amount
	}
	return list, total, nil
}

func (s *PayrollService) requireOwner(ctx context.Context, actorID string, event *domain.Event) error {
	agency, err := s.agencies.GetByID(ctx, event.AgencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("agency", map[string]any{"agency_id": event.AgencyID})
		}
		return apperrors.MapError(err)
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": actorID})
		}
		return apperrors.MapError(err)
	}
	if !policy.IsAgencyOwner(actor, agency) {
		return apperrors.NewUnauthorized(fmt.Sprintf("user %s does not own the event's agency", actor.ID))
	}
	return nil
}

func (s *PayrollService) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", map[string]any{"event_id": eventID})
		}
		return nil, apperrors.MapError(err)
	}
	return event, nil
}

func (s *PayrollService) publish(ctx context.Context, eventID, actorID string, payload events.PaymentProcessedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPaymentProcessed,
		EventID:   eventID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

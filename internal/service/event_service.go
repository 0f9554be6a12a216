package service

import (
	"context"
	"errors"
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

// EventService coordinates event administration for agency owners.
type EventService struct {
	eventsRepo    repository.EventRepository
	compensations repository.CompensationRepository
	assignments   repository.AssignmentRepository
	agencies      repository.AgencyRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
}

// EventDependencies bundles repositories.
type EventDependencies struct {
	EventRepo        repository.EventRepository
	CompensationRepo repository.CompensationRepository
	AssignmentRepo   repository.AssignmentRepository
	AgencyRepo       repository.AgencyRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
}

// EventCreateInput describes event creation payload.
type EventCreateInput struct {
	Name               string
	Description        string
	Date               time.Time
	TimeFrom           *time.Time
	TimeTo             *time.Time
	Location           string
	Latitude           *float64
	Longitude          *float64
	RequiredStaffCount int
	CompensationType   domain.CompensationType
	CompensationAmount float64
	RequirementDetails string
}

// EventDetail aggregates an event with its attached records and derived
// staffing metrics.
type EventDetail struct {
	Event        *domain.Event
	Compensation *domain.EventCompensation
	Requirement  *domain.EventRequirement
	Staffing     domain.StaffingSummary
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	return &EventService{
		eventsRepo:    deps.EventRepo,
		compensations: deps.CompensationRepo,
		assignments:   deps.AssignmentRepo,
		agencies:      deps.AgencyRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
	}
}

// CreateEvent creates an event for the actor's agency.
func (s *EventService) CreateEvent(ctx context.Context, actorID string, input EventCreateInput) (*domain.Event, error) {
	actor, agency, err := s.loadOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if input.RequiredStaffCount < 1 {
		return nil, apperrors.NewValidationError("required_staff_count must be at least 1", nil)
	}
	if input.CompensationType != domain.CompensationHourly && input.CompensationType != domain.CompensationFixed {
		return nil, apperrors.NewValidationError("compensation type must be hourly or fixed", nil)
	}

	event := &domain.Event{
		AgencyID:           agency.ID,
		Name:               strings.TrimSpace(input.Name),
		Description:        strings.TrimSpace(input.Description),
		Date:               input.Date,
		TimeFrom:           input.TimeFrom,
		TimeTo:             input.TimeTo,
		Location:           strings.TrimSpace(input.Location),
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		RequiredStaffCount: input.RequiredStaffCount,
		Status:             domain.EventStatusNew,
	}
	if err := s.eventsRepo.Create(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}

	comp := &domain.EventCompensation{
		EventID: event.ID,
		Type:    input.CompensationType,
		Amount:  input.CompensationAmount,
	}
	if err := s.compensations.UpsertCompensation(ctx, comp); err != nil {
		return nil, apperrors.MapError(err)
	}
	if strings.TrimSpace(input.RequirementDetails) != "" {
		req := &domain.EventRequirement{EventID: event.ID, Details: strings.TrimSpace(input.RequirementDetails)}
		if err := s.compensations.UpsertRequirement(ctx, req); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	s.publish(ctx, events.EventCreated, event.ID, actor.ID, nil)
	return event, nil
}

// UpdateStatus sets the event's administrative status. Staffing levels
// never move this field on their own; the owner drives it explicitly.
func (s *EventService) UpdateStatus(ctx context.Context, eventID, actorID string, next domain.EventStatus) (*domain.Event, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, actorID, event); err != nil {
		return nil, err
	}
	switch next {
	case domain.EventStatusNew, domain.EventStatusStaffing, domain.EventStatusReady, domain.EventStatusCompleted:
	default:
		return nil, apperrors.NewValidationError("unknown event status", map[string]any{"status": next})
	}
	oldStatus := event.Status
	event.Status = next
	if err := s.eventsRepo.Update(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventStatusChanged, event.ID, actorID, events.StatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: next,
	})
	return event, nil
}

// GetEventDetail returns the event with compensation, requirement and
// derived staffing metrics, for agency members.
func (s *EventService) GetEventDetail(ctx context.Context, eventID, viewerID string) (*EventDetail, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	viewer, err := s.getUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewEvent(viewer, event) {
		return nil, apperrors.NewUnauthorized("event belongs to another agency")
	}

	detail := &EventDetail{Event: event}
	if comp, err := s.compensations.GetCompensation(ctx, event.ID); err == nil {
		detail.Compensation = comp
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if req, err := s.compensations.GetRequirement(ctx, event.ID); err == nil {
		detail.Requirement = req
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	counts, err := s.assignments.CountByStatus(ctx, event.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail.Staffing = domain.NewStaffingSummary(event.ID, event.RequiredStaffCount, counts.Accepted, counts.Pending)
	return detail, nil
}

// ListAgencyEvents lists the viewer's agency events with filters.
func (s *EventService) ListAgencyEvents(ctx context.Context, viewerID string, filter repository.EventFilter) ([]domain.Event, error) {
	viewer, err := s.getUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer.AgencyID == nil {
		return nil, apperrors.NewUnauthorized("user belongs to no agency")
	}
	filter.AgencyID = viewer.AgencyID
	list, err := s.eventsRepo.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// DeleteEvent removes an event and its owned records.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, actorID string) error {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, actorID, event); err != nil {
		return err
	}
	if err := s.eventsRepo.Delete(ctx, event.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// CanSubscribe implements the real-time channel authorization gate:
// agency membership plus ownership or an accepted assignment.
func (s *EventService) CanSubscribe(ctx context.Context, eventID, userID string) (bool, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return false, err
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return false, err
	}
	agency, err := s.agencies.GetByID(ctx, event.AgencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFound("agency", map[string]any{"agency_id": event.AgencyID})
		}
		return false, apperrors.MapError(err)
	}
	assignment, err := s.assignments.GetByEventAndUser(ctx, event.ID, user.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, apperrors.MapError(err)
	}
	return policy.CanSubscribeToEvent(user, event, agency, assignment), nil
}

func (s *EventService) loadOwner(ctx context.Context, actorID string) (*domain.User, *domain.Agency, error) {
	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	agency, err := s.agencies.GetByOwner(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("user owns no agency")
		}
		return nil, nil, apperrors.MapError(err)
	}
	return actor, agency, nil
}

func (s *EventService) requireOwner(ctx context.Context, actorID string, event *domain.Event) error {
	agency, err := s.agencies.GetByID(ctx, event.AgencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("agency", map[string]any{"agency_id": event.AgencyID})
		}
		return apperrors.MapError(err)
	}
	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		return err
	}
	if !policy.IsAgencyOwner(actor, agency) {
		return apperrors.NewUnauthorized("only the agency owner can manage this event")
	}
	return nil
}

func (s *EventService) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", map[string]any{"event_id": eventID})
		}
		return nil, apperrors.MapError(err)
	}
	return event, nil
}

func (s *EventService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *EventService) publish(ctx context.Context, eventType events.EventType, eventID, actorID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EventID:   eventID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

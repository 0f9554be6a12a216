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

// AssignmentService governs the assignment lifecycle: staff apply for
// events, owners accept or reject, staff cancel pending applications and
// owners remove assignments outright.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	eventsRepo  repository.EventRepository
	agencies    repository.AgencyRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	EventRepo      repository.EventRepository
	AgencyRepo     repository.AgencyRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		assignments: deps.AssignmentRepo,
		eventsRepo:  deps.EventRepo,
		agencies:    deps.AgencyRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// Apply creates a pending application for (event, user). A rejected
// assignment is reset to pending with fresh notes and a cleared response
// timestamp; a pending or accepted one fails without mutation.
func (s *AssignmentService) Apply(ctx context.Context, eventID, userID, notes string) (*domain.EventAssignment, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !policy.SameAgency(user, event) {
		return nil, apperrors.NewUnauthorized("user does not belong to the event's agency")
	}

	existing, err := s.assignments.GetByEventAndUser(ctx, event.ID, user.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	if existing != nil {
		if existing.Status != domain.AssignmentStatusRejected {
			return nil, apperrors.NewDuplicateApplication(map[string]any{
				"event_id": event.ID,
				"status":   existing.Status,
			})
		}
		existing.Status = domain.AssignmentStatusPending
		existing.Notes = strings.TrimSpace(notes)
		existing.RespondedAt = nil
		if err := s.assignments.Update(ctx, existing); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.publish(ctx, events.EventAssignmentApplied, event.ID, user.ID, events.AssignmentChangedPayload{
			AssignmentID: existing.ID,
			UserID:       user.ID,
			OldStatus:    domain.AssignmentStatusRejected,
			NewStatus:    domain.AssignmentStatusPending,
			Reapplied:    true,
		})
		return existing, nil
	}

	assignment := &domain.EventAssignment{
		EventID: event.ID,
		UserID:  user.ID,
		Status:  domain.AssignmentStatusPending,
		Notes:   strings.TrimSpace(notes),
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicateAssignment) {
			// lost the race against a concurrent application
			return nil, apperrors.NewDuplicateApplication(map[string]any{"event_id": event.ID})
		}
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventAssignmentApplied, event.ID, user.ID, events.AssignmentChangedPayload{
		AssignmentID: assignment.ID,
		UserID:       user.ID,
		NewStatus:    domain.AssignmentStatusPending,
	})
	return assignment, nil
}

// Accept transitions a pending assignment to accepted. Only the owner of
// the event's agency may respond.
func (s *AssignmentService) Accept(ctx context.Context, assignmentID, actorID string, notes *string) (*domain.EventAssignment, error) {
	return s.respond(ctx, assignmentID, actorID, domain.AssignmentStatusAccepted, notes, events.EventAssignmentAccepted)
}

// Reject transitions a pending assignment to rejected with the given notes.
func (s *AssignmentService) Reject(ctx context.Context, assignmentID, actorID string, notes *string) (*domain.EventAssignment, error) {
	return s.respond(ctx, assignmentID, actorID, domain.AssignmentStatusRejected, notes, events.EventAssignmentRejected)
}

func (s *AssignmentService) respond(ctx context.Context, assignmentID, actorID string, next domain.AssignmentStatus, notes *string, eventType events.EventType) (*domain.EventAssignment, error) {
	assignment, event, _, err := s.loadForManagement(ctx, assignmentID, actorID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != domain.AssignmentStatusPending {
		return nil, apperrors.NewInvalidStateTransition("only pending assignments can be responded to", map[string]any{
			"assignment_id": assignment.ID,
			"status":        assignment.Status,
		})
	}
	oldStatus := assignment.Status
	now := time.Now()
	assignment.Status = next
	assignment.RespondedAt = &now
	if notes != nil {
		assignment.Notes = strings.TrimSpace(*notes)
	}
	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, eventType, event.ID, actorID, events.AssignmentChangedPayload{
		AssignmentID: assignment.ID,
		UserID:       assignment.UserID,
		OldStatus:    oldStatus,
		NewStatus:    next,
	})
	return assignment, nil
}

// Cancel deletes the user's own pending application. Accepted or rejected
// assignments cannot be cancelled by staff.
func (s *AssignmentService) Cancel(ctx context.Context, eventID, userID string) error {
	assignment, err := s.assignments.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("assignment", map[string]any{"event_id": eventID})
		}
		return apperrors.MapError(err)
	}
	if assignment.UserID != userID {
		return apperrors.NewUnauthorized("assignment belongs to another user")
	}
	if assignment.Status != domain.AssignmentStatusPending {
		return apperrors.NewInvalidStateTransition("only pending applications can be cancelled", map[string]any{
			"assignment_id": assignment.ID,
			"status":        assignment.Status,
		})
	}
	if err := s.assignments.Delete(ctx, assignment.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventAssignmentCancelled, eventID, userID, events.AssignmentChangedPayload{
		AssignmentID: assignment.ID,
		UserID:       userID,
		OldStatus:    domain.AssignmentStatusPending,
	})
	return nil
}

// Remove deletes an assignment regardless of status. Agency owners use
// this to take staff off an event.
func (s *AssignmentService) Remove(ctx context.Context, assignmentID, actorID string) error {
	assignment, event, _, err := s.loadForManagement(ctx, assignmentID, actorID)
	if err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, assignment.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventAssignmentRemoved, event.ID, actorID, events.AssignmentChangedPayload{
		AssignmentID: assignment.ID,
		UserID:       assignment.UserID,
		OldStatus:    assignment.Status,
	})
	return nil
}

// ListForEvent returns an event's assignments for its agency members.
func (s *AssignmentService) ListForEvent(ctx context.Context, eventID, viewerID string) ([]domain.EventAssignment, error) {
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
	list, err := s.assignments.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// ListForUser returns all of a user's assignments across events.
func (s *AssignmentService) ListForUser(ctx context.Context, userID string) ([]domain.EventAssignment, error) {
	list, err := s.assignments.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func (s *AssignmentService) loadForManagement(ctx context.Context, assignmentID, actorID string) (*domain.EventAssignment, *domain.Event, *domain.Agency, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, apperrors.NewNotFound("assignment", map[string]any{"assignment_id": assignmentID})
		}
		return nil, nil, nil, apperrors.MapError(err)
	}
	event, err := s.getEvent(ctx, assignment.EventID)
	if err != nil {
		return nil, nil, nil, err
	}
	agency, err := s.agencies.GetByID(ctx, event.AgencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, apperrors.NewNotFound("agency", map[string]any{"agency_id": event.AgencyID})
		}
		return nil, nil, nil, apperrors.MapError(err)
	}
	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !policy.CanManageAssignment(actor, event, agency) {
		return nil, nil, nil, apperrors.NewUnauthorized("only the agency owner can manage assignments")
	}
	return assignment, event, agency, nil
}

func (s *AssignmentService) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", map[string]any{"event_id": eventID})
		}
		return nil, apperrors.MapError(err)
	}
	return event, nil
}

func (s *AssignmentService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AssignmentService) publish(ctx context.Context, eventType events.EventType, eventID, actorID string, payload any) {
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

package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/policy"
	"github.com/spec-kit/staffing-service/internal/repository"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// StaffingService computes derived staffing metrics for events.
type StaffingService struct {
	assignments repository.AssignmentRepository
	eventsRepo  repository.EventRepository
	users       repository.UserRepository
}

// StaffingDependencies bundles repositories.
type StaffingDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	EventRepo      repository.EventRepository
	UserRepo       repository.UserRepository
}

// NewStaffingService creates the service.
func NewStaffingService(deps StaffingDependencies) *StaffingService {
	return &StaffingService{
		assignments: deps.AssignmentRepo,
		eventsRepo:  deps.EventRepo,
		users:       deps.UserRepo,
	}
}

// ComputeStaffing returns accepted/pending counts, spots remaining and
// the staffing percentage for an event.
func (s *StaffingService) ComputeStaffing(ctx context.Context, eventID, viewerID string) (domain.StaffingSummary, error) {
	event, viewer, err := s.loadEventAndViewer(ctx, eventID, viewerID)
	if err != nil {
		return domain.StaffingSummary{}, err
	}
	if !policy.CanViewEvent(viewer, event) {
		return domain.StaffingSummary{}, apperrors.NewUnauthorized("event belongs to another agency")
	}
	counts, err := s.assignments.CountByStatus(ctx, event.ID)
	if err != nil {
		return domain.StaffingSummary{}, apperrors.MapError(err)
	}
	return domain.NewStaffingSummary(event.ID, event.RequiredStaffCount, counts.Accepted, counts.Pending), nil
}

// CanApply reports whether the user could apply for the event right now.
// Full staffing does not block reapplication after a rejection.
func (s *StaffingService) CanApply(ctx context.Context, eventID, userID string) (bool, error) {
	event, user, err := s.loadEventAndViewer(ctx, eventID, userID)
	if err != nil {
		return false, err
	}
	if !policy.SameAgency(user, event) {
		return false, nil
	}
	existing, err := s.assignments.GetByEventAndUser(ctx, event.ID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, apperrors.MapError(err)
	}
	return domain.CanApply(existing), nil
}

func (s *StaffingService) loadEventAndViewer(ctx context.Context, eventID, userID string) (*domain.Event, *domain.User, error) {
	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("event", map[string]any{"event_id": eventID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	return event, user, nil
}

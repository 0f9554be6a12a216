package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/policy"
	"github.com/spec-kit/staffing-service/internal/repository"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

const maxMessageLength = 1000

// MessageService persists event chat messages and republishes them to
// the per-event channel for real-time delivery. Persistence always wins:
// a publish failure is dropped by the dispatcher, never rolled back.
type MessageService struct {
	messages   repository.MessageRepository
	eventsRepo repository.EventRepository
	users      repository.UserRepository
	roles      repository.RoleRepository
	dispatcher events.Dispatcher
}

// MessageDependencies bundles repositories.
type MessageDependencies struct {
	MessageRepo repository.MessageRepository
	EventRepo   repository.EventRepository
	UserRepo    repository.UserRepository
	RoleRepo    repository.RoleRepository
	Dispatcher  events.Dispatcher
}

// NewMessageService creates the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:   deps.MessageRepo,
		eventsRepo: deps.EventRepo,
		users:      deps.UserRepo,
		roles:      deps.RoleRepo,
		dispatcher: deps.Dispatcher,
	}
}

// SendMessage validates, persists and relays a chat message.
func (s *MessageService) SendMessage(ctx context.Context, eventID, userID, text string) (*domain.EventMessage, error) {
	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", map[string]any{"event_id": eventID})
		}
		return nil, apperrors.MapError(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.SameAgency(user, event) {
		return nil, apperrors.NewUnauthorized("user does not belong to the event's agency")
	}

	body := strings.TrimSpace(text)
	if body == "" {
		return nil, apperrors.NewValidationError("message is empty", nil)
	}
	// length is bounded in characters, matching the char_length check on
	// the event_messages table
	if length := utf8.RuneCountInString(body); length > maxMessageLength {
		return nil, apperrors.NewValidationError("message exceeds maximum length", map[string]any{
			"max_length": maxMessageLength,
			"length":     length,
		})
	}

	msg := &domain.EventMessage{
		EventID: event.ID,
		UserID:  user.ID,
		Body:    body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishMessage(ctx, msg, user)
	return msg, nil
}

// ListMessages returns the event's thread in chronological order.
func (s *MessageService) ListMessages(ctx context.Context, eventID, viewerID string, limit, offset int) ([]domain.EventMessage, error) {
	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", map[string]any{"event_id": eventID})
		}
		return nil, apperrors.MapError(err)
	}
	viewer, err := s.users.GetByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": viewerID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.CanViewEvent(viewer, event) {
		return nil, apperrors.NewUnauthorized("event belongs to another agency")
	}
	list, err := s.messages.ListByEvent(ctx, event.ID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func (s *MessageService) publishMessage(ctx context.Context, msg *domain.EventMessage, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	var customRole *domain.Role
	if user.RoleID != nil {
		if role, err := s.roles.GetByID(ctx, *user.RoleID); err == nil {
			customRole = role
		}
	}
	resolved := domain.ResolveRole(user, customRole)
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMessageSent,
		EventID:   msg.EventID,
		ActorID:   user.ID,
		Timestamp: time.Now(),
		Payload: events.MessageSentPayload{
			MessageID:         msg.ID,
			EventID:           msg.EventID,
			UserID:            user.ID,
			UserName:          user.Name,
			UserRole:          resolved.Label(),
			Message:           msg.Body,
			CreatedAt:         msg.CreatedAt,
			CreatedAtRelative: relativeTime(msg.CreatedAt, time.Now()),
		},
	})
}

// relativeTime renders a coarse human-readable offset for chat display.
func relativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006 15:04")
	}
}

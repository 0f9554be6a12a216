package dto

import (
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// SendMessageRequest payload. Length limits are re-checked after
// trimming in the service layer.
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

// MessageResponse view.
type MessageResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(msg *domain.EventMessage) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		EventID:   msg.EventID,
		UserID:    msg.UserID,
		Message:   msg.Body,
		CreatedAt: msg.CreatedAt,
	}
}

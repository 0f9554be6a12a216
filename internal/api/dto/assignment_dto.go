package dto

import (
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// ApplyRequest payload.
type ApplyRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// RespondRequest payload for accept/reject.
type RespondRequest struct {
	Notes *string `json:"notes"`
}

// AssignmentResponse view.
type AssignmentResponse struct {
	ID          string                  `json:"id"`
	EventID     string                  `json:"event_id"`
	UserID      string                  `json:"user_id"`
	Status      domain.AssignmentStatus `json:"status"`
	Notes       string                  `json:"notes,omitempty"`
	RespondedAt *time.Time              `json:"responded_at,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// EligibilityResponse reports whether the caller may apply right now.
type EligibilityResponse struct {
	CanApply bool `json:"can_apply"`
}

// NewAssignmentResponse maps a domain assignment.
func NewAssignmentResponse(assignment *domain.EventAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          assignment.ID,
		EventID:     assignment.EventID,
		UserID:      assignment.UserID,
		Status:      assignment.Status,
		Notes:       assignment.Notes,
		RespondedAt: assignment.RespondedAt,
		CreatedAt:   assignment.CreatedAt,
		UpdatedAt:   assignment.UpdatedAt,
	}
}

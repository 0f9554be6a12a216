package events

import (
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAssignmentApplied   EventType = "assignment_applied"
	EventAssignmentAccepted  EventType = "assignment_accepted"
	EventAssignmentRejected  EventType = "assignment_rejected"
	EventAssignmentCancelled EventType = "assignment_cancelled"
	EventAssignmentRemoved   EventType = "assignment_removed"
	EventPaymentProcessed    EventType = "payment_processed"
	EventMessageSent         EventType = "message_sent"
	EventCreated             EventType = "event_created"
	EventStatusChanged       EventType = "event_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EventID   string      `json:"event_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AssignmentChangedPayload covers apply/accept/reject/cancel/remove.
type AssignmentChangedPayload struct {
	AssignmentID string                  `json:"assignment_id"`
	UserID       string                  `json:"user_id"`
	OldStatus    domain.AssignmentStatus `json:"old_status,omitempty"`
	NewStatus    domain.AssignmentStatus `json:"new_status,omitempty"`
	Reapplied    bool                    `json:"reapplied,omitempty"`
}

// PaymentProcessedPayload payload.
type PaymentProcessedPayload struct {
	PaymentCount int       `json:"payment_count"`
	TotalAmount  float64   `json:"total_amount"`
	PaidAt       time.Time `json:"paid_at"`
}

// MessageSentPayload carries the chat payload republished to the
// per-event channel. CreatedAtRelative is a human-readable offset so
// clients can render "2 minutes ago" without clock math.
type MessageSentPayload struct {
	MessageID         string    `json:"id"`
	EventID           string    `json:"event_id"`
	UserID            string    `json:"user_id"`
	UserName          string    `json:"user_name"`
	UserRole          string    `json:"user_role"`
	Message           string    `json:"message"`
	CreatedAt         time.Time `json:"created_at"`
	CreatedAtRelative string    `json:"created_at_relative"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.EventStatus `json:"old_status"`
	NewStatus domain.EventStatus `json:"new_status"`
}

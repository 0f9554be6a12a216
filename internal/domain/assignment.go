package domain

import "time"

// AssignmentStatus enumerates lifecycle states for assignments. There is
// no terminal state; rejected assignments are re-enterable via reapply.
type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "pending"
	AssignmentStatusAccepted AssignmentStatus = "accepted"
	AssignmentStatusRejected AssignmentStatus = "rejected"
)

// EventAssignment is a staff member's request to work a specific event.
// At most one row exists per (event, user) pair.
type EventAssignment struct {
	ID          string
	EventID     string
	UserID      string
	Status      AssignmentStatus
	Notes       string
	RespondedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

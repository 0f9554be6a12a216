package domain

import "time"

// EventMessage is a chat message in an event's thread. Messages are
// immutable once created and ordered by creation time.
type EventMessage struct {
	ID        string
	EventID   string
	UserID    string
	Body      string
	CreatedAt time.Time
}

package domain

import "time"

// EventStatus enumerates lifecycle states for events. Status is an
// administrative field set explicitly by the agency owner; it is not
// derived from staffing levels.
type EventStatus string

const (
	EventStatusNew       EventStatus = "new"
	EventStatusStaffing  EventStatus = "staffing"
	EventStatusReady     EventStatus = "ready"
	EventStatusCompleted EventStatus = "completed"
)

// CompensationType differentiates hourly rates from flat totals.
type CompensationType string

const (
	CompensationHourly CompensationType = "hourly"
	CompensationFixed  CompensationType = "fixed"
)

// Event is the aggregate for a staffed engagement owned by an agency.
type Event struct {
	ID                 string
	AgencyID           string
	Name               string
	Description        string
	Date               time.Time
	TimeFrom           *time.Time
	TimeTo             *time.Time
	Location           string
	Latitude           *float64
	Longitude          *float64
	RequiredStaffCount int
	Status             EventStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HoursWorked derives the shift length in fractional hours from the
// event's time window. Missing start or end yields 0.
func (e *Event) HoursWorked() float64 {
	if e.TimeFrom == nil || e.TimeTo == nil {
		return 0
	}
	hours := e.TimeTo.Sub(*e.TimeFrom).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}

// EventCompensation is the one-to-one pay model attached to an event.
// Amount is the rate for hourly compensation or the flat figure for fixed.
type EventCompensation struct {
	EventID   string
	Type      CompensationType
	Amount    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventRequirement holds optional free-text operational details for an event.
type EventRequirement struct {
	EventID   string
	Details   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

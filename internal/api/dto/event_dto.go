package dto

import (
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// CreateEventRequest payload.
type CreateEventRequest struct {
	Name               string     `json:"name" validate:"required"`
	Description        string     `json:"description"`
	Date               time.Time  `json:"date" validate:"required"`
	TimeFrom           *time.Time `json:"time_from"`
	TimeTo             *time.Time `json:"time_to"`
	Location           string     `json:"location"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	RequiredStaffCount int        `json:"required_staff_count" validate:"required,min=1"`
	CompensationType   string     `json:"compensation_type" validate:"required,oneof=hourly fixed"`
	CompensationAmount float64    `json:"compensation_amount" validate:"min=0"`
	RequirementDetails string     `json:"requirement_details"`
}

// UpdateEventStatusRequest payload.
type UpdateEventStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new staffing ready completed"`
}

// EventSummary is the listing view of an event.
type EventSummary struct {
	ID                 string             `json:"id"`
	AgencyID           string             `json:"agency_id"`
	Name               string             `json:"name"`
	Date               time.Time          `json:"date"`
	TimeFrom           *time.Time         `json:"time_from,omitempty"`
	TimeTo             *time.Time         `json:"time_to,omitempty"`
	Location           string             `json:"location"`
	RequiredStaffCount int                `json:"required_staff_count"`
	Status             domain.EventStatus `json:"status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// EventDetailResponse is the full event view with attached records and
// derived staffing metrics.
type EventDetailResponse struct {
	EventSummary
	Description  string                `json:"description"`
	Latitude     *float64              `json:"latitude,omitempty"`
	Longitude    *float64              `json:"longitude,omitempty"`
	Compensation *CompensationResponse `json:"compensation,omitempty"`
	Requirement  *RequirementResponse  `json:"requirement,omitempty"`
	Staffing     StaffingResponse      `json:"staffing"`
}

// CompensationResponse view.
type CompensationResponse struct {
	Type   domain.CompensationType `json:"type"`
	Amount float64                 `json:"amount"`
}

// RequirementResponse view.
type RequirementResponse struct {
	Details string `json:"details"`
}

// StaffingResponse view of derived staffing metrics.
type StaffingResponse struct {
	RequiredStaffCount int     `json:"required_staff_count"`
	AcceptedCount      int     `json:"accepted_count"`
	PendingCount       int     `json:"pending_count"`
	SpotsRemaining     int     `json:"spots_remaining"`
	Percentage         float64 `json:"percentage"`
}

// NewEventSummary maps a domain event.
func NewEventSummary(event *domain.Event) EventSummary {
	return EventSummary{
		ID:                 event.ID,
		AgencyID:           event.AgencyID,
		Name:               event.Name,
		Date:               event.Date,
		TimeFrom:           event.TimeFrom,
		TimeTo:             event.TimeTo,
		Location:           event.Location,
		RequiredStaffCount: event.RequiredStaffCount,
		Status:             event.Status,
		CreatedAt:          event.CreatedAt,
		UpdatedAt:          event.UpdatedAt,
	}
}

// NewStaffingResponse maps a staffing summary.
func NewStaffingResponse(summary domain.StaffingSummary) StaffingResponse {
	return StaffingResponse{
		RequiredStaffCount: summary.RequiredStaffCount,
		AcceptedCount:      summary.AcceptedCount,
		PendingCount:       summary.PendingCount,
		SpotsRemaining:     summary.SpotsRemaining,
		Percentage:         summary.Percentage,
	}
}

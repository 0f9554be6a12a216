package domain

import "time"

// EventPayment records one staff member's payout within an event's
// payment batch. The batch shares a single paid_at timestamp and paying
// admin; the presence of any row marks the event as paid.
type EventPayment struct {
	ID           string
	EventID      string
	UserID       string
	PaidByUserID string
	HoursWorked  float64
	HourlyRate   float64
	Amount       float64
	Notes        string
	PaidAt       time.Time
	CreatedAt    time.Time
}

// StaffPayoutTotal aggregates payments per staff member across an agency.
type StaffPayoutTotal struct {
	UserID       string
	UserName     string
	PaymentCount int
	TotalHours   float64
	TotalAmount  float64
}

package dto

import (
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// ProcessPaymentRequest payload. Each row pays one staff member; omitted
// hours, rate or amount fall back to derived defaults.
type ProcessPaymentRequest struct {
	Payments []PaymentRowRequest `json:"payments" validate:"required,min=1,dive"`
}

// PaymentRowRequest is one staff row in a payment batch.
type PaymentRowRequest struct {
	UserID string   `json:"user_id" validate:"required,uuid"`
	Hours  *float64 `json:"hours" validate:"omitempty,min=0"`
	Rate   *float64 `json:"rate" validate:"omitempty,min=0"`
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"`
	Notes  string   `json:"notes" validate:"max=500"`
}

// PaymentResponse view.
type PaymentResponse struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	PaidByUserID string    `json:"paid_by_user_id"`
	HoursWorked  float64   `json:"hours_worked"`
	HourlyRate   float64   `json:"hourly_rate"`
	Amount       float64   `json:"amount"`
	Notes        string    `json:"notes,omitempty"`
	PaidAt       time.Time `json:"paid_at"`
}

// PaymentBatchResponse wraps the created batch with its total.
type PaymentBatchResponse struct {
	Payments    []PaymentResponse `json:"payments"`
	TotalAmount float64           `json:"total_amount"`
}

// StaffPayoutResponse is one row of the agency payroll summary.
type StaffPayoutResponse struct {
	UserID       string  `json:"user_id"`
	UserName     string  `json:"user_name"`
	PaymentCount int     `json:"payment_count"`
	TotalHours   float64 `json:"total_hours"`
	TotalAmount  float64 `json:"total_amount"`
}

// MyPaymentsResponse is a staff member's payment history with lifetime
// total.
type MyPaymentsResponse struct {
	Payments    []PaymentResponse `json:"payments"`
	TotalEarned float64           `json:"total_earned"`
}

// NewPaymentResponse maps a domain payment.
func NewPaymentResponse(payment *domain.EventPayment) PaymentResponse {
	return PaymentResponse{
		ID:           payment.ID,
		EventID:      payment.EventID,
		UserID:       payment.UserID,
		PaidByUserID: payment.PaidByUserID,
		HoursWorked:  payment.HoursWorked,
		HourlyRate:   payment.HourlyRate,
		Amount:       payment.Amount,
		Notes:        payment.Notes,
		PaidAt:       payment.PaidAt,
	}
}

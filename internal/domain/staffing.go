package domain

// StaffingSummary holds the derived staffing metrics for an event.
type StaffingSummary struct {
	EventID            string
	RequiredStaffCount int
	AcceptedCount      int
	PendingCount       int
	SpotsRemaining     int
	Percentage         float64
}

// NewStaffingSummary computes derived metrics from assignment counts.
func NewStaffingSummary(eventID string, required, accepted, pending int) StaffingSummary {
	return StaffingSummary{
		EventID:            eventID,
		RequiredStaffCount: required,
		AcceptedCount:      accepted,
		PendingCount:       pending,
		SpotsRemaining:     SpotsRemaining(required, accepted),
		Percentage:         StaffingPercentage(required, accepted),
	}
}

// SpotsRemaining returns the open headcount, never negative.
func SpotsRemaining(required, accepted int) int {
	remaining := required - accepted
	if remaining < 0 {
		return 0
	}
	return remaining
}

// StaffingPercentage returns accepted over required as a percentage
// clamped to [0,100]. A zero required headcount counts as 0%.
func StaffingPercentage(required, accepted int) float64 {
	if required <= 0 {
		return 0
	}
	pct := float64(accepted) / float64(required) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// CanApply reports whether a user may apply given their existing
// assignment, if any. Reapplication after rejection is allowed even when
// the event is fully staffed.
func CanApply(existing *EventAssignment) bool {
	if existing == nil {
		return true
	}
	return existing.Status == AssignmentStatusRejected
}

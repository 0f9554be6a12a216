package domain

import "time"

// Agency is a staffing agency. Each agency has exactly one owner
// account; staff members reference it through their agency_id.
type Agency struct {
	ID          string
	Name        string
	OwnerUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

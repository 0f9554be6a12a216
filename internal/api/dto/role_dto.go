package dto

import (
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// CreateRoleRequest payload. Names are lowercase with underscores only.
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}

// AssignRoleRequest payload.
type AssignRoleRequest struct {
	RoleID string `json:"role_id" validate:"required,uuid"`
}

// RoleResponse view.
type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRoleResponse maps a domain role.
func NewRoleResponse(role *domain.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Permissions: role.Permissions,
		IsSystem:    role.IsSystem,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staffing-service/internal/api/dto"
	"github.com/spec-kit/staffing-service/internal/service"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// RolesHandler manages role administration endpoints.
type RolesHandler struct {
	roles *service.RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roleService *service.RoleService) *RolesHandler {
	return &RolesHandler{roles: roleService}
}

// ListRoles GET /roles.
func (h *RolesHandler) ListRoles(c *fiber.Ctx) error {
	list, err := h.roles.ListRoles(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.RoleResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewRoleResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateRole POST /roles.
func (h *RolesHandler) CreateRole(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	role, err := h.roles.CreateRole(c.Context(), req.Name, req.Permissions)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRoleResponse(role)})
}

// UpdateRole PUT /roles/:id.
func (h *RolesHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	role, err := h.roles.UpdateRole(c.Context(), c.Params("id"), req.Permissions)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleResponse(role)})
}

// DeleteRole DELETE /roles/:id.
func (h *RolesHandler) DeleteRole(c *fiber.Ctx) error {
	if err := h.roles.DeleteRole(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// AssignRole POST /users/:id/role.
func (h *RolesHandler) AssignRole(c *fiber.Ctx) error {
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	user, err := h.roles.AssignRoleToUser(c.Context(), c.Params("id"), req.RoleID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

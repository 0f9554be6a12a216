package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staffing-service/internal/api/dto"
	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/service"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// AssignmentsHandler manages the assignment lifecycle endpoints.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
	staffing    *service.StaffingService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService, staffingService *service.StaffingService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignmentService, staffing: staffingService}
}

// Apply POST /events/:id/assignments.
func (h *AssignmentsHandler) Apply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ApplyRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	assignment, err := h.assignments.Apply(c.Context(), c.Params("id"), principal.User.ID, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
}

// CanApply GET /events/:id/assignments/eligibility.
func (h *AssignmentsHandler) CanApply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	allowed, err := h.staffing.CanApply(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EligibilityResponse{CanApply: allowed}})
}

// ListForEvent GET /events/:id/assignments.
func (h *AssignmentsHandler) ListForEvent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	list, err := h.assignments.ListForEvent(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewAssignmentResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListMine GET /assignments.
func (h *AssignmentsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	list, err := h.assignments.ListForUser(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewAssignmentResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Accept POST /assignments/:id/accept.
func (h *AssignmentsHandler) Accept(c *fiber.Ctx) error {
	return h.respond(c, h.assignments.Accept)
}

// Reject POST /assignments/:id/reject.
func (h *AssignmentsHandler) Reject(c *fiber.Ctx) error {
	return h.respond(c, h.assignments.Reject)
}

// Cancel DELETE /events/:id/assignments. Staff withdraw their own
// pending application.
func (h *AssignmentsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.assignments.Cancel(c.Context(), c.Params("id"), principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"cancelled": true}})
}

// Remove DELETE /assignments/:id. Owners take staff off an event
// regardless of status.
func (h *AssignmentsHandler) Remove(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.assignments.Remove(c.Context(), c.Params("id"), principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": true}})
}

type respondFn func(ctx context.Context, assignmentID, actorID string, notes *string) (*domain.EventAssignment, error)

func (h *AssignmentsHandler) respond(c *fiber.Ctx, fn respondFn) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	assignment, err := fn(c.Context(), c.Params("id"), principal.User.ID, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
}

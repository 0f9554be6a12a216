package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staffing-service/internal/api/dto"
	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/repository"
	"github.com/spec-kit/staffing-service/internal/service"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// EventsHandler manages event administration endpoints.
type EventsHandler struct {
	events   *service.EventService
	staffing *service.StaffingService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService, staffingService *service.StaffingService) *EventsHandler {
	return &EventsHandler{events: eventService, staffing: staffingService}
}

// CreateEvent POST /events.
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.EventCreateInput{
		Name:               req.Name,
		Description:        req.Description,
		Date:               req.Date,
		TimeFrom:           req.TimeFrom,
		TimeTo:             req.TimeTo,
		Location:           req.Location,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		RequiredStaffCount: req.RequiredStaffCount,
		CompensationType:   domain.CompensationType(req.CompensationType),
		CompensationAmount: req.CompensationAmount,
		RequirementDetails: req.RequirementDetails,
	}
	event, err := h.events.CreateEvent(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEventSummary(event)})
}

// ListEvents GET /events.
func (h *EventsHandler) ListEvents(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	filter := parseEventQuery(c)
	events, err := h.events.ListAgencyEvents(c.Context(), principal.User.ID, filter)
	if err != nil {
		return err
	}
	items := make([]dto.EventSummary, 0, len(events))
	for i := range events {
		items = append(items, dto.NewEventSummary(&events[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetEvent GET /events/:id.
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	detail, err := h.events.GetEventDetail(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventDetailResponse(detail)})
}

// UpdateStatus PATCH /events/:id/status.
func (h *EventsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateEventStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	event, err := h.events.UpdateStatus(c.Context(), c.Params("id"), principal.User.ID, domain.EventStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventSummary(event)})
}

// DeleteEvent DELETE /events/:id.
func (h *EventsHandler) DeleteEvent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.events.DeleteEvent(c.Context(), c.Params("id"), principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// GetStaffing GET /events/:id/staffing.
func (h *EventsHandler) GetStaffing(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	summary, err := h.staffing.ComputeStaffing(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffingResponse(summary)})
}

// AuthorizeChannel POST /events/:id/channel/auth. Gate for real-time
// subscriptions: agency membership plus ownership or an accepted
// assignment.
func (h *EventsHandler) AuthorizeChannel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	allowed, err := h.events.CanSubscribe(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewUnauthorized("not allowed to join this channel")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"authorized": true}})
}

func parseEventQuery(c *fiber.Ctx) repository.EventFilter {
	filter := repository.EventFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.EventStatus(strings.TrimSpace(part)))
		}
	}
	if from := parseTime(c.Query("date_from")); from != nil {
		filter.DateFrom = from
	}
	if to := parseTime(c.Query("date_to")); to != nil {
		filter.DateTo = to
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func eventDetailResponse(detail *service.EventDetail) dto.EventDetailResponse {
	resp := dto.EventDetailResponse{
		EventSummary: dto.NewEventSummary(detail.Event),
		Description:  detail.Event.Description,
		Latitude:     detail.Event.Latitude,
		Longitude:    detail.Event.Longitude,
		Staffing:     dto.NewStaffingResponse(detail.Staffing),
	}
	if detail.Compensation != nil {
		resp.Compensation = &dto.CompensationResponse{
			Type:   detail.Compensation.Type,
			Amount: detail.Compensation.Amount,
		}
	}
	if detail.Requirement != nil {
		resp.Requirement = &dto.RequirementResponse{Details: detail.Requirement.Details}
	}
	return resp
}

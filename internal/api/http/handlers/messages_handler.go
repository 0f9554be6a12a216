package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staffing-service/internal/api/dto"
	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/service"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// MessagesHandler manages event chat endpoints.
type MessagesHandler struct {
	messages *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messageService}
}

// SendMessage POST /events/:id/messages.
func (h *MessagesHandler) SendMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	msg, err := h.messages.SendMessage(c.Context(), c.Params("id"), principal.User.ID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(msg)})
}

// ListMessages GET /events/:id/messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	list, err := h.messages.ListMessages(c.Context(), c.Params("id"), principal.User.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewMessageResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staffing-service/internal/api/dto"
	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/service"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// PayrollHandler manages payment endpoints.
type PayrollHandler struct {
	payroll *service.PayrollService
}

// NewPayrollHandler constructs handler.
func NewPayrollHandler(payrollService *service.PayrollService) *PayrollHandler {
	return &PayrollHandler{payroll: payrollService}
}

// ProcessPayment POST /events/:id/payments. The whole event is paid in
// one batch; a second call fails.
func (h *PayrollHandler) ProcessPayment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ProcessPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	inputs := make([]service.PaymentInput, 0, len(req.Payments))
	for _, row := range req.Payments {
		inputs = append(inputs, service.PaymentInput{
			UserID: row.UserID,
			Hours:  row.Hours,
			Rate:   row.Rate,
			Amount: row.Amount,
			Notes:  row.Notes,
		})
	}
	created, err := h.payroll.ProcessPayment(c.Context(), c.Params("id"), principal.User.ID, inputs)
	if err != nil {
		return err
	}

	resp := dto.PaymentBatchResponse{Payments: make([]dto.PaymentResponse, 0, len(created))}
	for i := range created {
		resp.Payments = append(resp.Payments, dto.NewPaymentResponse(&created[i]))
		resp.TotalAmount += created[i].Amount
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resp})
}

// ListEventPayments GET /events/:id/payments.
func (h *PayrollHandler) ListEventPayments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	list, err := h.payroll.ListEventPayments(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.PaymentResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewPaymentResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AgencySummary GET /agencies/:id/payroll.
func (h *PayrollHandler) AgencySummary(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	totals, err := h.payroll.AgencyPayrollSummary(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.StaffPayoutResponse, 0, len(totals))
	for _, total := range totals {
		items = append(items, dto.StaffPayoutResponse{
			UserID:       total.UserID,
			UserName:     total.UserName,
			PaymentCount: total.PaymentCount,
			TotalHours:   total.TotalHours,
			TotalAmount:  total.TotalAmount,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// MyPayments GET /payments/mine.
func (h *PayrollHandler) MyPayments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	list, total, err := h.payroll.MyPayments(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	resp := dto.MyPaymentsResponse{
		Payments:    make([]dto.PaymentResponse, 0, len(list)),
		TotalEarned: total,
	}
	for i := range list {
		resp.Payments = append(resp.Payments, dto.NewPaymentResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

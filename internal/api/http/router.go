package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staffing-service/internal/api/http/handlers"
	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Events         *handlers.EventsHandler
	Assignments    *handlers.AssignmentsHandler
	Payroll        *handlers.PayrollHandler
	Messages       *handlers.MessagesHandler
	Roles          *handlers.RolesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register/owner", cfg.Auth.RegisterOwner)
	authGroup.Post("/register/staff", cfg.Auth.RegisterStaff)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	ownerOnly := auth.RequireRole(domain.UserRoleAgencyOwner)

	events := app.Group("/events", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	events.Post("", ownerOnly, cfg.Events.CreateEvent)
	events.Get("", cfg.Events.ListEvents)
	events.Get("/:id", cfg.Events.GetEvent)
	events.Patch("/:id/status", ownerOnly, cfg.Events.UpdateStatus)
	events.Delete("/:id", ownerOnly, cfg.Events.DeleteEvent)
	events.Get("/:id/staffing", cfg.Events.GetStaffing)
	events.Post("/:id/channel/auth", cfg.Events.AuthorizeChannel)

	events.Post("/:id/assignments", cfg.Assignments.Apply)
	events.Get("/:id/assignments", cfg.Assignments.ListForEvent)
	events.Get("/:id/assignments/eligibility", cfg.Assignments.CanApply)
	events.Delete("/:id/assignments", cfg.Assignments.Cancel)

	events.Post("/:id/payments", ownerOnly, cfg.Payroll.ProcessPayment)
	events.Get("/:id/payments", ownerOnly, cfg.Payroll.ListEventPayments)

	events.Post("/:id/messages", cfg.Messages.SendMessage)
	events.Get("/:id/messages", cfg.Messages.ListMessages)

	assignments := app.Group("/assignments", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	assignments.Get("", cfg.Assignments.ListMine)
	assignments.Post("/:id/accept", ownerOnly, cfg.Assignments.Accept)
	assignments.Post("/:id/reject", ownerOnly, cfg.Assignments.Reject)
	assignments.Delete("/:id", ownerOnly, cfg.Assignments.Remove)

	app.Get("/payments/mine", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Payroll.MyPayments)
	app.Get("/agencies/:id/payroll", cfg.AuthMiddleware.Handle, ownerOnly, cfg.Payroll.AgencySummary)

	roles := app.Group("/roles", cfg.AuthMiddleware.Handle, ownerOnly)
	roles.Get("", cfg.Roles.ListRoles)
	roles.Post("", cfg.Roles.CreateRole)
	roles.Put("/:id", cfg.Roles.UpdateRole)
	roles.Delete("/:id", cfg.Roles.DeleteRole)

	app.Post("/users/:id/role", cfg.AuthMiddleware.Handle, ownerOnly, cfg.Roles.AssignRole)
}

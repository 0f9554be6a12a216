package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/staffing-service/internal/api/http"
	"github.com/spec-kit/staffing-service/internal/api/http/handlers"
	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/config"
	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/observability"
	"github.com/spec-kit/staffing-service/internal/persistence"
	"github.com/spec-kit/staffing-service/internal/realtime"
	"github.com/spec-kit/staffing-service/internal/repository"
	"github.com/spec-kit/staffing-service/internal/service"
	"github.com/spec-kit/staffing-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	agencyRepo := repository.NewAgencyRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	compensationRepo := repository.NewCompensationRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		AgencyRepo:        agencyRepo,
		PasswordResetRepo: resetRepo,
	})
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:        eventRepo,
		CompensationRepo: compensationRepo,
		AssignmentRepo:   assignmentRepo,
		AgencyRepo:       agencyRepo,
		UserRepo:         userRepo,
		Dispatcher:       dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo: assignmentRepo,
		EventRepo:      eventRepo,
		AgencyRepo:     agencyRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
	})
	staffingService := service.NewStaffingService(service.StaffingDependencies{
		AssignmentRepo: assignmentRepo,
		EventRepo:      eventRepo,
		UserRepo:       userRepo,
	})
	payrollService := service.NewPayrollService(service.PayrollDependencies{
		PaymentRepo:      paymentRepo,
		CompensationRepo: compensationRepo,
		EventRepo:        eventRepo,
		AgencyRepo:       agencyRepo,
		UserRepo:         userRepo,
		Dispatcher:       dispatcher,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo: messageRepo,
		EventRepo:   eventRepo,
		UserRepo:    userRepo,
		RoleRepo:    roleRepo,
		Dispatcher:  dispatcher,
	})
	roleService := service.NewRoleService(roleRepo, userRepo)

	if cfg.Relay.Enabled {
		relay := realtime.NewRelay(redis.Client, logger)
		relayWorker := worker.NewRelayWorker(dispatcher, relay, logger)
		relayWorker.Start()
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Events:         handlers.NewEventsHandler(eventService, staffingService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService, staffingService),
		Payroll:        handlers.NewPayrollHandler(payrollService),
		Messages:       handlers.NewMessagesHandler(messageService),
		Roles:          handlers.NewRolesHandler(roleService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	nats "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-api/internal/config"
	"github.com/noah-isme/classroom-api/internal/database"
	"github.com/noah-isme/classroom-api/internal/handler"
	"github.com/noah-isme/classroom-api/internal/middleware"
	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	"github.com/noah-isme/classroom-api/internal/router"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/internal/session"
	"github.com/noah-isme/classroom-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Instructor{},
		&models.Student{},
		&models.Assignment{},
		&models.Submission{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var broker service.EventPublisher = service.NewNoopPublisher()
	if cfg.NATSURL != "" {
		natsConn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, domain events disabled")
		} else {
			defer natsConn.Close()
			broker = service.NewNATSPublisher(natsConn, "classroom.events", logger)
		}
	}

	generator, err := ai.NewClient(ai.ClientConfig{
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	sessions := session.NewManager(redisClient, cfg.SessionTTL, logger)

	instructorRepo := repository.NewInstructorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(instructorRepo, studentRepo, validate, logger)
	dashboardService := service.NewDashboardService(assignmentRepo, studentRepo, submissionRepo, activityRepo, redisClient, cfg.DashboardCacheTTL, logger)
	// Mutations publish to the broker and drop the cached dashboard.
	events := service.NewFanoutPublisher(broker, service.NewDashboardInvalidator(dashboardService))
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, studentRepo, validate, activityService, events, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, activityService, events, logger)
	studentService := service.NewStudentService(studentRepo, submissionRepo, assignmentRepo, validate, activityService, events, logger)
	generationService := service.NewGenerationService(generator, submissionRepo, validate, cfg.GenerationTimeout, logger)

	deps := router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, sessions, cfg.SessionTTL, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		GradingHandler:    handler.NewGradingHandler(submissionService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
		GenerationHandler: handler.NewGenerationHandler(generationService, logger),
		Sessions:          sessions,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

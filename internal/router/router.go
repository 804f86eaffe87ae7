package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/classroom-api/internal/config"
	"github.com/noah-isme/classroom-api/internal/handler"
	"github.com/noah-isme/classroom-api/internal/middleware"
	"github.com/noah-isme/classroom-api/internal/observability"
	"github.com/noah-isme/classroom-api/internal/session"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	AssignmentHandler *handler.AssignmentHandler
	GradingHandler    *handler.GradingHandler
	SubmissionHandler *handler.SubmissionHandler
	StudentHandler    *handler.StudentHandler
	DashboardHandler  *handler.DashboardHandler
	GenerationHandler *handler.GenerationHandler
	Sessions          *session.Manager
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.Sessions != nil {
		api.Use(middleware.LoadSession(deps.Sessions))
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	instructor := api.Group("/instructor", middleware.RequireRole(session.RoleInstructor))
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(instructor.Group("/assignments"))
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(instructor.Group("/submissions"))
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(instructor.Group("/students"))
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(instructor.Group("/dashboard"))
	}
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.Register(instructor.Group("/generate"))
	}

	student := api.Group("/student", middleware.RequireRole(session.RoleStudent))
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(student.Group("/assignments"))
	}
}

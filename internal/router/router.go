package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tidianesow/medical-e-academy/internal/config"
	"github.com/tidianesow/medical-e-academy/internal/handler"
	"github.com/tidianesow/medical-e-academy/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ExerciseHandler   *handler.ExerciseHandler
	GradingHandler    *handler.GradingHandler
	SubmissionHandler *handler.SubmissionHandler
	StudyHandler      *handler.StudyHandler
	Guards            handler.RouteGuards
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/", handler.Welcome(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	v1 := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	v1.Get("/health", handler.HealthCheck(cfg))

	guards := withDefaults(deps.Guards)

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(app.Group("/api/auth"))
	}

	if deps.StudyHandler != nil {
		deps.StudyHandler.Register(app.Group("/api/dicom"))
	}

	// Static paths under /api/exercises go before the /:id routes.
	exercises := app.Group("/api/exercises")
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(exercises, guards)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(exercises, guards)
	}
	if deps.ExerciseHandler != nil {
		deps.ExerciseHandler.Register(exercises, guards)
	}
}

func withDefaults(guards handler.RouteGuards) handler.RouteGuards {
	pass := func(c *fiber.Ctx) error { return c.Next() }
	deny := func(c *fiber.Ctx) error { return fiber.ErrUnauthorized }

	if guards.Authenticated == nil {
		guards.Authenticated = deny
	}
	if guards.Teacher == nil {
		guards.Teacher = deny
	}
	if guards.Optional == nil {
		guards.Optional = pass
	}
	if guards.Grading == nil {
		guards.Grading = pass
	}
	return guards
}

package middleware

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Config customises the middleware registration pipeline.
type Config struct {
	Logger       *zerolog.Logger
	AllowOrigins string
	AccessLog    bool
}

// Register attaches the middlewares shared by every route.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}
	origins := cfg.AllowOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New())
	app.Use(CorrelationID())
	app.Use(Observability(requestLogger))
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${respHeader:X-Correlation-ID}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "X-Correlation-ID",
	}))
}

package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tidianesow/medical-e-academy/internal/observability"
)

// Observability records Prometheus metrics and a structured access log line
// for every /api request.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if !strings.HasPrefix(c.Path(), "/api") {
			return err
		}

		// Handler errors are rendered by the app error handler after this
		// middleware returns, so derive their status here.
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
		}

		duration := time.Since(start)
		route := routeTemplate(c)
		method := c.Method()
		statusLabel := strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(method, route, statusLabel).Inc()
		observability.HTTPLatency().WithLabelValues(method, route).Observe(duration.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.HTTPErrors().WithLabelValues(method, route, statusLabel).Inc()
		}

		requestLogger := logger.With().
			Str("correlation_id", GetCorrelationID(c)).
			Str("route", route).
			Str("method", method).
			Int("status", status).
			Float64("latency_ms", float64(duration)/float64(time.Millisecond)).
			Str("latency_bucket", latencyBucket(duration)).
			Logger()

		switch {
		case status >= fiber.StatusInternalServerError:
			requestLogger.Error().Msg("request failed")
		case status >= fiber.StatusBadRequest:
			requestLogger.Warn().Msg("request completed with client error")
		default:
			requestLogger.Info().Msg("request completed")
		}

		return err
	}
}

func routeTemplate(c *fiber.Ctx) string {
	if c.Route() != nil && c.Route().Path != "" {
		return c.Route().Path
	}
	return c.Path()
}

func latencyBucket(duration time.Duration) string {
	switch {
	case duration <= 50*time.Millisecond:
		return "<=50ms"
	case duration <= 250*time.Millisecond:
		return "<=250ms"
	case duration <= time.Second:
		return "<=1s"
	case duration <= 5*time.Second:
		return "<=5s"
	default:
		return ">5s"
	}
}

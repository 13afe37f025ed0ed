package middleware

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"docrag/internal/logging"
)

// Logger is a middleware that logs each HTTP request as one JSON line.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid := RequestIDFrom(c)
		status := statusOf(c, err)
		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}

		logger.LogAttrs(c.UserContext(), level, "http_request",
			slog.String("request_id", rid),
			slog.String("method", c.Method()),
			// Only the path, never the query string.
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		)

		return err
	}
}

// LoggerWithWriter logs requests to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(w, "info", loc))
}

// statusOf is the status the client will see once the error handler has run.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

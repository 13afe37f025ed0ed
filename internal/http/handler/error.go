package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docrag/internal/http/middleware"
	"docrag/internal/model"
)

// errorPayload is the body of every non-2xx response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes the envelope. message must be a fixed, caller-safe text;
// error values are never rendered.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// writeServiceError translates a domain error into its status and a fixed message.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrMemberAddRejected):
		return writeError(c, fiber.StatusBadRequest, "MEMBER_ADD_REJECTED", "member could not be added")
	case errors.Is(err, model.ErrInvalidArgument):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "invalid argument")
	case errors.Is(err, model.ErrUnauthenticated):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
	case errors.Is(err, model.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient permissions")
	case errors.Is(err, model.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, model.ErrQuorumViolation):
		return writeError(c, fiber.StatusConflict, "LAST_ADMIN", "workspace must keep at least one admin")
	case errors.Is(err, model.ErrConflict):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "resource already exists")
	case errors.Is(err, model.ErrStorageUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// invalidIDs reports whether any of the named path parameters is not a UUID.
func invalidIDs(c *fiber.Ctx, names ...string) bool {
	for _, name := range names {
		if _, err := uuid.Parse(c.Params(name)); err != nil {
			return true
		}
	}
	return false
}

func writeInvalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

func writeInvalidBody(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
}

// frameworkErrors covers the statuses Fiber and the middleware raise on their own.
var frameworkErrors = map[int]errorEnvelope{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "bad request"},
	fiber.StatusUnauthorized:          {"UNAUTHENTICATED", "authentication required"},
	fiber.StatusNotFound:              {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {"BODY_TOO_LARGE", "request body too large"},
	fiber.StatusTooManyRequests:       {"RATE_LIMITED", "too many requests"},
}

// ErrorHandler is the app-wide Fiber error handler. Errors that are not
// *fiber.Error become a 500 INTERNAL_ERROR.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		if env, ok := frameworkErrors[status]; ok {
			return writeError(c, status, env.Code, env.Message)
		}
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}

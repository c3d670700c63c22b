package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"mdblog/internal/http/middleware"
	"mdblog/internal/http/views"
	"mdblog/internal/logging"
)

// errorPayload defines the standardized JSON error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// wantsJSON reports whether errors for this request are answered with the JSON envelope
// instead of an HTML page.
func wantsJSON(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/api/") || p == "/api" || strings.HasPrefix(p, "/health")
}

// ErrorHandler returns the Fiber global error handler. API and health routes get the
// JSON envelope; pages get the rendered error template. Unexpected errors are logged
// and reported as a generic 500.
func ErrorHandler(loc *time.Location) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			logging.JSON(loc, map[string]any{
				"component":     "http",
				"event":         "unhandled_error",
				"status":        "error",
				"request_id":    middleware.GetRequestID(c),
				"method":        c.Method(),
				"path":          c.Path(),
				"error_message": err.Error(),
			})
		}

		code, message := describeStatus(status)
		if wantsJSON(c) {
			return writeError(c, status, code, message)
		}

		c.Status(status)
		if rerr := c.Render("error", fiber.Map{
			"Title":   message,
			"Status":  status,
			"Message": message,
			"User":    middleware.CurrentUser(c),
		}, views.Layout); rerr != nil {
			return c.Status(status).SendString(message)
		}
		return nil
	}
}

func describeStatus(status int) (string, string) {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST", "bad request"
	case fiber.StatusNotFound:
		return "NOT_FOUND", "resource not found"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED", "method not allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE", "request body too large"
	default:
		return "INTERNAL_ERROR", "internal server error"
	}
}

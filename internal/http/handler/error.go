package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docindex/internal/apperr"
	"docindex/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeAppError translates the typed error taxonomy into HTTP responses.
// Cross-organization denials carry their own code so clients can tell
// "wrong tenant" from "wrong owner"; both map to 403.
func writeAppError(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		msg := appErr.Msg
		if appErr.Field != "" {
			msg = appErr.Field + " " + appErr.Msg
		}
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", msg)
	case apperr.KindNotFound:
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case apperr.KindForbidden:
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "access denied")
	case apperr.KindCrossOrg:
		return writeError(c, fiber.StatusForbidden, "CROSS_ORG_ACCESS_DENIED", "access denied")
	case apperr.KindConflict:
		return writeError(c, fiber.StatusConflict, "VERSION_CONFLICT", "document was modified concurrently")
	case apperr.KindTimeout:
		return writeError(c, fiber.StatusGatewayTimeout, "TIMEOUT", "dependency timed out")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

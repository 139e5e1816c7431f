package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "farmdirect/internal/log"
	"farmdirect/internal/services"
)

const genericError = "Something went wrong. Please try again."

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(envelope{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(envelope{Success: true, Data: data})
}

func reject(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(envelope{Error: msg})
}

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrNotAuthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrInsufficientInventory):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// fail logs err under action and writes the error envelope. Store failures
// are reported with a generic message only.
func fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	st := statusOf(err)
	switch st {
	case fiber.StatusInternalServerError:
		applog.Error(c, action+".fail", err, fields)
		return reject(c, st, genericError)
	case fiber.StatusUnauthorized:
		applog.Security(c, "access.denied."+action, withErr(fields, err))
	default:
		applog.Info(c, action+".rejected", withErr(fields, err))
	}
	return reject(c, st, err.Error())
}

func withErr(fields map[string]any, err error) map[string]any {
	out := map[string]any{"error": err.Error()}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// ErrorHandler is the app-wide fallback for errors returned by handlers and
// middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
		return reject(c, code, genericError)
	}
	return reject(c, code, fe.Message)
}

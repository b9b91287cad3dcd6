package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/xpilot/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	raw, _ := c.Locals("user_id").(string)
	userID, _ := strconv.ParseInt(raw, 10, 64)
	return userID
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	var remote *service.RemoteError
	switch {
	case service.IsValidationError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrQuotaExceeded):
		return fiber.StatusTooManyRequests
	case errors.Is(err, service.ErrNotOwner):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrStreamNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrMissingCredentials):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, service.ErrInvalidUser):
		return fiber.StatusUnauthorized
	case errors.As(err, &remote):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	status := StatusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.Error("request failed", "path", c.Path(), "error", err)
		message = "Internal server error"
	} else {
		logger.Info("request rejected", "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return int64(id), nil
}

func formBool(v string) bool {
	switch v {
	case "1", "true", "TRUE", "True", "on", "yes":
		return true
	}
	return false
}

package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/xpilot/internal/service"
	"github.com/maheshrc27/xpilot/internal/transfer"
)

type StreamHandler struct {
	s      service.StreamService
	logger *slog.Logger
}

func NewStreamHandler(service service.StreamService, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{s: service, logger: logger}
}

func (h *StreamHandler) ListStreams(c *fiber.Ctx) error {
	streams, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"streams": streams,
	})
}

func (h *StreamHandler) CreateStream(c *fiber.Ctx) error {
	in := new(transfer.StreamCreation)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse body",
		})
	}

	stream, err := h.s.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stream)
}

func (h *StreamHandler) Results(c *fiber.Ctx) error {
	streamID, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stream id",
		})
	}

	results, err := h.s.Results(c.Context(), GetUserID(c), streamID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"stream_id": streamID,
		"results":   results,
	})
}

func (h *StreamHandler) SaveResult(c *fiber.Ctx) error {
	streamID, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stream id",
		})
	}

	in := new(transfer.StreamResultCreation)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse body",
		})
	}

	result, err := h.s.SaveResult(c.Context(), GetUserID(c), streamID, in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *StreamHandler) Toggle(c *fiber.Ctx) error {
	streamID, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stream id",
		})
	}

	stream, err := h.s.Toggle(c.Context(), GetUserID(c), streamID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(stream)
}

func (h *StreamHandler) DeleteStream(c *fiber.Ctx) error {
	streamID, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stream id",
		})
	}

	if err := h.s.Delete(c.Context(), GetUserID(c), streamID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Stream deleted",
	})
}

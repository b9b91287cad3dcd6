package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/service"
	"github.com/maheshrc27/xpilot/internal/transfer"
)

type UserHandler struct {
	s      service.UserService
	logger *slog.Logger
}

func NewUserHandler(service service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{s: service, logger: logger}
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	user, err := h.s.GetUserInfo(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	user, err := h.s.GetUserInfo(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	profile, err := h.s.Profile(c.Context(), user)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"user":    user,
		"profile": profile,
	})
}

func (h *UserHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if c.Method() == fiber.MethodPost {
		query = c.FormValue("q")
	}
	if query == "" {
		return c.JSON(fiber.Map{
			"query": "",
			"users": []*transfer.XUser{},
		})
	}

	user, err := h.s.GetUserInfo(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	users, err := h.s.Search(c.Context(), user, query)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"query": query,
		"users": users,
	})
}

func (h *UserHandler) View(c *fiber.Ctx) error {
	return h.withTarget(c, h.s.View, "")
}

func (h *UserHandler) Follow(c *fiber.Ctx) error {
	return h.withTarget(c, h.s.Follow, "Followed")
}

func (h *UserHandler) Unfollow(c *fiber.Ctx) error {
	return h.withTarget(c, h.s.Unfollow, "Unfollowed")
}

type targetAction func(ctx context.Context, user *models.User, handle string) (*transfer.XUser, error)

func (h *UserHandler) withTarget(c *fiber.Ctx, action targetAction, message string) error {
	user, err := h.s.GetUserInfo(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	target, err := action(c.Context(), user, c.Params("handle"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	resp := fiber.Map{"user": target}
	if message != "" {
		resp["message"] = message + " @" + target.Username
	}
	return c.JSON(resp)
}

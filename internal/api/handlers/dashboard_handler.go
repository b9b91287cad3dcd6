package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/xpilot/internal/service"
)

type DashboardHandler struct {
	users  service.UserService
	quota  service.QuotaService
	posts  service.PostService
	logger *slog.Logger
}

func NewDashboardHandler(users service.UserService, quota service.QuotaService, posts service.PostService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{users: users, quota: quota, posts: posts, logger: logger}
}

func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	userID := GetUserID(c)

	user, err := h.users.GetUserInfo(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	quota, err := h.quota.GetStatus(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	history, err := h.quota.History(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	counts, err := h.posts.CountByStatus(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"user":          user,
		"quota":         quota,
		"quota_history": history,
		"post_stats":    counts,
	})
}

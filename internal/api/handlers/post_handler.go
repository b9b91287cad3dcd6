package handlers

import (
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/xpilot/internal/service"
	"github.com/maheshrc27/xpilot/internal/transfer"
)

type PostHandler struct {
	s      service.PostService
	users  service.UserService
	logger *slog.Logger
}

func NewPostHandler(service service.PostService, users service.UserService, logger *slog.Logger) *PostHandler {
	return &PostHandler{s: service, users: users, logger: logger}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
	})
}

func (h *PostHandler) ScheduledPosts(c *fiber.Ctx) error {
	posts, err := h.s.Scheduled(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
	})
}

func (h *PostHandler) ComposeInfo(c *fiber.Ctx) error {
	user, err := h.users.GetUserInfo(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	info, err := h.s.ComposeInfo(c.Context(), user)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(info)
}

func (h *PostHandler) Compose(c *fiber.Ctx) error {
	user, err := h.users.GetUserInfo(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	in := new(transfer.PostComposition)
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
		if err := c.BodyParser(in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to parse body",
			})
		}
	} else {
		in.Text = c.FormValue("text")
		in.Schedule = formBool(c.FormValue("schedule"))
		in.ScheduleDate = c.FormValue("schedule_date")
		in.ScheduleTime = c.FormValue("schedule_time")
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["files"]
	}

	result, err := h.s.Compose(c.Context(), user, in, files)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	user, err := h.users.GetUserInfo(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.s.Delete(c.Context(), user, postID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(result)
}

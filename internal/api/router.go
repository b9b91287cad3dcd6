package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/maheshrc27/xpilot/internal/api/handlers"
	"github.com/maheshrc27/xpilot/internal/api/middleware"
	"github.com/maheshrc27/xpilot/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Post      *handlers.PostHandler
	User      *handlers.UserHandler
	Stream    *handlers.StreamHandler
}

// Register mounts every route on app. Everything but the login flow and
// /metrics sits behind the session middleware.
func Register(app *fiber.App, h Handlers, auth *middleware.AuthMiddleware, m *metrics.Metrics) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "xpilot",
			"status":  "ok",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	authGroup := app.Group("/auth")
	authGroup.Get("/login", h.Auth.Login)
	authGroup.Post("/login", h.Auth.LoginSubmit)
	authGroup.Get("/x_authorize", h.Auth.Authorize)
	authGroup.Get("/x_callback", h.Auth.Callback)
	authGroup.Get("/logout", h.Auth.Logout)

	session := auth.AuthMiddleware()

	tokens := app.Group("/auth/tokens", session)
	tokens.Get("/", h.Auth.Tokens)
	tokens.Post("/refresh", h.Auth.RefreshTokens)
	tokens.Post("/revoke", h.Auth.RevokeTokens)

	app.Get("/dashboard", session, h.Dashboard.Dashboard)

	posts := app.Group("/posts", session)
	posts.Get("/", h.Post.ListPosts)
	posts.Get("/compose", h.Post.ComposeInfo)
	posts.Post("/compose", h.Post.Compose)
	posts.Get("/scheduled", h.Post.ScheduledPosts)
	posts.Post("/:id/delete", h.Post.DeletePost)

	users := app.Group("/users", session)
	users.Get("/me", h.User.GetUserInfo)
	users.Get("/profile", h.User.Profile)
	users.Get("/search", h.User.Search)
	users.Post("/search", h.User.Search)
	users.Get("/:handle/view", h.User.View)
	users.Post("/:handle/follow", h.User.Follow)
	users.Post("/:handle/unfollow", h.User.Unfollow)

	streams := app.Group("/streams", session)
	streams.Get("/", h.Stream.ListStreams)
	streams.Post("/", h.Stream.CreateStream)
	streams.Get("/:id/results", h.Stream.Results)
	streams.Post("/:id/results", h.Stream.SaveResult)
	streams.Post("/:id/toggle", h.Stream.Toggle)
	streams.Post("/:id/delete", h.Stream.DeleteStream)
}

// ErrorHandler answers unhandled errors as JSON, keeping fiber's status codes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

package handlers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/xpilot/configs"
	"github.com/maheshrc27/xpilot/internal/service"
	"github.com/maheshrc27/xpilot/pkg/utils"
)

const (
	requestTokenCookie = "x_request_token"
	requestTokenTTL    = 10 * time.Minute
	sessionTTL         = 24 * time.Hour
)

type AuthHandler struct {
	s      service.AuthService
	cfg    config.Config
	logger *slog.Logger
}

func NewAuthHandler(cfg config.Config, service service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg, logger: logger}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"login_url": "/auth/x_authorize",
	})
}

func (h *AuthHandler) LoginSubmit(c *fiber.Ctx) error {
	return c.Redirect("/auth/x_authorize", fiber.StatusSeeOther)
}

func (h *AuthHandler) Authorize(c *fiber.Ctx) error {
	redirect, err := h.s.BeginLogin(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	token, err := utils.GenerateRequestToken(h.cfg.SecretKey, redirect.RequestToken, redirect.RequestSecret, requestTokenTTL)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.setCookie(c, requestTokenCookie, token, requestTokenTTL)

	return c.Redirect(redirect.URL, fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if c.Query("denied") != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Authorization was denied",
		})
	}

	oauthToken := c.Query("oauth_token")
	verifier := c.Query("oauth_verifier")
	if verifier == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing oauth_verifier",
		})
	}

	claims, err := utils.ValidateRequestToken(h.cfg.SecretKey, c.Cookies(requestTokenCookie))
	if err != nil {
		h.logger.Info("request token cookie rejected", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Login session expired, please try again",
		})
	}
	if oauthToken != "" && oauthToken != claims.RequestToken {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Request token mismatch",
		})
	}

	user, err := h.s.CompleteLogin(c.Context(), claims.RequestToken, claims.RequestSecret, verifier)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.clearCookie(c, requestTokenCookie)

	session, err := utils.GenerateToken(h.cfg.SecretKey, fmt.Sprintf("%d", user.ID), sessionTTL)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.setCookie(c, h.cfg.CookieName, session, sessionTTL)

	return c.Redirect("/dashboard", fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c, h.cfg.CookieName)
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

func (h *AuthHandler) Tokens(c *fiber.Ctx) error {
	status, err := h.s.TokenStatus(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(status)
}

func (h *AuthHandler) RefreshTokens(c *fiber.Ctx) error {
	user, err := h.s.RefreshCredentials(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Credentials verified",
		"user":    user,
	})
}

func (h *AuthHandler) RevokeTokens(c *fiber.Ctx) error {
	if err := h.s.RevokeCredentials(c.Context(), GetUserID(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Access token revoked",
	})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   strings.HasPrefix(h.cfg.SiteURL, "https://"),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

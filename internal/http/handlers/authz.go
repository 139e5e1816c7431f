package handlers

import (
	"strings"

	"farmdirect/internal/domain"
	applog "farmdirect/internal/log"
	"farmdirect/internal/services"

	"github.com/gofiber/fiber/v2"
)

// token reads the session token from the Authorization header, falling back
// to the sid cookie.
func token(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if t, found := strings.CutPrefix(h, "Bearer "); found {
			return strings.TrimSpace(t)
		}
	}
	return c.Cookies("sid")
}

// RequireUser rejects requests without a live session.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := token(c)
		if sid == "" {
			applog.Security(c, "auth.missing", nil)
			return reject(c, fiber.StatusUnauthorized, "authentication required")
		}
		u, err := auth.CurrentUser(c.UserContext(), sid)
		if err != nil || u == nil {
			applog.Security(c, "auth.invalid_session", nil)
			return reject(c, fiber.StatusUnauthorized, "authentication required")
		}
		c.Locals("user", u)
		c.Locals("sid", sid)
		return c.Next()
	}
}

// RequireRole must run after RequireUser.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := current(c)
		if u != nil {
			for _, r := range roles {
				if u.Role == r {
					return c.Next()
				}
			}
		}
		applog.Security(c, "access.denied.role", map[string]any{"want": roles})
		return reject(c, fiber.StatusUnauthorized, "not authorized")
	}
}

func current(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

package handlers

import (
	"time"

	"farmdirect/internal/log"
	"farmdirect/internal/services"
	"farmdirect/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func sessionCookie(sid string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable true behind TLS
		Expires:  expires,
	}
}

// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return reject(c, fiber.StatusBadRequest, "invalid request body")
	}
	email, okEmail := validate.Email(req.Email)
	if !okEmail {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return reject(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if !validate.Password(req.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return reject(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	sid, u, err := h.Auth.Login(c.UserContext(), email, req.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return reject(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	c.Locals("user", u)
	c.Cookie(sessionCookie(sid, time.Time{}))
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return ok(c, fiber.Map{"token": sid, "user": u})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid, _ := c.Locals("sid").(string)
	if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	c.Cookie(sessionCookie("", time.Now().Add(-1*time.Hour)))
	log.Audit(c, "auth.logout", nil)
	return ok(c, nil)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "farmdirect/internal/log"
	"farmdirect/internal/repos"
	"farmdirect/internal/services"
	"farmdirect/internal/validate"
)

type AdminHandler struct {
	Admin  *services.AdminService
	Events *repos.EventRepo
}

// POST /admin/delete
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	var req services.DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return reject(c, fiber.StatusBadRequest, "invalid request body")
	}
	id, valid := validate.ID(req.ID)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid id")
	}
	req.ID = id
	if err := h.Admin.Delete(c.UserContext(), req); err != nil {
		return fail(c, "admin.delete", err, map[string]any{"kind": req.Kind, "id": id})
	}
	applog.Audit(c, "admin.delete", map[string]any{"kind": req.Kind, "id": id})
	return ok(c, fiber.Map{"deleted": id})
}

// GET /admin/outbox lists deal events not yet published.
func (h *AdminHandler) Outbox(c *fiber.Ctx) error {
	rows, err := h.Events.Pending(c.UserContext(), 100)
	if err != nil {
		applog.Error(c, "admin.outbox.list.fail", err, nil)
		return reject(c, fiber.StatusInternalServerError, genericError)
	}
	return ok(c, rows)
}

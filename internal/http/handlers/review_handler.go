package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "farmdirect/internal/log"
	"farmdirect/internal/services"
	"farmdirect/internal/validate"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

type reviewRequest struct {
	DealID  string `json:"dealId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// POST /reviews
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return reject(c, fiber.StatusBadRequest, "invalid request body")
	}
	id, valid := validate.ID(req.DealID)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid dealId")
	}
	rv, err := h.Reviews.Create(c.UserContext(), id, current(c).ID, req.Rating, req.Comment)
	if err != nil {
		return fail(c, "review.create", err, map[string]any{"deal_id": id})
	}
	applog.Audit(c, "review.create", map[string]any{"review_id": rv.ID, "deal_id": id, "rating": rv.Rating})
	return created(c, rv)
}

// GET /reviews/:userId
func (h *ReviewHandler) ForUser(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("userId"))
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid userId")
	}
	out, err := h.Reviews.ForUser(c.UserContext(), id)
	if err != nil {
		return fail(c, "review.list", err, nil)
	}
	return ok(c, out)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"farmdirect/internal/services"
)

type MatchingHandler struct {
	Matching *services.MatchingService
}

// POST /matching/match
func (h *MatchingHandler) MatchAll(c *fiber.Ctx) error {
	out, err := h.Matching.MatchAllOpenDemand(c.UserContext())
	if err != nil {
		return fail(c, "matching.all", err, nil)
	}
	return ok(c, out)
}

// GET /matching/matches/farmer
func (h *MatchingHandler) ForFarmer(c *fiber.Ctx) error {
	out, err := h.Matching.MatchForFarmer(c.UserContext(), current(c).ID)
	if err != nil {
		return fail(c, "matching.farmer", err, nil)
	}
	return ok(c, out)
}

// GET /matching/matches/buyer
func (h *MatchingHandler) ForBuyer(c *fiber.Ctx) error {
	out, err := h.Matching.MatchForBuyer(c.UserContext(), current(c).ID)
	if err != nil {
		return fail(c, "matching.buyer", err, nil)
	}
	return ok(c, out)
}

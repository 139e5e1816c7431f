package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"farmdirect/internal/domain"
	applog "farmdirect/internal/log"
	"farmdirect/internal/services"
	"farmdirect/internal/validate"
)

// ListingHandler serves farmers' crops and buyers' demands.
type ListingHandler struct {
	Listings *services.ListingService
}

type cropRequest struct {
	CropName          string          `json:"cropName"`
	QuantityAvailable decimal.Decimal `json:"quantityAvailable"`
	PricePerUnit      decimal.Decimal `json:"pricePerUnit"`
	Status            string          `json:"status"`
}

type demandRequest struct {
	CropName         string          `json:"cropName"`
	QuantityRequired decimal.Decimal `json:"quantityRequired"`
	MaxPricePerUnit  decimal.Decimal `json:"maxPricePerUnit"`
	NeededBy         string          `json:"neededBy"`
	MinQualityGrade  string          `json:"minQualityGrade"`
}

// POST /farmers/crops
func (h *ListingHandler) CreateCrop(c *fiber.Ctx) error {
	var req cropRequest
	if err := c.BodyParser(&req); err != nil {
		return reject(c, fiber.StatusBadRequest, "invalid request body")
	}
	cr, err := h.Listings.CreateCrop(c.UserContext(), current(c).ID, services.CropInput{
		CropName:     req.CropName,
		Quantity:     req.QuantityAvailable,
		PricePerUnit: req.PricePerUnit,
		Status:       domain.CropStatus(req.Status),
	})
	if err != nil {
		return fail(c, "crop.create", err, nil)
	}
	applog.Audit(c, "crop.create", map[string]any{"crop_id": cr.ID, "crop": cr.CropName, "qty": cr.QuantityAvailable.String()})
	return created(c, cr)
}

// GET /farmers/crops
func (h *ListingHandler) MyCrops(c *fiber.Ctx) error {
	out, err := h.Listings.MyCrops(c.UserContext(), current(c).ID)
	if err != nil {
		return fail(c, "crop.list", err, nil)
	}
	return ok(c, out)
}

// PATCH /farmers/crops/:id/status
func (h *ListingHandler) AdvanceCrop(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return reject(c, fiber.StatusBadRequest, "status is required")
	}
	cr, err := h.Listings.AdvanceCrop(c.UserContext(), id, current(c).ID, domain.CropStatus(req.Status))
	if err != nil {
		return fail(c, "crop.status", err, map[string]any{"crop_id": id})
	}
	applog.Audit(c, "crop.status", map[string]any{"crop_id": id, "status": cr.Status})
	return ok(c, cr)
}

// POST /buyers/demands
func (h *ListingHandler) CreateDemand(c *fiber.Ctx) error {
	var req demandRequest
	if err := c.BodyParser(&req); err != nil {
		return reject(c, fiber.StatusBadRequest, "invalid request body")
	}
	d, err := h.Listings.CreateDemand(c.UserContext(), current(c).ID, services.DemandInput{
		CropName:        req.CropName,
		Quantity:        req.QuantityRequired,
		MaxPricePerUnit: req.MaxPricePerUnit,
		NeededBy:        req.NeededBy,
		MinQualityGrade: req.MinQualityGrade,
	})
	if err != nil {
		return fail(c, "demand.create", err, nil)
	}
	applog.Audit(c, "demand.create", map[string]any{"demand_id": d.ID, "crop": d.CropName})
	return created(c, d)
}

// GET /buyers/demands
func (h *ListingHandler) MyDemands(c *fiber.Ctx) error {
	out, err := h.Listings.MyDemands(c.UserContext(), current(c).ID)
	if err != nil {
		return fail(c, "demand.list", err, nil)
	}
	return ok(c, out)
}

// POST /buyers/demands/:id/cancel
func (h *ListingHandler) CancelDemand(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid id")
	}
	d, err := h.Listings.CancelDemand(c.UserContext(), id, current(c).ID)
	if err != nil {
		return fail(c, "demand.cancel", err, map[string]any{"demand_id": id})
	}
	applog.Audit(c, "demand.cancel", map[string]any{"demand_id": id})
	return ok(c, d)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"farmdirect/internal/domain"
	applog "farmdirect/internal/log"
	"farmdirect/internal/services"
	"farmdirect/internal/validate"
)

type DealHandler struct {
	Ledger   *services.LedgerService
	Tracking *services.TrackingService
}

type createDealRequest struct {
	ListingID string          `json:"listingId"`
	DemandID  string          `json:"demandId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"pricePerUnit"`
	Message   string          `json:"message"`
}

type offerRequest struct {
	Price   decimal.Decimal `json:"price"`
	Message string          `json:"message"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type acceptRequest struct {
	Seq int64 `json:"seq"`
}

// dealID reads and validates the :dealId path parameter.
func dealID(c *fiber.Ctx) (string, bool) {
	id, valid := validate.ID(c.Params("dealId"))
	if !valid {
		applog.Security(c, "validation.fail", map[string]any{"field": "dealId"})
	}
	return id, valid
}

func (h *DealHandler) create(c *fiber.Ctx, action string) error {
	var req createDealRequest
	if err := c.BodyParser(&req); err != nil {
		return reject(c, fiber.StatusBadRequest, "invalid request body")
	}
	listing, valid := validate.ID(req.ListingID)
	if !valid {
		applog.Security(c, "validation.fail", map[string]any{"field": "listingId"})
		return reject(c, fiber.StatusBadRequest, "invalid listingId")
	}
	if req.DemandID != "" {
		if _, valid := validate.ID(req.DemandID); !valid {
			applog.Security(c, "validation.fail", map[string]any{"field": "demandId"})
			return reject(c, fiber.StatusBadRequest, "invalid demandId")
		}
	}

	d, err := h.Ledger.CreateDeal(c.UserContext(), services.CreateDealInput{
		CropID:   listing,
		DemandID: req.DemandID,
		BuyerID:  current(c).ID,
		Price:    req.Price,
		Quantity: req.Quantity,
		Message:  req.Message,
	})
	if err != nil {
		return fail(c, action, err, map[string]any{"listing_id": listing})
	}
	applog.Audit(c, action, map[string]any{
		"deal_id":  d.ID,
		"listing":  d.CropID,
		"quantity": d.Quantity.String(),
		"total":    d.TotalAmount.String(),
	})
	return created(c, d)
}

// POST /deals/create
func (h *DealHandler) Create(c *fiber.Ctx) error { return h.create(c, "deal.create") }

// POST /buyers/negotiate opens a deal from the buyer's first offer.
func (h *DealHandler) Negotiate(c *fiber.Ctx) error { return h.create(c, "deal.negotiate.open") }

// POST /deals/confirm/:dealId
func (h *DealHandler) Confirm(c *fiber.Ctx) error {
	id, valid := dealID(c)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid dealId")
	}
	d, err := h.Ledger.ConfirmDeal(c.UserContext(), id, current(c).ID)
	if err != nil {
		return fail(c, "deal.confirm", err, map[string]any{"deal_id": id})
	}
	applog.Audit(c, "deal.confirm", map[string]any{"deal_id": id, "total": d.TotalAmount.String()})
	return ok(c, d)
}

// POST /deals/cancel/:dealId
func (h *DealHandler) Cancel(c *fiber.Ctx) error {
	id, valid := dealID(c)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid dealId")
	}
	d, err := h.Ledger.CancelDeal(c.UserContext(), id, current(c).ID)
	if err != nil {
		return fail(c, "deal.cancel", err, map[string]any{"deal_id": id})
	}
	applog.Audit(c, "deal.cancel", map[string]any{"deal_id": id})
	return ok(c, d)
}

// PATCH /deals/status/:dealId
func (h *DealHandler) UpdateStatus(c *fiber.Ctx) error {
	id, valid := dealID(c)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid dealId")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return reject(c, fiber.StatusBadRequest, "status is required")
	}
	d, err := h.Ledger.UpdateStatus(c.UserContext(), id, domain.DealStatus(req.Status), current(c).ID)
	if err != nil {
		return fail(c, "deal.status", err, map[string]any{"deal_id": id, "status": req.Status})
	}
	applog.Audit(c, "deal.status", map[string]any{"deal_id": id, "status": d.Status})
	return ok(c, d)
}

// GET /deals/my-deals
func (h *DealHandler) Mine(c *fiber.Ctx) error {
	out, err := h.Ledger.ListMyDeals(c.UserContext(), current(c).ID)
	if err != nil {
		return fail(c, "deal.list", err, nil)
	}
	return ok(c, out)
}

// GET /deals/:dealId
func (h *DealHandler) Get(c *fiber.Ctx) error {
	id, valid := dealID(c)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid dealId")
	}
	d, err := h.Ledger.GetDeal(c.UserContext(), id, current(c).ID)
	if err != nil {
		return fail(c, "deal.view", err, map[string]any{"deal_id": id})
	}
	return ok(c, d)
}

// GET /deals/tracking/:dealId
func (h *DealHandler) Track(c *fiber.Ctx) error {
	id, valid := dealID(c)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid dealId")
	}
	t, err := h.Tracking.GetTracking(c.UserContext(), id, current(c).ID)
	if err != nil {
		return fail(c, "deal.tracking", err, map[string]any{"deal_id": id})
	}
	return ok(c, t)
}

// POST /deals/negotiate/:dealId
func (h *DealHandler) Offer(c *fiber.Ctx) error {
	id, valid := dealID(c)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid dealId")
	}
	var req offerRequest
	if err := c.BodyParser(&req); err != nil {
		return reject(c, fiber.StatusBadRequest, "invalid request body")
	}
	e, err := h.Ledger.AppendNegotiation(c.UserContext(), id, current(c).ID, req.Price, req.Message)
	if err != nil {
		return fail(c, "deal.offer", err, map[string]any{"deal_id": id})
	}
	applog.Audit(c, "deal.offer", map[string]any{"deal_id": id, "seq": e.Seq, "price": e.Price.String()})
	return created(c, e)
}

// GET /deals/negotiations/:dealId
func (h *DealHandler) Offers(c *fiber.Ctx) error {
	id, valid := dealID(c)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid dealId")
	}
	out, err := h.Ledger.NegotiationHistory(c.UserContext(), id, current(c).ID)
	if err != nil {
		return fail(c, "deal.offers", err, map[string]any{"deal_id": id})
	}
	return ok(c, out)
}

// POST /deals/accept/:dealId
func (h *DealHandler) Accept(c *fiber.Ctx) error {
	id, valid := dealID(c)
	if !valid {
		return reject(c, fiber.StatusBadRequest, "invalid dealId")
	}
	var req acceptRequest
	if err := c.BodyParser(&req); err != nil || req.Seq <= 0 {
		return reject(c, fiber.StatusBadRequest, "seq is required")
	}
	d, err := h.Ledger.AcceptOffer(c.UserContext(), id, req.Seq, current(c).ID)
	if err != nil {
		return fail(c, "deal.accept", err, map[string]any{"deal_id": id, "seq": req.Seq})
	}
	applog.Audit(c, "deal.accept", map[string]any{"deal_id": id, "seq": req.Seq, "total": d.TotalAmount.String()})
	return ok(c, d)
}

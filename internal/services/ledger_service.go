package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"farmdirect/internal/domain"
	"farmdirect/internal/events"
	"farmdirect/internal/repos"
	"farmdirect/internal/validate"
)

// AcceptPolicy decides how a counter-offer becomes the committed price.
type AcceptPolicy string

const (
	// AcceptExplicit: only AcceptOffer changes the deal price.
	AcceptExplicit AcceptPolicy = "explicit"
	// AcceptOnConfirm: confirming freezes the latest offer's price.
	AcceptOnConfirm AcceptPolicy = "on_confirm"
)

// LedgerService owns deals: creation, negotiation and status transitions.
// Every mutation runs in one transaction together with its outbox event.
type LedgerService struct {
	DB           *sqlx.DB
	Crops        *repos.CropRepo
	Demands      *repos.DemandRepo
	Deals        *repos.DealRepo
	Negotiations *repos.NegotiationRepo
	Events       *repos.EventRepo
	Timeout      time.Duration
	Policy       AcceptPolicy
}

func NewLedgerService(db *sqlx.DB, timeout time.Duration, policy AcceptPolicy) *LedgerService {
	if policy != AcceptOnConfirm {
		policy = AcceptExplicit
	}
	return &LedgerService{
		DB:           db,
		Crops:        repos.NewCropRepo(db),
		Demands:      repos.NewDemandRepo(db),
		Deals:        repos.NewDealRepo(db),
		Negotiations: repos.NewNegotiationRepo(db),
		Events:       repos.NewEventRepo(db),
		Timeout:      timeout,
		Policy:       policy,
	}
}

type CreateDealInput struct {
	CropID   string
	DemandID string // optional
	BuyerID  string
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Message  string
}

type dealEvent struct {
	DealID   string            `json:"dealId"`
	CropID   string            `json:"listingId"`
	BuyerID  string            `json:"buyerId"`
	SellerID string            `json:"sellerId"`
	Status   domain.DealStatus `json:"status"`
	From     domain.DealStatus `json:"from,omitempty"`
	ActorID  string            `json:"actorId,omitempty"`
	Price    decimal.Decimal   `json:"pricePerUnit"`
	Quantity decimal.Decimal   `json:"quantity"`
	Total    decimal.Decimal   `json:"totalAmount"`
}

func eventOf(d domain.Deal, from domain.DealStatus, actor string) dealEvent {
	return dealEvent{
		DealID: d.ID, CropID: d.CropID, BuyerID: d.BuyerID, SellerID: d.SellerID,
		Status: d.Status, From: from, ActorID: actor,
		Price: d.PricePerUnit, Quantity: d.Quantity, Total: d.TotalAmount,
	}
}

// CreateDeal reserves quantity on the crop and opens a deal with the buyer's
// opening offer. The reservation is a compare-and-decrement on the crop's
// version; losing a race yields ErrInsufficientInventory and the caller must
// retry against fresh data.
func (s *LedgerService) CreateDeal(ctx context.Context, in CreateDealInput) (domain.Deal, error) {
	if in.CropID == "" || in.BuyerID == "" {
		return domain.Deal{}, invalid("listing and buyer are required")
	}
	if !validate.Positive(in.Price) {
		return domain.Deal{}, invalid("price must be positive")
	}
	if !validate.Positive(in.Quantity) {
		return domain.Deal{}, invalid("quantity must be positive")
	}
	msg, ok := validate.Message(in.Message)
	if !ok {
		return domain.Deal{}, invalid("message too long")
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var deal domain.Deal
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		crops := s.Crops.WithTx(tx)
		c, err := crops.Get(ctx, in.CropID)
		if err != nil {
			return lookup(err, "listing", in.CropID)
		}
		if !c.Status.Sellable() {
			return fmt.Errorf("%w: listing %s is %s", ErrInvalidTransition, c.ID, c.Status)
		}
		if c.FarmerID == in.BuyerID {
			return invalid("cannot trade on your own listing")
		}
		if in.DemandID != "" {
			d, err := s.Demands.WithTx(tx).Get(ctx, in.DemandID)
			if err != nil {
				return lookup(err, "demand", in.DemandID)
			}
			if d.BuyerID != in.BuyerID {
				return fmt.Errorf("%w: demand %s belongs to another buyer", ErrNotAuthorized, d.ID)
			}
			if d.Status != domain.DemandOpen {
				return fmt.Errorf("%w: demand %s is %s", ErrInvalidTransition, d.ID, d.Status)
			}
			if d.CropName != c.CropName {
				return invalid("demand is for %q, listing is %q", d.CropName, c.CropName)
			}
		}
		if in.Quantity.GreaterThan(c.QuantityAvailable) {
			return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientInventory, in.Quantity, c.QuantityAvailable)
		}

		c.QuantityAvailable = c.QuantityAvailable.Sub(in.Quantity)
		if c.QuantityAvailable.IsZero() {
			c.PriorStatus = string(c.Status)
			c.Status = domain.CropSold
		}
		if err := crops.SaveVersioned(ctx, &c); err != nil {
			if errors.Is(err, repos.ErrConflict) {
				return fmt.Errorf("%w: listing %s changed, retry", ErrInsufficientInventory, c.ID)
			}
			return err
		}

		deal = domain.Deal{
			ID:           uuid.NewString(),
			CropID:       c.ID,
			DemandID:     in.DemandID,
			BuyerID:      in.BuyerID,
			SellerID:     c.FarmerID,
			CropName:     c.CropName,
			PricePerUnit: in.Price,
			Quantity:     in.Quantity,
			Status:       domain.DealCreated,
		}
		deal.Recompute()
		if err := s.Deals.WithTx(tx).Create(ctx, &deal); err != nil {
			return err
		}
		opening := domain.NegotiationEntry{DealID: deal.ID, SenderID: in.BuyerID, Price: in.Price, Message: msg}
		if err := s.Negotiations.WithTx(tx).Append(ctx, &opening); err != nil {
			return err
		}
		deal.NegotiationHistory = []domain.NegotiationEntry{opening}
		return s.Events.WithTx(tx).Append(ctx, deal.ID, events.DealCreated, eventOf(deal, "", in.BuyerID))
	})
	if err != nil {
		return domain.Deal{}, classify(err)
	}
	return deal, nil
}

func (s *LedgerService) ConfirmDeal(ctx context.Context, dealID, actorID string) (domain.Deal, error) {
	return s.transition(ctx, dealID, actorID, domain.DealConfirmed)
}

func (s *LedgerService) CancelDeal(ctx context.Context, dealID, actorID string) (domain.Deal, error) {
	return s.transition(ctx, dealID, actorID, domain.DealCancelled)
}

// UpdateStatus is the generic setter. It accepts only statuses reachable from
// the current one in the transition table.
func (s *LedgerService) UpdateStatus(ctx context.Context, dealID string, next domain.DealStatus, actorID string) (domain.Deal, error) {
	return s.transition(ctx, dealID, actorID, next)
}

func (s *LedgerService) transition(ctx context.Context, dealID, actorID string, next domain.DealStatus) (domain.Deal, error) {
	if !next.Valid() {
		return domain.Deal{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var deal domain.Deal
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		deals := s.Deals.WithTx(tx)
		d, err := deals.Get(ctx, dealID)
		if err != nil {
			return lookup(err, "deal", dealID)
		}
		if !d.IsParty(actorID) {
			return fmt.Errorf("%w: %s is not a party to deal %s", ErrNotAuthorized, actorID, d.ID)
		}
		if !d.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, next)
		}

		if next == domain.DealConfirmed && s.Policy == AcceptOnConfirm {
			last, err := s.Negotiations.WithTx(tx).Latest(ctx, d.ID)
			if err != nil {
				return lookup(err, "offer for deal", d.ID)
			}
			d.PricePerUnit = last.Price
			d.Recompute()
			if err := deals.UpdatePrice(ctx, d.ID, d.Status, d.PricePerUnit, d.TotalAmount); err != nil {
				return conflictAsTransition(err, d.ID)
			}
		}

		from := d.Status
		if err := deals.UpdateStatus(ctx, d.ID, from, next); err != nil {
			return conflictAsTransition(err, d.ID)
		}
		d.Status = next

		switch next {
		case domain.DealCancelled:
			if err := s.release(ctx, tx, d.CropID, d.Quantity); err != nil {
				return err
			}
		case domain.DealDelivered:
			if d.DemandID != "" {
				err := s.Demands.WithTx(tx).UpdateStatus(ctx, d.DemandID, domain.DemandOpen, domain.DemandFulfilled)
				// a demand the buyer already closed stays as it is
				if err != nil && !errors.Is(err, repos.ErrConflict) {
					return err
				}
			}
		}

		deal = d
		return s.Events.WithTx(tx).Append(ctx, d.ID, events.DealStatusChanged, eventOf(d, from, actorID))
	})
	if err != nil {
		return domain.Deal{}, classify(err)
	}
	return deal, nil
}

// release returns reserved quantity to a crop. A crop that was sold out by
// reservations goes back to the farming stage it was in.
func (s *LedgerService) release(ctx context.Context, tx *sqlx.Tx, cropID string, qty decimal.Decimal) error {
	crops := s.Crops.WithTx(tx)
	c, err := crops.Get(ctx, cropID)
	if err != nil {
		return lookup(err, "listing", cropID)
	}
	c.QuantityAvailable = c.QuantityAvailable.Add(qty)
	if c.Status == domain.CropSold && c.PriorStatus != "" {
		c.Status = domain.CropStatus(c.PriorStatus)
		c.PriorStatus = ""
	}
	return crops.SaveVersioned(ctx, &c)
}

func conflictAsTransition(err error, dealID string) error {
	if errors.Is(err, repos.ErrConflict) {
		return fmt.Errorf("%w: deal %s changed concurrently", ErrInvalidTransition, dealID)
	}
	return err
}

// AppendNegotiation records a counter-offer. Only allowed before confirmation;
// the deal price is left unchanged.
func (s *LedgerService) AppendNegotiation(ctx context.Context, dealID, actorID string, price decimal.Decimal, message string) (domain.NegotiationEntry, error) {
	if !validate.Positive(price) {
		return domain.NegotiationEntry{}, invalid("price must be positive")
	}
	message, ok := validate.Message(message)
	if !ok {
		return domain.NegotiationEntry{}, invalid("message too long")
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var entry domain.NegotiationEntry
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		d, err := s.Deals.WithTx(tx).Get(ctx, dealID)
		if err != nil {
			return lookup(err, "deal", dealID)
		}
		if !d.IsParty(actorID) {
			return fmt.Errorf("%w: %s is not a party to deal %s", ErrNotAuthorized, actorID, d.ID)
		}
		if d.Status != domain.DealCreated {
			return fmt.Errorf("%w: negotiation closed, deal is %s", ErrInvalidTransition, d.Status)
		}
		entry = domain.NegotiationEntry{DealID: d.ID, SenderID: actorID, Price: price, Message: message}
		if err := s.Negotiations.WithTx(tx).Append(ctx, &entry); err != nil {
			return err
		}
		return s.Events.WithTx(tx).Append(ctx, d.ID, events.DealNegotiated, map[string]any{
			"dealId": d.ID, "seq": entry.Seq, "senderId": actorID, "price": price,
		})
	})
	if err != nil {
		return domain.NegotiationEntry{}, classify(err)
	}
	return entry, nil
}

// AcceptOffer makes the price of offer seq the committed deal price. The
// sender of an offer cannot accept it.
func (s *LedgerService) AcceptOffer(ctx context.Context, dealID string, seq int64, actorID string) (domain.Deal, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var deal domain.Deal
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		deals := s.Deals.WithTx(tx)
		d, err := deals.Get(ctx, dealID)
		if err != nil {
			return lookup(err, "deal", dealID)
		}
		if !d.IsParty(actorID) {
			return fmt.Errorf("%w: %s is not a party to deal %s", ErrNotAuthorized, actorID, d.ID)
		}
		if d.Status != domain.DealCreated {
			return fmt.Errorf("%w: negotiation closed, deal is %s", ErrInvalidTransition, d.Status)
		}
		e, err := s.Negotiations.WithTx(tx).Get(ctx, d.ID, seq)
		if err != nil {
			return lookup(err, "offer", fmt.Sprint(seq))
		}
		if e.SenderID == actorID {
			return invalid("cannot accept your own offer")
		}
		d.PricePerUnit = e.Price
		d.Recompute()
		if err := deals.UpdatePrice(ctx, d.ID, domain.DealCreated, d.PricePerUnit, d.TotalAmount); err != nil {
			return conflictAsTransition(err, d.ID)
		}
		deal = d
		return s.Events.WithTx(tx).Append(ctx, d.ID, events.DealOfferAccepted, eventOf(d, "", actorID))
	})
	if err != nil {
		return domain.Deal{}, classify(err)
	}
	return deal, nil
}

// GetDeal returns a deal with its negotiation history; parties only.
func (s *LedgerService) GetDeal(ctx context.Context, dealID, actorID string) (domain.Deal, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	d, err := s.Deals.Get(ctx, dealID)
	if err != nil {
		return domain.Deal{}, lookup(err, "deal", dealID)
	}
	if !d.IsParty(actorID) {
		return domain.Deal{}, fmt.Errorf("%w: %s is not a party to deal %s", ErrNotAuthorized, actorID, d.ID)
	}
	d.NegotiationHistory, err = s.Negotiations.ListByDeal(ctx, d.ID)
	if err != nil {
		return domain.Deal{}, classify(err)
	}
	return d, nil
}

// NegotiationHistory returns the offer trail in the order it was appended.
func (s *LedgerService) NegotiationHistory(ctx context.Context, dealID, actorID string) ([]domain.NegotiationEntry, error) {
	d, err := s.GetDeal(ctx, dealID, actorID)
	if err != nil {
		return nil, err
	}
	return d.NegotiationHistory, nil
}

// ListMyDeals returns deals where actorID is buyer or seller, newest first.
func (s *LedgerService) ListMyDeals(ctx context.Context, actorID string) ([]domain.Deal, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Deals.ListByParty(ctx, actorID)
	return out, classify(err)
}

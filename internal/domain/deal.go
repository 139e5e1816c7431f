package domain

import "github.com/shopspring/decimal"

type DealStatus string

const (
	DealCreated   DealStatus = "CREATED"
	DealConfirmed DealStatus = "CONFIRMED"
	DealInTransit DealStatus = "IN_TRANSIT"
	DealDelivered DealStatus = "DELIVERED"
	DealCancelled DealStatus = "CANCELLED"
)

// dealTransitions is the only source of legal deal status changes.
var dealTransitions = map[DealStatus][]DealStatus{
	DealCreated:   {DealConfirmed, DealCancelled},
	DealConfirmed: {DealInTransit, DealCancelled},
	DealInTransit: {DealDelivered},
	DealDelivered: nil,
	DealCancelled: nil,
}

func (s DealStatus) Valid() bool {
	_, ok := dealTransitions[s]
	return ok
}

func (s DealStatus) Terminal() bool {
	return s.Valid() && len(dealTransitions[s]) == 0
}

// CanTransition reports whether next is directly reachable from s.
func (s DealStatus) CanTransition(next DealStatus) bool {
	for _, n := range dealTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Deal is a trade between one crop listing and one buyer.
type Deal struct {
	ID           string          `db:"id" json:"id"`
	CropID       string          `db:"crop_id" json:"listingId"`
	DemandID     string          `db:"demand_id" json:"demandId,omitempty"`
	BuyerID      string          `db:"buyer_id" json:"buyerId"`
	SellerID     string          `db:"seller_id" json:"sellerId"`
	CropName     string          `db:"crop_name" json:"cropName"`
	PricePerUnit decimal.Decimal `db:"price_per_unit" json:"pricePerUnit"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Status       DealStatus      `db:"status" json:"status"`
	CreatedAt    string          `db:"created_at" json:"createdAt"`
	UpdatedAt    string          `db:"updated_at" json:"updatedAt,omitempty"`

	NegotiationHistory []NegotiationEntry `db:"-" json:"negotiationHistory,omitempty"`
}

// IsParty reports whether userID is the buyer or the seller.
func (d *Deal) IsParty(userID string) bool {
	return userID != "" && (userID == d.BuyerID || userID == d.SellerID)
}

// Recompute sets TotalAmount from PricePerUnit and Quantity.
func (d *Deal) Recompute() {
	d.TotalAmount = d.PricePerUnit.Mul(d.Quantity)
}

type NegotiationEntry struct {
	Seq       int64           `db:"seq" json:"seq"`
	DealID    string          `db:"deal_id" json:"-"`
	SenderID  string          `db:"sender_id" json:"senderId"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Message   string          `db:"message" json:"message,omitempty"`
	CreatedAt string          `db:"created_at" json:"timestamp"`
}

type Checkpoint struct {
	Label   string `json:"label"`
	Status  string `json:"status"`
	Reached bool   `json:"reached"`
}

type Tracking struct {
	DealID      string       `json:"dealId"`
	Status      DealStatus   `json:"status"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

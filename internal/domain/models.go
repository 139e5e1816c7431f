package domain

import "github.com/shopspring/decimal"

type CropStatus string

const (
	CropPlanted   CropStatus = "PLANTED"
	CropGrowing   CropStatus = "GROWING"
	CropHarvested CropStatus = "HARVESTED"
	CropSold      CropStatus = "SOLD"
)

// SellableCropStatuses lists the statuses a crop can be matched or reserved in.
var SellableCropStatuses = []CropStatus{CropPlanted, CropGrowing, CropHarvested}

func (s CropStatus) Sellable() bool {
	return s == CropPlanted || s == CropGrowing || s == CropHarvested
}

// stage orders the farming stages; SOLD sits after all of them.
func (s CropStatus) stage() int {
	switch s {
	case CropPlanted:
		return 1
	case CropGrowing:
		return 2
	case CropHarvested:
		return 3
	case CropSold:
		return 4
	}
	return 0
}

func (s CropStatus) Valid() bool { return s.stage() > 0 }

// CanAdvanceTo reports whether a farmer may move a crop from s to next by hand.
// Farming stages only move forward; any sellable crop may be marked SOLD.
func (s CropStatus) CanAdvanceTo(next CropStatus) bool {
	if !s.Sellable() || !next.Valid() {
		return false
	}
	return next.stage() > s.stage()
}

// Crop is a farmer's supply listing.
type Crop struct {
	ID                string          `db:"id" json:"id"`
	FarmerID          string          `db:"farmer_id" json:"farmerId"`
	CropName          string          `db:"crop_name" json:"cropName"`
	QuantityAvailable decimal.Decimal `db:"quantity_available" json:"quantityAvailable"`
	PricePerUnit      decimal.Decimal `db:"price_per_unit" json:"pricePerUnit"`
	Status            CropStatus      `db:"status" json:"status"`
	PriorStatus       string          `db:"prior_status" json:"-"`
	Version           int64           `db:"version" json:"version"`
	CreatedAt         string          `db:"created_at" json:"createdAt"`
	UpdatedAt         string          `db:"updated_at" json:"updatedAt,omitempty"`
}

type DemandStatus string

const (
	DemandOpen      DemandStatus = "OPEN"
	DemandFulfilled DemandStatus = "FULFILLED"
	DemandCancelled DemandStatus = "CANCELLED"
)

// Demand is a buyer's purchase intent.
type Demand struct {
	ID               string          `db:"id" json:"id"`
	BuyerID          string          `db:"buyer_id" json:"buyerId"`
	CropName         string          `db:"crop_name" json:"cropName"`
	QuantityRequired decimal.Decimal `db:"quantity_required" json:"quantityRequired"`
	MaxPricePerUnit  decimal.Decimal `db:"max_price_per_unit" json:"maxPricePerUnit"`
	NeededBy         string          `db:"needed_by" json:"neededBy,omitempty"`
	MinQualityGrade  string          `db:"min_quality_grade" json:"minQualityGrade,omitempty"`
	Status           DemandStatus    `db:"status" json:"status"`
	CreatedAt        string          `db:"created_at" json:"createdAt"`
}

type Review struct {
	ID        string `db:"id" json:"id"`
	DealID    string `db:"deal_id" json:"dealId"`
	AuthorID  string `db:"author_id" json:"authorId"`
	SubjectID string `db:"subject_id" json:"subjectId"`
	Rating    int    `db:"rating" json:"rating"`
	Comment   string `db:"comment" json:"comment,omitempty"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"farmdirect/internal/domain"
	"farmdirect/internal/repos"
	"farmdirect/internal/validate"
)

// ListingService is the owner-facing side of the inventory store: farmers
// manage crops, buyers manage demands.
type ListingService struct {
	Crops   *repos.CropRepo
	Demands *repos.DemandRepo
	Timeout time.Duration
}

func NewListingService(crops *repos.CropRepo, demands *repos.DemandRepo, timeout time.Duration) *ListingService {
	return &ListingService{Crops: crops, Demands: demands, Timeout: timeout}
}

type CropInput struct {
	CropName     string
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	Status       domain.CropStatus
}

func (s *ListingService) CreateCrop(ctx context.Context, farmerID string, in CropInput) (domain.Crop, error) {
	name, ok := validate.CropName(in.CropName)
	if !ok {
		return domain.Crop{}, invalid("invalid crop name")
	}
	if !validate.NonNegative(in.Quantity) || !validate.NonNegative(in.PricePerUnit) {
		return domain.Crop{}, invalid("quantity and price must be zero or more")
	}
	st := in.Status
	if st == "" {
		st = domain.CropPlanted
	}
	if !st.Sellable() {
		return domain.Crop{}, invalid("new listings must be PLANTED, GROWING or HARVESTED")
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	c := domain.Crop{
		ID:                uuid.NewString(),
		FarmerID:          farmerID,
		CropName:          name,
		QuantityAvailable: in.Quantity,
		PricePerUnit:      in.PricePerUnit,
		Status:            st,
	}
	if err := s.Crops.Create(ctx, &c); err != nil {
		return domain.Crop{}, classify(err)
	}
	return c, nil
}

// AdvanceCrop moves the owner's crop forward through the farming stages.
func (s *ListingService) AdvanceCrop(ctx context.Context, cropID, farmerID string, next domain.CropStatus) (domain.Crop, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	c, err := s.Crops.Get(ctx, cropID)
	if err != nil {
		return domain.Crop{}, lookup(err, "listing", cropID)
	}
	if c.FarmerID != farmerID {
		return domain.Crop{}, fmt.Errorf("%w: listing %s belongs to another farmer", ErrNotAuthorized, c.ID)
	}
	if !c.Status.CanAdvanceTo(next) {
		return domain.Crop{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}
	c.Status = next
	c.PriorStatus = ""
	if err := s.Crops.SaveVersioned(ctx, &c); err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return domain.Crop{}, fmt.Errorf("%w: listing %s changed concurrently", ErrInvalidTransition, c.ID)
		}
		return domain.Crop{}, classify(err)
	}
	return c, nil
}

func (s *ListingService) MyCrops(ctx context.Context, farmerID string) ([]domain.Crop, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Crops.ListByFarmer(ctx, farmerID)
	return out, classify(err)
}

type DemandInput struct {
	CropName        string
	Quantity        decimal.Decimal
	MaxPricePerUnit decimal.Decimal
	NeededBy        string
	MinQualityGrade string
}

func (s *ListingService) CreateDemand(ctx context.Context, buyerID string, in DemandInput) (domain.Demand, error) {
	name, ok := validate.CropName(in.CropName)
	if !ok {
		return domain.Demand{}, invalid("invalid crop name")
	}
	if !validate.Positive(in.Quantity) {
		return domain.Demand{}, invalid("quantity must be positive")
	}
	if !validate.NonNegative(in.MaxPricePerUnit) {
		return domain.Demand{}, invalid("max price must be zero or more")
	}
	neededBy, ok := validate.Date(in.NeededBy)
	if !ok {
		return domain.Demand{}, invalid("neededBy must be YYYY-MM-DD")
	}
	grade, ok := validate.Grade(in.MinQualityGrade)
	if !ok {
		return domain.Demand{}, invalid("invalid quality grade")
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	d := domain.Demand{
		ID:               uuid.NewString(),
		BuyerID:          buyerID,
		CropName:         name,
		QuantityRequired: in.Quantity,
		MaxPricePerUnit:  in.MaxPricePerUnit,
		NeededBy:         neededBy,
		MinQualityGrade:  grade,
		Status:           domain.DemandOpen,
	}
	if err := s.Demands.Create(ctx, &d); err != nil {
		return domain.Demand{}, classify(err)
	}
	return d, nil
}

// CancelDemand closes an open demand; there is no way to reopen it.
func (s *ListingService) CancelDemand(ctx context.Context, demandID, buyerID string) (domain.Demand, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	d, err := s.Demands.Get(ctx, demandID)
	if err != nil {
		return domain.Demand{}, lookup(err, "demand", demandID)
	}
	if d.BuyerID != buyerID {
		return domain.Demand{}, fmt.Errorf("%w: demand %s belongs to another buyer", ErrNotAuthorized, d.ID)
	}
	if d.Status != domain.DemandOpen {
		return domain.Demand{}, fmt.Errorf("%w: demand %s is %s", ErrInvalidTransition, d.ID, d.Status)
	}
	if err := s.Demands.UpdateStatus(ctx, d.ID, domain.DemandOpen, domain.DemandCancelled); err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return domain.Demand{}, fmt.Errorf("%w: demand %s changed concurrently", ErrInvalidTransition, d.ID)
		}
		return domain.Demand{}, classify(err)
	}
	d.Status = domain.DemandCancelled
	return d, nil
}

func (s *ListingService) MyDemands(ctx context.Context, buyerID string) ([]domain.Demand, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Demands.ListByBuyer(ctx, buyerID)
	return out, classify(err)
}

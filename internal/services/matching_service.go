package services

import (
	"context"
	"time"

	"farmdirect/internal/domain"
	"farmdirect/internal/matching"
	"farmdirect/internal/repos"
)

// MatchingService loads inventory snapshots and runs the matcher over them.
// It never writes.
type MatchingService struct {
	Crops   *repos.CropRepo
	Demands *repos.DemandRepo
	Timeout time.Duration
}

func NewMatchingService(crops *repos.CropRepo, demands *repos.DemandRepo, timeout time.Duration) *MatchingService {
	return &MatchingService{Crops: crops, Demands: demands, Timeout: timeout}
}

func (s *MatchingService) MatchAllOpenDemand(ctx context.Context) ([]matching.DemandMatches, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	demands, err := s.Demands.ListOpen(ctx)
	if err != nil {
		return nil, classify(err)
	}
	crops, err := s.Crops.ListSellable(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return matching.MatchAllOpenDemand(demands, crops), nil
}

// MatchForFarmer is a discovery view: open demands for any crop the farmer
// has listed, whatever the quantities.
func (s *MatchingService) MatchForFarmer(ctx context.Context, farmerID string) ([]domain.Demand, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	crops, err := s.Crops.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, classify(err)
	}
	if len(crops) == 0 {
		return []domain.Demand{}, nil
	}
	demands, err := s.Demands.ListOpen(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return matching.MatchForFarmer(farmerID, demands, crops), nil
}

func (s *MatchingService) MatchForBuyer(ctx context.Context, buyerID string) ([]domain.Crop, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	demands, err := s.Demands.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, classify(err)
	}
	if len(demands) == 0 {
		return []domain.Crop{}, nil
	}
	crops, err := s.Crops.ListSellable(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return matching.MatchForBuyer(buyerID, demands, crops), nil
}

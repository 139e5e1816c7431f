package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmdirect/internal/repos"
)

type DeleteKind string

const (
	DeleteReviewKind DeleteKind = "review"
	DeleteCropKind   DeleteKind = "crop"
	DeleteDemandKind DeleteKind = "demand"
)

// DeleteRequest names exactly one entity to remove.
type DeleteRequest struct {
	Kind DeleteKind `json:"kind"`
	ID   string     `json:"id"`
}

type AdminService struct {
	Reviews *repos.ReviewRepo
	Crops   *repos.CropRepo
	Demands *repos.DemandRepo
	Timeout time.Duration
}

func NewAdminService(reviews *repos.ReviewRepo, crops *repos.CropRepo, demands *repos.DemandRepo, timeout time.Duration) *AdminService {
	return &AdminService{Reviews: reviews, Crops: crops, Demands: demands, Timeout: timeout}
}

// Delete dispatches on the request kind.
func (s *AdminService) Delete(ctx context.Context, req DeleteRequest) error {
	if req.ID == "" {
		return invalid("id is required")
	}
	switch req.Kind {
	case DeleteReviewKind:
		return s.DeleteReview(ctx, req.ID)
	case DeleteCropKind:
		return s.DeleteCrop(ctx, req.ID)
	case DeleteDemandKind:
		return s.DeleteDemand(ctx, req.ID)
	default:
		return invalid("unknown kind %q", req.Kind)
	}
}

func (s *AdminService) DeleteReview(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	return missing(s.Reviews.Delete(ctx, id), "review", id)
}

// DeleteCrop refuses crops that any deal refers to.
func (s *AdminService) DeleteCrop(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	n, err := s.Crops.CountDeals(ctx, id)
	if err != nil {
		return classify(err)
	}
	if n > 0 {
		return fmt.Errorf("%w: listing %s has %d deals", ErrInvalidTransition, id, n)
	}
	return missing(s.Crops.Delete(ctx, id), "listing", id)
}

// DeleteDemand refuses demands with deals still in progress.
func (s *AdminService) DeleteDemand(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	n, err := s.Demands.CountActiveDeals(ctx, id)
	if err != nil {
		return classify(err)
	}
	if n > 0 {
		return fmt.Errorf("%w: demand %s has %d active deals", ErrInvalidTransition, id, n)
	}
	return missing(s.Demands.Delete(ctx, id), "demand", id)
}

func missing(err error, what, id string) error {
	if errors.Is(err, repos.ErrConflict) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return classify(err)
}

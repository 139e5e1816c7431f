package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"farmdirect/internal/domain"
	"farmdirect/internal/repos"
	"farmdirect/internal/validate"
)

type ReviewService struct {
	Reviews *repos.ReviewRepo
	Deals   *repos.DealRepo
	Timeout time.Duration
}

func NewReviewService(reviews *repos.ReviewRepo, deals *repos.DealRepo, timeout time.Duration) *ReviewService {
	return &ReviewService{Reviews: reviews, Deals: deals, Timeout: timeout}
}

// Create lets a party of a delivered deal review the counterparty, once.
func (s *ReviewService) Create(ctx context.Context, dealID, authorID string, rating int, comment string) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		return domain.Review{}, invalid("rating must be 1-5")
	}
	comment, ok := validate.Message(comment)
	if !ok {
		return domain.Review{}, invalid("comment too long")
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	d, err := s.Deals.Get(ctx, dealID)
	if err != nil {
		return domain.Review{}, lookup(err, "deal", dealID)
	}
	if !d.IsParty(authorID) {
		return domain.Review{}, fmt.Errorf("%w: %s is not a party to deal %s", ErrNotAuthorized, authorID, d.ID)
	}
	if d.Status != domain.DealDelivered {
		return domain.Review{}, fmt.Errorf("%w: deal %s is %s", ErrInvalidTransition, d.ID, d.Status)
	}
	subject := d.SellerID
	if authorID == d.SellerID {
		subject = d.BuyerID
	}
	rv := domain.Review{ID: uuid.NewString(), DealID: d.ID, AuthorID: authorID, SubjectID: subject, Rating: rating, Comment: comment}
	if err := s.Reviews.Create(ctx, &rv); err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return domain.Review{}, invalid("deal already reviewed")
		}
		return domain.Review{}, classify(err)
	}
	return rv, nil
}

func (s *ReviewService) ForUser(ctx context.Context, userID string) ([]domain.Review, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Reviews.ListBySubject(ctx, userID)
	return out, classify(err)
}

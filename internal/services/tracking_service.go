package services

import (
	"context"

	"farmdirect/internal/domain"
)

// TrackingService projects a deal's status onto a fixed list of checkpoints.
// Nothing here is persisted; it stands in for a logistics provider.
type TrackingService struct {
	Ledger *LedgerService
}

var checkpoints = []struct {
	status domain.DealStatus
	label  string
}{
	{domain.DealCreated, "Deal created"},
	{domain.DealConfirmed, "Confirmed by both parties"},
	{domain.DealInTransit, "In transit"},
	{domain.DealDelivered, "Delivered"},
}

func (s *TrackingService) GetTracking(ctx context.Context, dealID, actorID string) (domain.Tracking, error) {
	d, err := s.Ledger.GetDeal(ctx, dealID, actorID)
	if err != nil {
		return domain.Tracking{}, err
	}
	return Track(d.ID, d.Status), nil
}

// Track builds the checkpoint list for a status. A cancelled deal shows only
// its creation and the cancellation.
func Track(dealID string, st domain.DealStatus) domain.Tracking {
	t := domain.Tracking{DealID: dealID, Status: st, Checkpoints: []domain.Checkpoint{}}
	if st == domain.DealCancelled {
		t.Checkpoints = append(t.Checkpoints,
			domain.Checkpoint{Label: checkpoints[0].label, Status: string(domain.DealCreated), Reached: true},
			domain.Checkpoint{Label: "Cancelled", Status: string(domain.DealCancelled), Reached: true},
		)
		return t
	}
	reached := true
	for _, cp := range checkpoints {
		t.Checkpoints = append(t.Checkpoints, domain.Checkpoint{Label: cp.label, Status: string(cp.status), Reached: reached})
		if cp.status == st {
			reached = false
		}
	}
	return t
}

package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"farmdirect/internal/domain"
)

// DealRepo stores deal headers; negotiation entries live in NegotiationRepo.
type DealRepo struct{ db sqlx.ExtContext }

func NewDealRepo(db *sqlx.DB) *DealRepo { return &DealRepo{db: db} }

func (r *DealRepo) WithTx(tx *sqlx.Tx) *DealRepo { return &DealRepo{db: tx} }

const dealCols = `id, crop_id, demand_id, buyer_id, seller_id, crop_name, price_per_unit, quantity, total_amount, status, created_at, updated_at`

func (r *DealRepo) Create(ctx context.Context, d *domain.Deal) error {
	d.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deals(id, crop_id, demand_id, buyer_id, seller_id, crop_name, price_per_unit, quantity, total_amount, status, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.CropID, d.DemandID, d.BuyerID, d.SellerID, d.CropName, d.PricePerUnit, d.Quantity, d.TotalAmount, d.Status, d.CreatedAt)
	return err
}

func (r *DealRepo) Get(ctx context.Context, id string) (domain.Deal, error) {
	var d domain.Deal
	err := sqlx.GetContext(ctx, r.db, &d, `SELECT `+dealCols+` FROM deals WHERE id = ?`, id)
	return d, err
}

// ListByParty returns deals where userID is buyer or seller, newest first.
func (r *DealRepo) ListByParty(ctx context.Context, userID string) ([]domain.Deal, error) {
	out := []domain.Deal{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+dealCols+` FROM deals
		WHERE buyer_id = ? OR seller_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID, userID)
	return out, err
}

// UpdateStatus is a compare-and-set on status; ErrConflict when the stored
// status is no longer from.
func (r *DealRepo) UpdateStatus(ctx context.Context, id string, from, to domain.DealStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE deals SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, to, now(), id, from)
	if err != nil {
		return err
	}
	return affected(res)
}

// UpdatePrice sets the committed unit price and total while the deal is still
// in status.
func (r *DealRepo) UpdatePrice(ctx context.Context, id string, status domain.DealStatus, price, total decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE deals SET price_per_unit = ?, total_amount = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, price, total, now(), id, status)
	if err != nil {
		return err
	}
	return affected(res)
}

package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"farmdirect/internal/domain"
)

// DemandRepo is the demand side of the inventory store.
type DemandRepo struct{ db sqlx.ExtContext }

func NewDemandRepo(db *sqlx.DB) *DemandRepo { return &DemandRepo{db: db} }

func (r *DemandRepo) WithTx(tx *sqlx.Tx) *DemandRepo { return &DemandRepo{db: tx} }

const demandCols = `id, buyer_id, crop_name, quantity_required, max_price_per_unit, needed_by, min_quality_grade, status, created_at`

func (r *DemandRepo) Create(ctx context.Context, d *domain.Demand) error {
	d.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO demands(`+demandCols+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.BuyerID, d.CropName, d.QuantityRequired, d.MaxPricePerUnit, d.NeededBy, d.MinQualityGrade, d.Status, d.CreatedAt)
	return err
}

func (r *DemandRepo) Get(ctx context.Context, id string) (domain.Demand, error) {
	var d domain.Demand
	err := sqlx.GetContext(ctx, r.db, &d, `SELECT `+demandCols+` FROM demands WHERE id = ?`, id)
	return d, err
}

func (r *DemandRepo) ListOpen(ctx context.Context) ([]domain.Demand, error) {
	out := []domain.Demand{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+demandCols+` FROM demands
		WHERE status = ?
		ORDER BY created_at, rowid
	`, domain.DemandOpen)
	return out, err
}

func (r *DemandRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Demand, error) {
	out := []domain.Demand{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+demandCols+` FROM demands
		WHERE buyer_id = ?
		ORDER BY created_at, rowid
	`, buyerID)
	return out, err
}

// UpdateStatus moves a demand from one status to another; ErrConflict when
// the stored status is no longer from.
func (r *DemandRepo) UpdateStatus(ctx context.Context, id string, from, to domain.DemandStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE demands SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return err
	}
	return affected(res)
}

// CountActiveDeals counts deals on the demand that are not yet terminal.
func (r *DemandRepo) CountActiveDeals(ctx context.Context, id string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `
		SELECT COUNT(*) FROM deals
		WHERE demand_id = ? AND status IN ('CREATED','CONFIRMED','IN_TRANSIT')
	`, id)
	return n, err
}

func (r *DemandRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM demands WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

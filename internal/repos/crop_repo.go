package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"farmdirect/internal/domain"
)

// CropRepo is the supply side of the inventory store.
type CropRepo struct{ db sqlx.ExtContext }

func NewCropRepo(db *sqlx.DB) *CropRepo { return &CropRepo{db: db} }

// WithTx returns a CropRepo bound to tx.
func (r *CropRepo) WithTx(tx *sqlx.Tx) *CropRepo { return &CropRepo{db: tx} }

const cropCols = `id, farmer_id, crop_name, quantity_available, price_per_unit, status, prior_status, version, created_at, updated_at`

func (r *CropRepo) Create(ctx context.Context, c *domain.Crop) error {
	c.CreatedAt = now()
	if c.Version == 0 {
		c.Version = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO crops(id, farmer_id, crop_name, quantity_available, price_per_unit, status, prior_status, version, created_at)
		VALUES(?, ?, ?, ?, ?, ?, '', ?, ?)
	`, c.ID, c.FarmerID, c.CropName, c.QuantityAvailable, c.PricePerUnit, c.Status, c.Version, c.CreatedAt)
	return err
}

// Get returns sql.ErrNoRows when the crop does not exist.
func (r *CropRepo) Get(ctx context.Context, id string) (domain.Crop, error) {
	var c domain.Crop
	err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+cropCols+` FROM crops WHERE id = ?`, id)
	return c, err
}

func (r *CropRepo) ListByFarmer(ctx context.Context, farmerID string) ([]domain.Crop, error) {
	out := []domain.Crop{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+cropCols+` FROM crops
		WHERE farmer_id = ?
		ORDER BY created_at, rowid
	`, farmerID)
	return out, err
}

// ListSellable returns every crop in a farming stage, oldest first.
func (r *CropRepo) ListSellable(ctx context.Context) ([]domain.Crop, error) {
	query, args, err := sqlx.In(`
		SELECT `+cropCols+` FROM crops
		WHERE status IN (?)
		ORDER BY created_at, rowid
	`, domain.SellableCropStatuses)
	if err != nil {
		return nil, err
	}
	out := []domain.Crop{}
	err = sqlx.SelectContext(ctx, r.db, &out, query, args...)
	return out, err
}

// SaveVersioned writes quantity and status of c if the stored version still
// equals c.Version, then bumps the version. Returns ErrConflict otherwise.
func (r *CropRepo) SaveVersioned(ctx context.Context, c *domain.Crop) error {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE crops
		SET quantity_available = ?, status = ?, prior_status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`, c.QuantityAvailable, c.Status, c.PriorStatus, ts, c.ID, c.Version)
	if err != nil {
		return err
	}
	if err := affected(res); err != nil {
		return err
	}
	c.Version++
	c.UpdatedAt = ts
	return nil
}

// CountDeals counts deals of any status that reference the crop.
func (r *CropRepo) CountDeals(ctx context.Context, id string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM deals WHERE crop_id = ?`, id)
	return n, err
}

func (r *CropRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM crops WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

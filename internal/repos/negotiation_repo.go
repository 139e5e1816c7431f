package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"farmdirect/internal/domain"
)

// NegotiationRepo is append-only: there is no update or delete.
type NegotiationRepo struct{ db sqlx.ExtContext }

func NewNegotiationRepo(db *sqlx.DB) *NegotiationRepo { return &NegotiationRepo{db: db} }

func (r *NegotiationRepo) WithTx(tx *sqlx.Tx) *NegotiationRepo { return &NegotiationRepo{db: tx} }

func (r *NegotiationRepo) Append(ctx context.Context, e *domain.NegotiationEntry) error {
	e.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO negotiation_entries(deal_id, sender_id, price, message, created_at)
		VALUES(?, ?, ?, ?, ?)
	`, e.DealID, e.SenderID, e.Price, e.Message, e.CreatedAt)
	if err != nil {
		return err
	}
	e.Seq, err = res.LastInsertId()
	return err
}

// ListByDeal returns entries in the order they were appended.
func (r *NegotiationRepo) ListByDeal(ctx context.Context, dealID string) ([]domain.NegotiationEntry, error) {
	out := []domain.NegotiationEntry{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT seq, deal_id, sender_id, price, message, created_at
		FROM negotiation_entries
		WHERE deal_id = ?
		ORDER BY seq
	`, dealID)
	return out, err
}

func (r *NegotiationRepo) Get(ctx context.Context, dealID string, seq int64) (domain.NegotiationEntry, error) {
	var e domain.NegotiationEntry
	err := sqlx.GetContext(ctx, r.db, &e, `
		SELECT seq, deal_id, sender_id, price, message, created_at
		FROM negotiation_entries
		WHERE deal_id = ? AND seq = ?
	`, dealID, seq)
	return e, err
}

// Latest returns the most recent entry; sql.ErrNoRows if none.
func (r *NegotiationRepo) Latest(ctx context.Context, dealID string) (domain.NegotiationEntry, error) {
	var e domain.NegotiationEntry
	err := sqlx.GetContext(ctx, r.db, &e, `
		SELECT seq, deal_id, sender_id, price, message, created_at
		FROM negotiation_entries
		WHERE deal_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, dealID)
	return e, err
}

package repos

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
)

// EventRow is one outbox record.
type EventRow struct {
	Seq         int64  `db:"seq"`
	DealID      string `db:"deal_id"`
	EventType   string `db:"event_type"`
	Payload     string `db:"payload"`
	CreatedAt   string `db:"created_at"`
	PublishedAt string `db:"published_at"`
}

// EventRepo is the deal event outbox. Rows are written in the same
// transaction as the change they describe and relayed later.
type EventRepo struct{ db sqlx.ExtContext }

func NewEventRepo(db *sqlx.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) WithTx(tx *sqlx.Tx) *EventRepo { return &EventRepo{db: tx} }

func (r *EventRepo) Append(ctx context.Context, dealID, eventType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO deal_events(deal_id, event_type, payload, created_at)
		VALUES(?, ?, ?, ?)
	`, dealID, eventType, string(b), now())
	return err
}

// Pending returns unpublished events oldest first.
func (r *EventRepo) Pending(ctx context.Context, limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []EventRow{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT seq, deal_id, event_type, payload, created_at, published_at
		FROM deal_events
		WHERE published_at = ''
		ORDER BY seq
		LIMIT ?
	`, limit)
	return out, err
}

// ListByDeal returns every event for a deal in write order.
func (r *EventRepo) ListByDeal(ctx context.Context, dealID string) ([]EventRow, error) {
	out := []EventRow{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT seq, deal_id, event_type, payload, created_at, published_at
		FROM deal_events
		WHERE deal_id = ?
		ORDER BY seq
	`, dealID)
	return out, err
}

func (r *EventRepo) MarkPublished(ctx context.Context, seqs []int64) error {
	if len(seqs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE deal_events SET published_at = ? WHERE seq IN (?)`, now(), seqs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

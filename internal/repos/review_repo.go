package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"farmdirect/internal/domain"
)

type ReviewRepo struct{ db sqlx.ExtContext }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	rv.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews(id, deal_id, author_id, subject_id, rating, comment, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(deal_id, author_id) DO NOTHING
	`, rv.ID, rv.DealID, rv.AuthorID, rv.SubjectID, rv.Rating, rv.Comment, rv.CreatedAt)
	if err != nil {
		return err
	}
	// a second review of the same deal by the same author inserts nothing
	return affected(res)
}

func (r *ReviewRepo) ListBySubject(ctx context.Context, subjectID string) ([]domain.Review, error) {
	out := []domain.Review{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT id, deal_id, author_id, subject_id, rating, comment, created_at
		FROM reviews
		WHERE subject_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, subjectID)
	return out, err
}

func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

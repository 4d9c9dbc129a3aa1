package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qazaqtalk/backend/internal/domain"
	"github.com/qazaqtalk/backend/internal/repository"
)

type exclusionRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewExclusionRepository(db *sqlx.DB, timeout time.Duration) repository.ExclusionRepository {
	return &exclusionRepository{db: db, timeout: timeout}
}

func (r *exclusionRepository) IsExcluded(ctx context.Context, userA, userB int64) (bool, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	user1, user2 := domain.NormalizePair(userA, userB)
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM past_matches WHERE user1 = $1 AND user2 = $2)`
	if err := r.db.GetContext(ctx, &exists, query, user1, user2); err != nil {
		return false, wrap("exclusions.check", err)
	}
	return exists, nil
}

func (r *exclusionRepository) Add(ctx context.Context, userA, userB int64, now time.Time) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	user1, user2 := domain.NormalizePair(userA, userB)
	query := `
		INSERT INTO past_matches (user1, user2, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (user1, user2) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, user1, user2, now)
	return wrap("exclusions.add", err)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qazaqtalk/backend/internal/domain"
	"github.com/qazaqtalk/backend/internal/repository"
)

type feedbackRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewFeedbackRepository(db *sqlx.DB, timeout time.Duration) repository.FeedbackRepository {
	return &feedbackRepository{db: db, timeout: timeout}
}

// Record runs the whole write side of a submission in one transaction:
// the feedback insert, the recipient's cached-rating refresh, and
// (when exclude is set) the exclusion-set insert. A failure at any
// point leaves nothing behind, so the submitter can simply retry.
func (r *feedbackRepository) Record(ctx context.Context, fb *domain.Feedback, exclude bool) (float64, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, wrap("feedback.record", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO feedback (id, from_user, to_user, q1, q2, q3, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		fb.ID, fb.FromUser, fb.ToUser, fb.Ease, fb.Engagement, fb.Friendliness, fb.Comment, fb.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateFeedback
		}
		return 0, wrap("feedback.record", err)
	}

	// The average sees the row inserted above.
	var rating float64
	if err := tx.GetContext(ctx, &rating,
		`SELECT AVG((q1 + q2 + q3) / 3.0) FROM feedback WHERE to_user = $1`, fb.ToUser); err != nil {
		return 0, wrap("feedback.record", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET rating = $1 WHERE id = $2`, rating, fb.ToUser); err != nil {
		return 0, wrap("feedback.record", err)
	}

	if exclude {
		user1, user2 := domain.NormalizePair(fb.FromUser, fb.ToUser)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO past_matches (user1, user2, created_at) VALUES ($1, $2, $3)
			ON CONFLICT (user1, user2) DO NOTHING`,
			user1, user2, fb.CreatedAt); err != nil {
			return 0, wrap("feedback.record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, wrap("feedback.record", err)
	}
	return rating, nil
}

func (r *feedbackRepository) Exists(ctx context.Context, fromUser, toUser int64) (bool, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM feedback WHERE from_user = $1 AND to_user = $2)`
	if err := r.db.GetContext(ctx, &exists, query, fromUser, toUser); err != nil {
		return false, wrap("feedback.exists", err)
	}
	return exists, nil
}

func (r *feedbackRepository) AverageFor(ctx context.Context, userID int64) (float64, bool, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	var avg sql.NullFloat64
	query := `SELECT AVG((q1 + q2 + q3) / 3.0) FROM feedback WHERE to_user = $1`
	if err := r.db.GetContext(ctx, &avg, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, wrap("feedback.average", err)
	}
	if !avg.Valid {
		return 0, false, nil
	}
	return avg.Float64, true, nil
}

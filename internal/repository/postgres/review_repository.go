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

type reviewJobRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewReviewJobRepository(db *sqlx.DB, timeout time.Duration) repository.ReviewJobRepository {
	return &reviewJobRepository{db: db, timeout: timeout}
}

// FireDue lists the due jobs once, then claims each by key with FOR
// UPDATE SKIP LOCKED in its own transaction, so a concurrent tick never
// re-delivers and one undeliverable job cannot hold up the rest of the
// queue. Delivery and deletion share the job's transaction: a failed
// delivery rolls back and that job alone stays queued (at-least-once).
func (r *reviewJobRepository) FireDue(ctx context.Context, now time.Time, deliver func(context.Context, domain.ReviewJob) error) (int, error) {
	jobs, err := r.listDue(ctx, now)
	if err != nil {
		return 0, err
	}

	fired := 0
	var errs []error
	for _, job := range jobs {
		ok, err := r.fireOne(ctx, job, now, deliver)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			fired++
		}
	}
	return fired, errors.Join(errs...)
}

func (r *reviewJobRepository) listDue(ctx context.Context, now time.Time) ([]domain.ReviewJob, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	var jobs []domain.ReviewJob
	err := r.db.SelectContext(ctx, &jobs, `
		SELECT user1, user2, due_at FROM review_queue
		WHERE due_at <= $1
		ORDER BY due_at
	`, now)
	if err != nil {
		return nil, wrap("reviews.list", err)
	}
	return jobs, nil
}

// fireOne reports false without error when the job was already claimed
// or fired by a concurrent tick.
func (r *reviewJobRepository) fireOne(ctx context.Context, job domain.ReviewJob, now time.Time, deliver func(context.Context, domain.ReviewJob) error) (bool, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, wrap("reviews.fire", err)
	}
	defer tx.Rollback()

	var claimed domain.ReviewJob
	err = tx.GetContext(ctx, &claimed, `
		SELECT user1, user2, due_at FROM review_queue
		WHERE user1 = $1 AND user2 = $2 AND due_at <= $3
		FOR UPDATE SKIP LOCKED
	`, job.User1, job.User2, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, wrap("reviews.fire", err)
	}

	if err := deliver(ctx, claimed); err != nil {
		return false, wrap("reviews.deliver", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM review_queue WHERE user1 = $1 AND user2 = $2`,
		claimed.User1, claimed.User2); err != nil {
		return false, wrap("reviews.fire", err)
	}
	if err := tx.Commit(); err != nil {
		return false, wrap("reviews.fire", err)
	}
	return true, nil
}

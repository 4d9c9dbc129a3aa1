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

type matchRepository struct {
	db      *sqlx.DB
	timeout time.Duration
	ttl     time.Duration
}

func NewMatchRepository(db *sqlx.DB, timeout, ttl time.Duration) repository.MatchRepository {
	return &matchRepository{db: db, timeout: timeout, ttl: ttl}
}

func (r *matchRepository) Active(ctx context.Context, userID int64, now time.Time) (*domain.Match, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	// Lazy expiry: drop this user's stale row first so eligibility
	// never waits for a sweep.
	cutoff := now.Add(-r.ttl)
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM matches WHERE user_id = $1 AND created_at <= $2`, userID, cutoff); err != nil {
		return nil, wrap("matches.expire", err)
	}

	var m domain.Match
	err := r.db.GetContext(ctx, &m, `SELECT * FROM matches WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("matches.active", err)
	}
	return &m, nil
}

func (r *matchRepository) CreatePair(ctx context.Context, userID, partnerID int64, now, reviewDue time.Time) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("matches.create", err)
	}
	defer tx.Rollback()

	// Ordered advisory locks serialize concurrent pairings touching
	// the same users without deadlocking.
	user1, user2 := domain.NormalizePair(userID, partnerID)
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock($1), pg_advisory_xact_lock($2)`, user1, user2); err != nil {
		return wrap("matches.create", err)
	}

	cutoff := now.Add(-r.ttl)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM matches WHERE user_id IN ($1, $2) AND created_at <= $3`,
		userID, partnerID, cutoff); err != nil {
		return wrap("matches.create", err)
	}

	insert := `INSERT INTO matches (user_id, partner_id, created_at) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insert, userID, partnerID, now); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyPaired
		}
		return wrap("matches.create", err)
	}
	if _, err := tx.ExecContext(ctx, insert, partnerID, userID, now); err != nil {
		if isUniqueViolation(err) {
			// The partner was claimed by a concurrent pairing after
			// candidate selection. The requester is still unmatched,
			// so this is a no-candidate outcome, not a conflict.
			return domain.ErrNoCandidate
		}
		return wrap("matches.create", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO review_queue (user1, user2, due_at) VALUES ($1, $2, $3)
		ON CONFLICT (user1, user2) DO NOTHING`,
		user1, user2, reviewDue); err != nil {
		return wrap("matches.create", err)
	}

	if err := tx.Commit(); err != nil {
		return wrap("matches.create", err)
	}
	return nil
}

func (r *matchRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM matches WHERE created_at <= $1`, now.Add(-r.ttl))
	if err != nil {
		return 0, wrap("matches.sweep", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, wrap("matches.sweep", err)
	}
	return rows, nil
}

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

type profileRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewProfileRepository(db *sqlx.DB, timeout time.Duration) repository.ProfileRepository {
	return &profileRepository{db: db, timeout: timeout}
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	var p domain.Profile
	query := `SELECT * FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, wrap("profiles.get", err)
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO users (id, name, age_bracket, level, gender, gender_preference, handle, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age_bracket = EXCLUDED.age_bracket,
			level = EXCLUDED.level,
			gender = EXCLUDED.gender,
			gender_preference = EXCLUDED.gender_preference,
			handle = EXCLUDED.handle
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.AgeBracket, p.Level, p.Gender, p.Preference, p.Handle, p.Rating)
	return wrap("profiles.upsert", err)
}

// ListCandidates uses indexed anti-joins against the match ledger and
// the exclusion set instead of a NOT IN list.
func (r *profileRepository) ListCandidates(ctx context.Context, requesterID int64, activeCutoff time.Time) ([]*domain.Profile, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	var profiles []*domain.Profile
	query := `
		SELECT u.* FROM users u
		WHERE u.id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM matches m
			WHERE m.user_id = u.id AND m.created_at > $2
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM past_matches p
			WHERE (p.user1 = $1 AND p.user2 = u.id)
			   OR (p.user1 = u.id AND p.user2 = $1)
		  )
		ORDER BY u.id
	`
	err := r.db.SelectContext(ctx, &profiles, query, requesterID, activeCutoff)
	if err != nil {
		return nil, wrap("profiles.candidates", err)
	}
	return profiles, nil
}

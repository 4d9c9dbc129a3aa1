package repository

import (
	"context"
	"time"

	"github.com/qazaqtalk/backend/internal/domain"
)

type ProfileRepository interface {
	// GetByID returns domain.ErrProfileNotFound for unknown users.
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	// Upsert inserts or refreshes a profile. Re-registration keeps the
	// user's accumulated rating.
	Upsert(ctx context.Context, p *domain.Profile) error
	// ListCandidates returns every user other than the requester who
	// has no match newer than activeCutoff and is not excluded against
	// the requester, in stable id order.
	ListCandidates(ctx context.Context, requesterID int64, activeCutoff time.Time) ([]*domain.Profile, error)
}

package repository

import (
	"context"
	"time"

	"github.com/qazaqtalk/backend/internal/domain"
)

type MatchRepository interface {
	// Active returns the user's current match, lazily removing it first
	// if its window has elapsed. Returns (nil, nil) when the user is
	// unmatched.
	Active(ctx context.Context, userID int64, now time.Time) (*domain.Match, error)
	// CreatePair atomically writes both mirrored ledger rows and
	// enqueues the pair's review job. Returns domain.ErrAlreadyPaired
	// if the requester still holds an active match, or
	// domain.ErrNoCandidate if the partner was claimed by a concurrent
	// pairing (the requester stays unmatched and may retry).
	CreatePair(ctx context.Context, userID, partnerID int64, now, reviewDue time.Time) error
	// ExpireStale removes every entry whose window has elapsed.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type ExclusionRepository interface {
	// IsExcluded is order-independent.
	IsExcluded(ctx context.Context, userA, userB int64) (bool, error)
	// Add records a permanently blocked pair. Adding an existing pair
	// is a no-op.
	Add(ctx context.Context, userA, userB int64, now time.Time) error
}

type ReviewJobRepository interface {
	// FireDue fires every job with dueAt <= now. Each job is claimed,
	// delivered and deleted in isolation, invisible to concurrent
	// ticks; a failed delivery leaves that job alone queued for the
	// next tick and never blocks the remaining due jobs. Delivery
	// errors are joined into the returned error alongside the count of
	// jobs fired.
	FireDue(ctx context.Context, now time.Time, deliver func(context.Context, domain.ReviewJob) error) (int, error)
}

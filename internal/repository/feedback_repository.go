package repository

import (
	"context"

	"github.com/qazaqtalk/backend/internal/domain"
)

type FeedbackRepository interface {
	// Record persists the feedback and, atomically with it, refreshes
	// the recipient's cached rating and (when exclude is set) adds the
	// pair to the exclusion set. Returns the recipient's new rating,
	// or domain.ErrDuplicateFeedback when the (from, to) pair already
	// has a record. A failed Record leaves no partial state.
	Record(ctx context.Context, fb *domain.Feedback, exclude bool) (float64, error)
	// Exists reports whether the rater already reviewed this partner.
	Exists(ctx context.Context, fromUser, toUser int64) (bool, error)
	// AverageFor returns the mean of all scores received by the user
	// and whether any records exist.
	AverageFor(ctx context.Context, userID int64) (float64, bool, error)
}

// SessionRepository stores in-progress registration sessions under a
// TTL, keyed by user id.
type SessionRepository interface {
	Get(ctx context.Context, userID int64) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, userID int64) error
}

// PendingReviewRepository tracks which users owe feedback and for whom,
// set when a review prompt is delivered and cleared on submission.
type PendingReviewRepository interface {
	Set(ctx context.Context, userID, partnerID int64) error
	// Partner returns domain.ErrNoPendingReview when nothing is pending.
	Partner(ctx context.Context, userID int64) (int64, error)
	Clear(ctx context.Context, userID int64) error
}

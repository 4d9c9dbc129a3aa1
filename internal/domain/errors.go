package domain

import "errors"

// Validation errors: surfaced to the user with a corrective message,
// nothing is mutated.
var (
	ErrMalformedFeedback = errors.New("feedback must be three scores, e.g. 5,4,5")
	ErrScoreOutOfRange   = errors.New("scores must be between 1 and 5")
	ErrCommentRequired   = errors.New("a comment is required with a low score")
	ErrInvalidChoice     = errors.New("invalid choice")
)

// Conflict errors: idempotent, safe to retry later.
var (
	ErrAlreadyPaired     = errors.New("user already has an active match")
	ErrDuplicateFeedback = errors.New("feedback already recorded for this partner")
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoCandidate     = errors.New("no compatible candidate")
	ErrNoPendingReview = errors.New("no review is pending for this user")
	ErrSessionNotFound = errors.New("registration session not found")
)

// ErrStorageUnavailable marks a transient store failure: the operation
// was aborted and will be retried on the next natural trigger.
var ErrStorageUnavailable = errors.New("storage temporarily unavailable")

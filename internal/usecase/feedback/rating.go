package feedback

import (
	"context"

	"github.com/qazaqtalk/backend/internal/domain"
	"github.com/qazaqtalk/backend/internal/repository"
)

// Aggregator derives a user's rolling rating from received feedback.
// The cached profile column is maintained by the store at submission
// time; this is the read side for rating lookups.
type Aggregator struct {
	feedback repository.FeedbackRepository
}

func NewAggregator(feedback repository.FeedbackRepository) *Aggregator {
	return &Aggregator{feedback: feedback}
}

// RatingOf returns the mean of all scores the user has received, or the
// neutral default when no feedback exists.
func (a *Aggregator) RatingOf(ctx context.Context, userID int64) (float64, error) {
	avg, ok, err := a.feedback.AverageFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return domain.NeutralRating, nil
	}
	return avg, nil
}

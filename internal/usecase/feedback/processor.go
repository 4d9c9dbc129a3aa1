package feedback

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/qazaqtalk/backend/internal/domain"
	"github.com/qazaqtalk/backend/internal/repository"
)

// Processor validates and records feedback replies, feeding accepted
// ratings back into matching.
type Processor struct {
	feedback repository.FeedbackRepository
	pending  repository.PendingReviewRepository
	// poorScoreMax: any score at or below it permanently excludes the
	// pair. Earlier revisions of this system disagreed (2 vs 3), so it
	// is configuration, not code.
	poorScoreMax int
	log          *slog.Logger
	now          func() time.Time
}

func NewProcessor(
	feedback repository.FeedbackRepository,
	pending repository.PendingReviewRepository,
	poorScoreMax int,
	log *slog.Logger,
) *Processor {
	return &Processor{
		feedback:     feedback,
		pending:      pending,
		poorScoreMax: poorScoreMax,
		log:          log,
		now:          time.Now,
	}
}

// Submit records fromUser's reply to a pending review prompt. The
// feedback insert, rating refresh and exclusion all commit together in
// the store, so a transient failure leaves nothing behind and the user
// can retry the same reply.
func (p *Processor) Submit(ctx context.Context, fromUser int64, rawText string) error {
	partnerID, err := p.pending.Partner(ctx, fromUser)
	if err != nil {
		return err
	}

	// Checked up front so a repeated prompt gets a clear answer even
	// when the reply itself is malformed; the unique index on
	// (from_user, to_user) still backstops the race.
	exists, err := p.feedback.Exists(ctx, fromUser, partnerID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateFeedback
	}

	sub, err := ParseSubmission(rawText)
	if err != nil {
		return err
	}

	fb := &domain.Feedback{
		ID:           uuid.NewString(),
		FromUser:     fromUser,
		ToUser:       partnerID,
		Ease:         sub.Scores[0],
		Engagement:   sub.Scores[1],
		Friendliness: sub.Scores[2],
		Comment:      sub.Comment,
		CreatedAt:    p.now(),
	}
	exclude := sub.MinScore() <= p.poorScoreMax

	rating, err := p.feedback.Record(ctx, fb, exclude)
	if err != nil {
		return err
	}
	p.log.Info("feedback recorded",
		"from_user", fromUser, "to_user", partnerID, "rating", rating)
	if exclude {
		p.log.Info("pair excluded after poor feedback",
			"user1", fromUser, "user2", partnerID, "min_score", sub.MinScore())
	}

	return p.pending.Clear(ctx, fromUser)
}

package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/qazaqtalk/backend/internal/domain"
	"github.com/qazaqtalk/backend/internal/notify"
	"github.com/qazaqtalk/backend/internal/repository"
)

const reviewPrompt = "Rate your partner from 1 to 5:\n" +
	"1) How easy was it to talk?\n" +
	"2) How engaged were they?\n" +
	"3) How friendly were they?\n\n" +
	"Reply in the format: 5,4,5 optional comment"

// Scheduler periodically sweeps the match ledger and fires due review
// jobs, prompting both members of a match for feedback. Delivery is
// at-least-once and per job: one job whose prompts could not be sent
// stays queued for the next tick without holding up the rest.
type Scheduler struct {
	jobs     repository.ReviewJobRepository
	matches  repository.MatchRepository
	pending  repository.PendingReviewRepository
	notifier notify.Notifier
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewScheduler(
	jobs repository.ReviewJobRepository,
	matches repository.MatchRepository,
	pending repository.PendingReviewRepository,
	notifier notify.Notifier,
	interval time.Duration,
	log *slog.Logger,
) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		matches:  matches,
		pending:  pending,
		notifier: notifier,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run ticks until ctx is cancelled. Errors are logged and the tick's
// remaining work is retried on the next interval.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("review scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("review scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick sweeps expired matches, then fires every due job once.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()

	removed, err := s.matches.ExpireStale(ctx, now)
	if err != nil {
		s.log.Error("match sweep failed", "err", err)
	} else if removed > 0 {
		s.log.Info("expired matches removed", "count", removed)
	}

	fired, err := s.jobs.FireDue(ctx, now, s.deliver)
	if err != nil {
		s.log.Error("review delivery failed", "fired", fired, "err", err)
	}
	if fired > 0 {
		s.log.Info("review prompts sent", "jobs", fired)
	}
}

// deliver prompts both parties and marks their reviews pending. Any
// failure aborts this job so it fires again next tick; a repeated
// prompt is harmless because feedback insertion is deduplicated.
func (s *Scheduler) deliver(ctx context.Context, job domain.ReviewJob) error {
	if err := s.promptOne(ctx, job.User1, job.User2); err != nil {
		return err
	}
	return s.promptOne(ctx, job.User2, job.User1)
}

func (s *Scheduler) promptOne(ctx context.Context, userID, partnerID int64) error {
	if err := s.notifier.Notify(ctx, userID, reviewPrompt); err != nil {
		return err
	}
	return s.pending.Set(ctx, userID, partnerID)
}

package matching

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/qazaqtalk/backend/internal/domain"
	"github.com/qazaqtalk/backend/internal/notify"
	"github.com/qazaqtalk/backend/internal/repository"
)

// Policy holds the matching knobs. Every threshold that diverged across
// earlier revisions of this system is a single constant here.
type Policy struct {
	// ScoreThreshold is the minimum compatibility score (age overlap
	// and level adjacency contribute one point each).
	ScoreThreshold int
	// RatingFloor excludes candidates rated below it, unless the
	// requester is unrated.
	RatingFloor float64
	// MatchTTL is the active-match window.
	MatchTTL time.Duration
	// ReviewDelay is how long after pairing the review prompt fires.
	ReviewDelay time.Duration
}

// Engine pairs a requesting user with the first eligible candidate.
// Selection is greedy, not a global optimum.
type Engine struct {
	profiles   repository.ProfileRepository
	matches    repository.MatchRepository
	exclusions repository.ExclusionRepository
	notifier   notify.Notifier
	policy     Policy
	log        *slog.Logger
	now        func() time.Time
}

func NewEngine(
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	exclusions repository.ExclusionRepository,
	notifier notify.Notifier,
	policy Policy,
	log *slog.Logger,
) *Engine {
	return &Engine{
		profiles:   profiles,
		matches:    matches,
		exclusions: exclusions,
		notifier:   notifier,
		policy:     policy,
		log:        log,
		now:        time.Now,
	}
}

// FindMatch selects a compatible partner for requesterID and commits
// the pairing. Returns the partner profile, domain.ErrAlreadyPaired if
// the requester holds an active match, or domain.ErrNoCandidate when
// nobody qualifies. A NoCandidate outcome mutates nothing, so calling
// again immediately is safe.
func (e *Engine) FindMatch(ctx context.Context, requesterID int64) (*domain.Profile, error) {
	now := e.now()

	active, err := e.matches.Active(ctx, requesterID, now)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, domain.ErrAlreadyPaired
	}

	requester, err := e.profiles.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	candidates, err := e.profiles.ListCandidates(ctx, requesterID, now.Add(-e.policy.MatchTTL))
	if err != nil {
		return nil, err
	}

	partner := e.pick(requester, candidates)
	if partner == nil {
		return nil, domain.ErrNoCandidate
	}

	// The candidate list may be stale by commit time: a concurrent
	// feedback submission could have excluded this pair. Recheck.
	excluded, err := e.exclusions.IsExcluded(ctx, requesterID, partner.ID)
	if err != nil {
		return nil, err
	}
	if excluded {
		return nil, domain.ErrNoCandidate
	}

	if err := e.matches.CreatePair(ctx, requesterID, partner.ID, now, now.Add(e.policy.ReviewDelay)); err != nil {
		return nil, err
	}

	e.log.Info("match created",
		"user_id", requesterID, "partner_id", partner.ID,
		"review_due", now.Add(e.policy.ReviewDelay))

	// Best-effort notifications: a failed send is logged, never
	// retried, and does not undo the match.
	e.sendMatchCard(ctx, requesterID, partner)
	e.sendMatchCard(ctx, partner.ID, requester)

	return partner, nil
}

// pick applies the hard filters and scoring, then prefers the
// qualifying candidate whose rating sits closest to the requester's.
// Ties keep the earlier candidate (stable input order).
func (e *Engine) pick(requester *domain.Profile, candidates []*domain.Profile) *domain.Profile {
	var (
		best     *domain.Profile
		bestDist float64
	)
	requesterRating := requester.RatingOrDefault()

	for _, cand := range candidates {
		if !requester.Preference.Accepts(cand.Gender) || !cand.Preference.Accepts(requester.Gender) {
			continue
		}
		if requester.Rated() && cand.RatingOrDefault() < e.policy.RatingFloor {
			continue
		}
		if e.score(requester, cand) < e.policy.ScoreThreshold {
			continue
		}
		dist := math.Abs(cand.RatingOrDefault() - requesterRating)
		if best == nil || dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	return best
}

func (e *Engine) score(a, b *domain.Profile) int {
	score := 0
	if a.AgeBracket.Overlaps(b.AgeBracket) {
		score++
	}
	if a.Level.Adjacent(b.Level) {
		score++
	}
	return score
}

func (e *Engine) sendMatchCard(ctx context.Context, userID int64, partner *domain.Profile) {
	text := fmt.Sprintf(
		"🎉 You matched with @%s!\n👤 Name: %s\n📅 Age: %s\n🚻 Gender: %s\n🗣 Level: %s",
		partner.Handle, partner.Name, partner.AgeBracket, partner.Gender, partner.Level)
	if err := e.notifier.Notify(ctx, userID, text); err != nil {
		e.log.Error("match notification failed", "user_id", userID, "err", err)
	}
}

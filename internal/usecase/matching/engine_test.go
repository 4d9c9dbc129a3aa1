package matching

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazaqtalk/backend/internal/domain"
)

// memStore is an in-memory stand-in for the postgres repositories,
// keeping the same lazy-expiry, pair-normalization and conflict
// semantics. onCreatePair, when set, runs at the top of CreatePair to
// simulate a concurrent pairing landing between candidate selection
// and commit.
type memStore struct {
	ttl          time.Duration
	order        []int64
	profiles     map[int64]*domain.Profile
	matches      map[int64]*domain.Match
	excluded     map[[2]int64]bool
	reviews      []domain.ReviewJob
	onCreatePair func()
}

func newMemStore(ttl time.Duration) *memStore {
	return &memStore{
		ttl:      ttl,
		profiles: make(map[int64]*domain.Profile),
		matches:  make(map[int64]*domain.Match),
		excluded: make(map[[2]int64]bool),
	}
}

func (s *memStore) add(p *domain.Profile) {
	s.profiles[p.ID] = p
	s.order = append(s.order, p.ID)
}

func (s *memStore) GetByID(_ context.Context, id int64) (*domain.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func (s *memStore) Upsert(_ context.Context, p *domain.Profile) error {
	if _, ok := s.profiles[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.profiles[p.ID] = p
	return nil
}

func (s *memStore) ListCandidates(_ context.Context, requesterID int64, activeCutoff time.Time) ([]*domain.Profile, error) {
	var out []*domain.Profile
	for _, id := range s.order {
		if id == requesterID {
			continue
		}
		if m, ok := s.matches[id]; ok && m.CreatedAt.After(activeCutoff) {
			continue
		}
		if s.excluded[pairKey(requesterID, id)] {
			continue
		}
		out = append(out, s.profiles[id])
	}
	return out, nil
}

func (s *memStore) Active(_ context.Context, userID int64, now time.Time) (*domain.Match, error) {
	m, ok := s.matches[userID]
	if !ok {
		return nil, nil
	}
	if m.Expired(now, s.ttl) {
		delete(s.matches, userID)
		return nil, nil
	}
	return m, nil
}

func (s *memStore) CreatePair(_ context.Context, userID, partnerID int64, now, reviewDue time.Time) error {
	if s.onCreatePair != nil {
		s.onCreatePair()
	}
	if m, ok := s.matches[userID]; ok {
		if !m.Expired(now, s.ttl) {
			return domain.ErrAlreadyPaired
		}
		delete(s.matches, userID)
	}
	if m, ok := s.matches[partnerID]; ok {
		if !m.Expired(now, s.ttl) {
			// Partner claimed concurrently; the requester stays
			// unmatched.
			return domain.ErrNoCandidate
		}
		delete(s.matches, partnerID)
	}
	s.matches[userID] = &domain.Match{UserID: userID, PartnerID: partnerID, CreatedAt: now}
	s.matches[partnerID] = &domain.Match{UserID: partnerID, PartnerID: userID, CreatedAt: now}
	user1, user2 := domain.NormalizePair(userID, partnerID)
	s.reviews = append(s.reviews, domain.ReviewJob{User1: user1, User2: user2, DueAt: reviewDue})
	return nil
}

func (s *memStore) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	for id, m := range s.matches {
		if m.Expired(now, s.ttl) {
			delete(s.matches, id)
			removed++
		}
	}
	return removed, nil
}

func (s *memStore) IsExcluded(_ context.Context, a, b int64) (bool, error) {
	return s.excluded[pairKey(a, b)], nil
}

func (s *memStore) Add(_ context.Context, a, b int64, _ time.Time) error {
	s.excluded[pairKey(a, b)] = true
	return nil
}

func pairKey(a, b int64) [2]int64 {
	u1, u2 := domain.NormalizePair(a, b)
	return [2]int64{u1, u2}
}

type memNotifier struct {
	sent map[int64][]string
}

func newMemNotifier() *memNotifier {
	return &memNotifier{sent: make(map[int64][]string)}
}

func (n *memNotifier) Notify(_ context.Context, userID int64, text string) error {
	n.sent[userID] = append(n.sent[userID], text)
	return nil
}

func testPolicy() Policy {
	return Policy{
		ScoreThreshold: 2,
		RatingFloor:    2.0,
		MatchTTL:       48 * time.Hour,
		ReviewDelay:    48 * time.Hour,
	}
}

func newTestEngine(store *memStore, at time.Time) (*Engine, *memNotifier) {
	notifier := newMemNotifier()
	e := NewEngine(store, store, store, notifier, testPolicy(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.now = func() time.Time { return at }
	return e, notifier
}

func profileM(id int64, bracket domain.AgeBracket, level domain.Level) *domain.Profile {
	return &domain.Profile{
		ID: id, Name: "User", AgeBracket: bracket, Level: level,
		Gender: domain.GenderMale, Preference: domain.PreferenceAny,
		Handle: "user",
	}
}

func TestFindMatchPairsCompatibleUsers(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)

	a := &domain.Profile{
		ID: 1, Name: "A", AgeBracket: "21-25", Level: domain.LevelIntermediate,
		Gender: domain.GenderMale, Preference: domain.PreferenceAny, Handle: "a",
	}
	b := &domain.Profile{
		ID: 2, Name: "B", AgeBracket: "21-25", Level: domain.LevelBeginner,
		Gender: domain.GenderFemale, Preference: domain.PreferenceMale, Handle: "b",
	}
	store.add(a)
	store.add(b)

	engine, notifier := newTestEngine(store, now)

	partner, err := engine.FindMatch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), partner.ID)

	// Two mirrored ledger rows
	require.Contains(t, store.matches, int64(1))
	require.Contains(t, store.matches, int64(2))
	assert.Equal(t, int64(2), store.matches[1].PartnerID)
	assert.Equal(t, int64(1), store.matches[2].PartnerID)

	// One review job, due 48h out
	require.Len(t, store.reviews, 1)
	assert.Equal(t, now.Add(48*time.Hour), store.reviews[0].DueAt)

	// Both parties notified
	assert.Len(t, notifier.sent[1], 1)
	assert.Len(t, notifier.sent[2], 1)
	assert.Contains(t, notifier.sent[1][0], "@b")
}

func TestFindMatchAlreadyPairedUntilExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)
	store.add(profileM(1, "21-25", domain.LevelIntermediate))
	store.add(profileM(2, "21-25", domain.LevelIntermediate))
	store.add(profileM(3, "21-25", domain.LevelIntermediate))

	engine, _ := newTestEngine(store, now)
	_, err := engine.FindMatch(context.Background(), 1)
	require.NoError(t, err)

	_, err = engine.FindMatch(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaired)

	// After the 48h window the user behaves as unmatched.
	later, _ := newTestEngine(store, now.Add(48*time.Hour))
	partner, err := later.FindMatch(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, partner)
}

func TestFindMatchCandidateLostRace(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)
	store.add(profileM(1, "21-25", domain.LevelIntermediate))
	store.add(profileM(2, "21-25", domain.LevelIntermediate))
	store.add(profileM(3, "21-25", domain.LevelIntermediate))

	// Candidate 2 gets paired with 3 between selection and commit.
	store.onCreatePair = func() {
		store.onCreatePair = nil
		store.matches[2] = &domain.Match{UserID: 2, PartnerID: 3, CreatedAt: now}
		store.matches[3] = &domain.Match{UserID: 3, PartnerID: 2, CreatedAt: now}
	}

	engine, _ := newTestEngine(store, now)
	_, err := engine.FindMatch(context.Background(), 1)

	// Losing the race is a no-candidate outcome for the requester (not
	// a conflict), and leaves the requester unmatched for a retry.
	assert.ErrorIs(t, err, domain.ErrNoCandidate)
	assert.NotContains(t, store.matches, int64(1))
}

func TestFindMatchExclusionIsPermanentAndSymmetric(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)
	store.add(profileM(1, "21-25", domain.LevelIntermediate))
	store.add(profileM(2, "21-25", domain.LevelIntermediate))
	require.NoError(t, store.Add(context.Background(), 2, 1, now))

	engine, _ := newTestEngine(store, now)
	_, err := engine.FindMatch(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoCandidate)
	_, err = engine.FindMatch(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrNoCandidate)

	// A high rating does not lift the exclusion.
	high := 5.0
	store.profiles[2].Rating = &high
	_, err = engine.FindMatch(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoCandidate)
}

func TestFindMatchGenderPreferenceIsSymmetric(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)

	// Requester accepts anyone, but the candidate wants women only.
	a := profileM(1, "21-25", domain.LevelIntermediate)
	b := profileM(2, "21-25", domain.LevelIntermediate)
	b.Preference = domain.PreferenceFemale
	store.add(a)
	store.add(b)

	engine, _ := newTestEngine(store, now)
	_, err := engine.FindMatch(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoCandidate)
}

func TestFindMatchScoreThreshold(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)
	store.add(profileM(1, "10-13", domain.LevelBeginner))
	// Age brackets don't overlap: score 1 of 2.
	store.add(profileM(2, "35+", domain.LevelBeginner))

	engine, _ := newTestEngine(store, now)
	_, err := engine.FindMatch(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoCandidate)
}

func TestFindMatchRatingFloor(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)

	requester := profileM(1, "21-25", domain.LevelIntermediate)
	rated := 3.5
	requester.Rating = &rated
	store.add(requester)

	lowRated := profileM(2, "21-25", domain.LevelIntermediate)
	low := 1.5
	lowRated.Rating = &low
	store.add(lowRated)

	engine, _ := newTestEngine(store, now)
	_, err := engine.FindMatch(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoCandidate)

	// An unrated requester is matched regardless of the floor.
	store2 := newMemStore(48 * time.Hour)
	store2.add(profileM(1, "21-25", domain.LevelIntermediate))
	lowRated2 := profileM(2, "21-25", domain.LevelIntermediate)
	low2 := 1.5
	lowRated2.Rating = &low2
	store2.add(lowRated2)

	engine2, _ := newTestEngine(store2, now)
	partner, err := engine2.FindMatch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), partner.ID)
}

func TestFindMatchPrefersClosestRating(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)

	requester := profileM(1, "21-25", domain.LevelIntermediate)
	r := 4.0
	requester.Rating = &r
	store.add(requester)

	far := profileM(2, "21-25", domain.LevelIntermediate)
	farRating := 2.5
	far.Rating = &farRating
	store.add(far)

	near := profileM(3, "21-25", domain.LevelIntermediate)
	nearRating := 3.8
	near.Rating = &nearRating
	store.add(near)

	engine, _ := newTestEngine(store, now)
	partner, err := engine.FindMatch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), partner.ID)
}

func TestFindMatchTieKeepsInputOrder(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)
	store.add(profileM(1, "21-25", domain.LevelIntermediate))
	store.add(profileM(2, "21-25", domain.LevelIntermediate))
	store.add(profileM(3, "21-25", domain.LevelIntermediate))

	engine, _ := newTestEngine(store, now)
	partner, err := engine.FindMatch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), partner.ID)
}

func TestFindMatchNoCandidateMutatesNothing(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore(48 * time.Hour)
	store.add(profileM(1, "21-25", domain.LevelIntermediate))

	engine, notifier := newTestEngine(store, now)
	for i := 0; i < 2; i++ {
		_, err := engine.FindMatch(context.Background(), 1)
		assert.ErrorIs(t, err, domain.ErrNoCandidate)
	}
	assert.Empty(t, store.matches)
	assert.Empty(t, store.reviews)
	assert.Empty(t, notifier.sent)
}

func TestFindMatchUnknownRequester(t *testing.T) {
	store := newMemStore(48 * time.Hour)
	engine, _ := newTestEngine(store, time.Now())
	_, err := engine.FindMatch(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

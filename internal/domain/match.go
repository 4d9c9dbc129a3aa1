package domain

import "time"

// Match is one direction of an active pairing. The ledger stores two
// mirrored rows per pair, one per direction, with user_id unique while
// the match is active.
type Match struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	PartnerID int64     `json:"partner_id" db:"partner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the match window has elapsed.
func (m *Match) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(m.CreatedAt.Add(ttl))
}

// ReviewJob is a deferred prompt for both members of a match, fired
// once when due and deleted on successful delivery.
type ReviewJob struct {
	User1 int64     `json:"user1" db:"user1"`
	User2 int64     `json:"user2" db:"user2"`
	DueAt time.Time `json:"due_at" db:"due_at"`
}

// NormalizePair orders a pair so that the smaller id comes first.
// Exclusion pairs and review jobs are stored in this canonical order.
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

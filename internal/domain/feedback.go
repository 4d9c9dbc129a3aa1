package domain

import "time"

// Feedback is one user's rating of an encounter with a partner: three
// 1..5 scores (ease, engagement, friendliness) and an optional comment.
// At most one record exists per (FromUser, ToUser) pair.
type Feedback struct {
	ID           string    `json:"id" db:"id"`
	FromUser     int64     `json:"from_user" db:"from_user"`
	ToUser       int64     `json:"to_user" db:"to_user"`
	Ease         int       `json:"q1" db:"q1"`
	Engagement   int       `json:"q2" db:"q2"`
	Friendliness int       `json:"q3" db:"q3"`
	Comment      string    `json:"comment" db:"comment"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Scores returns the three question scores in order.
func (f *Feedback) Scores() [3]int {
	return [3]int{f.Ease, f.Engagement, f.Friendliness}
}

// MinScore returns the lowest of the three scores.
func (f *Feedback) MinScore() int {
	m := f.Ease
	if f.Engagement < m {
		m = f.Engagement
	}
	if f.Friendliness < m {
		m = f.Friendliness
	}
	return m
}

package feedback

import (
	"strconv"
	"strings"

	"github.com/qazaqtalk/backend/internal/domain"
)

const (
	scoreMin = 1
	scoreMax = 5
	// commentRequiredBelow: any score at or under this needs a comment.
	commentRequiredBelow = 2
)

// Submission is a parsed feedback reply.
type Submission struct {
	Scores  [3]int
	Comment string
}

// ParseSubmission parses the "s1,s2,s3 optional comment" reply format:
// exactly three comma-separated integers, everything after the first
// space is the comment.
func ParseSubmission(raw string) (*Submission, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, domain.ErrMalformedFeedback
	}

	head, comment, _ := strings.Cut(text, " ")
	comment = strings.TrimSpace(comment)

	parts := strings.Split(head, ",")
	if len(parts) != 3 {
		return nil, domain.ErrMalformedFeedback
	}

	var sub Submission
	for i, part := range parts {
		score, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, domain.ErrMalformedFeedback
		}
		if score < scoreMin || score > scoreMax {
			return nil, domain.ErrScoreOutOfRange
		}
		sub.Scores[i] = score
	}

	if sub.lowScore() && comment == "" {
		return nil, domain.ErrCommentRequired
	}
	sub.Comment = comment
	return &sub, nil
}

func (s *Submission) lowScore() bool {
	for _, score := range s.Scores {
		if score <= commentRequiredBelow {
			return true
		}
	}
	return false
}

// MinScore returns the lowest submitted score.
func (s *Submission) MinScore() int {
	m := s.Scores[0]
	for _, score := range s.Scores[1:] {
		if score < m {
			m = score
		}
	}
	return m
}

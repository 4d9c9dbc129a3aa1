package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// AgeBracket is one of the fixed age ranges offered at registration,
// either closed ("21-25") or open-ended ("35+").
type AgeBracket string

// AgeBrackets is the ordered set of valid brackets.
var AgeBrackets = []AgeBracket{"10-13", "14-16", "17-20", "21-25", "30-35", "35+"}

const openBracketMax = 99

// ParseAgeBracket validates s against the fixed bracket set.
func ParseAgeBracket(s string) (AgeBracket, error) {
	for _, b := range AgeBrackets {
		if string(b) == strings.TrimSpace(s) {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: unknown age bracket %q", ErrInvalidChoice, s)
}

// Bounds returns the inclusive (min, max) range of the bracket.
// Open-ended brackets are capped at 99.
func (b AgeBracket) Bounds() (int, int, error) {
	s := string(b)
	if strings.HasSuffix(s, "+") {
		min, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
		if err != nil {
			return 0, 0, fmt.Errorf("bad age bracket %q: %w", s, err)
		}
		return min, openBracketMax, nil
	}
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("bad age bracket %q", s)
	}
	min, err := strconv.Atoi(lo)
	if err != nil {
		return 0, 0, fmt.Errorf("bad age bracket %q: %w", s, err)
	}
	max, err := strconv.Atoi(hi)
	if err != nil {
		return 0, 0, fmt.Errorf("bad age bracket %q: %w", s, err)
	}
	return min, max, nil
}

// Overlaps reports whether the two brackets share at least one age.
func (b AgeBracket) Overlaps(other AgeBracket) bool {
	minA, maxA, err := b.Bounds()
	if err != nil {
		return false
	}
	minB, maxB, err := other.Bounds()
	if err != nil {
		return false
	}
	return max(minA, minB) <= min(maxA, maxB)
}

// Level is a language proficiency level on a fixed ordinal scale.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelNative       Level = "native"
)

var levelOrdinals = map[Level]int{
	LevelBeginner:     0,
	LevelIntermediate: 1,
	LevelAdvanced:     2,
	LevelNative:       3,
}

// Levels is the ordered set of valid levels.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelNative}

func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelOrdinals[l]; !ok {
		return "", fmt.Errorf("%w: unknown level %q", ErrInvalidChoice, s)
	}
	return l, nil
}

// Adjacent reports whether the two levels differ by at most one step.
func (l Level) Adjacent(other Level) bool {
	a, okA := levelOrdinals[l]
	b, okB := levelOrdinals[other]
	if !okA || !okB {
		return false
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 1
}

// Gender of a registered user.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	}
	return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidChoice, s)
}

// Preference is a partner-gender preference; PreferenceAny is the wildcard.
type Preference string

const (
	PreferenceMale   Preference = "male"
	PreferenceFemale Preference = "female"
	PreferenceAny    Preference = "any"
)

func ParsePreference(s string) (Preference, error) {
	switch Preference(strings.ToLower(strings.TrimSpace(s))) {
	case PreferenceMale:
		return PreferenceMale, nil
	case PreferenceFemale:
		return PreferenceFemale, nil
	case PreferenceAny:
		return PreferenceAny, nil
	}
	return "", fmt.Errorf("%w: unknown preference %q", ErrInvalidChoice, s)
}

// Accepts reports whether the preference admits a partner of gender g.
func (p Preference) Accepts(g Gender) bool {
	return p == PreferenceAny || string(p) == string(g)
}

// NeutralRating is the rating assumed for users with no feedback history.
const NeutralRating = 3.0

// Profile is a registered user profile. Immutable after registration
// except for the cached rating projection.
type Profile struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	AgeBracket  AgeBracket `json:"age_bracket" db:"age_bracket"`
	Level       Level      `json:"level" db:"level"`
	Gender      Gender     `json:"gender" db:"gender"`
	Preference  Preference `json:"gender_preference" db:"gender_preference"`
	Handle      string     `json:"handle" db:"handle"`
	Rating      *float64   `json:"rating" db:"rating"`
}

// RatingOrDefault returns the cached rating, or the neutral default
// when the user has never received feedback.
func (p *Profile) RatingOrDefault() float64 {
	if p.Rating == nil {
		return NeutralRating
	}
	return *p.Rating
}

// Rated reports whether the user has any feedback history.
func (p *Profile) Rated() bool {
	return p.Rating != nil
}

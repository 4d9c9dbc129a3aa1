package domain

// SessionState is a step in the registration dialogue.
type SessionState string

const (
	StateAwaitingUsername   SessionState = "awaiting_username"
	StateAwaitingName       SessionState = "awaiting_name"
	StateAwaitingAge        SessionState = "awaiting_age"
	StateAwaitingLevel      SessionState = "awaiting_level"
	StateAwaitingGender     SessionState = "awaiting_gender"
	StateAwaitingPreference SessionState = "awaiting_preference"
	StateComplete           SessionState = "complete"
)

// Session holds the partial profile collected during registration.
// Sessions live in the session store under a TTL and are discarded on
// completion or expiry.
type Session struct {
	UserID     int64        `json:"user_id"`
	State      SessionState `json:"state"`
	Handle     string       `json:"handle,omitempty"`
	Name       string       `json:"name,omitempty"`
	AgeBracket AgeBracket   `json:"age_bracket,omitempty"`
	Level      Level        `json:"level,omitempty"`
	Gender     Gender       `json:"gender,omitempty"`
	Preference Preference   `json:"gender_preference,omitempty"`
}

// Profile assembles the completed profile. Only valid once State is
// StateComplete.
func (s *Session) Profile() *Profile {
	return &Profile{
		ID:         s.UserID,
		Name:       s.Name,
		AgeBracket: s.AgeBracket,
		Level:      s.Level,
		Gender:     s.Gender,
		Preference: s.Preference,
		Handle:     s.Handle,
	}
}

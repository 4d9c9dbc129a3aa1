package register

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qazaqtalk/backend/internal/domain"
	"github.com/qazaqtalk/backend/internal/repository"
)

// Reply is the next step of the registration dialogue: a prompt for the
// user and, for enum steps, the closed set of choices.
type Reply struct {
	Prompt  string          `json:"prompt"`
	Options []string        `json:"options,omitempty"`
	Done    bool            `json:"done"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

const greeting = "Welcome to QazaqTalk! 👋 Let's get you registered.\nWhat is your name?"

// Flow drives the registration dialogue as an explicit state machine.
// Session state lives in the session store under a TTL; abandoning the
// dialogue simply lets it expire.
type Flow struct {
	sessions repository.SessionRepository
	profiles repository.ProfileRepository
	log      *slog.Logger
}

func NewFlow(sessions repository.SessionRepository, profiles repository.ProfileRepository, log *slog.Logger) *Flow {
	return &Flow{sessions: sessions, profiles: profiles, log: log}
}

// Start begins (or restarts) registration for userID. When the
// transport already knows the user's handle it is passed in and the
// username step is skipped.
func (f *Flow) Start(ctx context.Context, userID int64, handle string) (*Reply, error) {
	session := &domain.Session{UserID: userID, Handle: strings.TrimSpace(handle)}
	if session.Handle == "" {
		session.State = domain.StateAwaitingUsername
	} else {
		session.State = domain.StateAwaitingName
	}
	if err := f.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	if session.State == domain.StateAwaitingUsername {
		return &Reply{Prompt: "Enter your contact username:"}, nil
	}
	return &Reply{Prompt: greeting}, nil
}

// Input advances the dialogue with the user's answer. An answer outside
// the expected set re-prompts the same step.
func (f *Flow) Input(ctx context.Context, userID int64, text string) (*Reply, error) {
	session, err := f.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)

	switch session.State {
	case domain.StateAwaitingUsername:
		if text == "" {
			return &Reply{Prompt: "Enter your contact username:"}, nil
		}
		session.Handle = strings.TrimPrefix(text, "@")
		session.State = domain.StateAwaitingName
		return f.advance(ctx, session, &Reply{Prompt: greeting})

	case domain.StateAwaitingName:
		if text == "" {
			return &Reply{Prompt: "What is your name?"}, nil
		}
		session.Name = text
		session.State = domain.StateAwaitingAge
		return f.advance(ctx, session, &Reply{
			Prompt:  "How old are you?",
			Options: bracketOptions(),
		})

	case domain.StateAwaitingAge:
		bracket, err := domain.ParseAgeBracket(text)
		if err != nil {
			return retry(err, "How old are you?", bracketOptions())
		}
		session.AgeBracket = bracket
		session.State = domain.StateAwaitingLevel
		return f.advance(ctx, session, &Reply{
			Prompt:  "What is your Kazakh level?",
			Options: levelOptions(),
		})

	case domain.StateAwaitingLevel:
		level, err := domain.ParseLevel(text)
		if err != nil {
			return retry(err, "What is your Kazakh level?", levelOptions())
		}
		session.Level = level
		session.State = domain.StateAwaitingGender
		return f.advance(ctx, session, &Reply{
			Prompt:  "What is your gender?",
			Options: []string{string(domain.GenderMale), string(domain.GenderFemale)},
		})

	case domain.StateAwaitingGender:
		gender, err := domain.ParseGender(text)
		if err != nil {
			return retry(err, "What is your gender?",
				[]string{string(domain.GenderMale), string(domain.GenderFemale)})
		}
		session.Gender = gender
		session.State = domain.StateAwaitingPreference
		return f.advance(ctx, session, &Reply{
			Prompt:  "Who would you like to practice with?",
			Options: preferenceOptions(),
		})

	case domain.StateAwaitingPreference:
		pref, err := domain.ParsePreference(text)
		if err != nil {
			return retry(err, "Who would you like to practice with?", preferenceOptions())
		}
		session.Preference = pref
		session.State = domain.StateComplete
		return f.complete(ctx, session)
	}

	return nil, fmt.Errorf("%w: session in state %q", domain.ErrSessionNotFound, session.State)
}

func (f *Flow) advance(ctx context.Context, session *domain.Session, reply *Reply) (*Reply, error) {
	if err := f.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return reply, nil
}

func (f *Flow) complete(ctx context.Context, session *domain.Session) (*Reply, error) {
	profile := session.Profile()
	if err := f.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	if err := f.sessions.Delete(ctx, session.UserID); err != nil {
		// The profile is saved; a leftover session only wastes its TTL.
		f.log.Warn("session cleanup failed", "user_id", session.UserID, "err", err)
	}
	f.log.Info("registration complete", "user_id", session.UserID, "handle", profile.Handle)
	return &Reply{
		Prompt:  "You're all set! Looking for a practice partner...",
		Done:    true,
		Profile: profile,
	}, nil
}

// retry re-prompts the current step for an invalid choice and passes
// other errors through.
func retry(err error, prompt string, options []string) (*Reply, error) {
	if errors.Is(err, domain.ErrInvalidChoice) {
		return &Reply{Prompt: prompt, Options: options}, nil
	}
	return nil, err
}

func bracketOptions() []string {
	opts := make([]string, len(domain.AgeBrackets))
	for i, b := range domain.AgeBrackets {
		opts[i] = string(b)
	}
	return opts
}

func levelOptions() []string {
	opts := make([]string, len(domain.Levels))
	for i, l := range domain.Levels {
		opts[i] = string(l)
	}
	return opts
}

func preferenceOptions() []string {
	return []string{
		string(domain.PreferenceMale),
		string(domain.PreferenceFemale),
		string(domain.PreferenceAny),
	}
}

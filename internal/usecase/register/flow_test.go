package register

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

type memSessions struct {
	sessions map[int64]*domain.Session
}

func (m *memSessions) Get(_ context.Context, userID int64) (*domain.Session, error) {
	s, ok := m.sessions[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memSessions) Save(_ context.Context, session *domain.Session) error {
	copied := *session
	m.sessions[session.UserID] = &copied
	return nil
}

func (m *memSessions) Delete(_ context.Context, userID int64) error {
	delete(m.sessions, userID)
	return nil
}

type memProfiles struct {
	profiles map[int64]*domain.Profile
}

func (m *memProfiles) GetByID(_ context.Context, userID int64) (*domain.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func (m *memProfiles) Upsert(_ context.Context, p *domain.Profile) error {
	m.profiles[p.ID] = p
	return nil
}

func (m *memProfiles) ListCandidates(context.Context, int64, time.Time) ([]*domain.Profile, error) {
	return nil, nil
}

func newTestFlow() (*Flow, *memSessions, *memProfiles) {
	sessions := &memSessions{sessions: make(map[int64]*domain.Session)}
	profiles := &memProfiles{profiles: make(map[int64]*domain.Profile)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFlow(sessions, profiles, log), sessions, profiles
}

func TestFullDialogue(t *testing.T) {
	flow, sessions, profiles := newTestFlow()
	ctx := context.Background()

	reply, err := flow.Start(ctx, 7, "aruzhan_k")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "your name")

	reply, err = flow.Input(ctx, 7, "Aruzhan")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "How old")
	assert.Contains(t, reply.Options, "17-20")

	reply, err = flow.Input(ctx, 7, "17-20")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "level")
	assert.Contains(t, reply.Options, "intermediate")

	reply, err = flow.Input(ctx, 7, "intermediate")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "gender")

	reply, err = flow.Input(ctx, 7, "female")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "practice with")

	reply, err = flow.Input(ctx, 7, "any")
	require.NoError(t, err)
	assert.True(t, reply.Done)
	require.NotNil(t, reply.Profile)

	p := profiles.profiles[7]
	require.NotNil(t, p)
	assert.Equal(t, "Aruzhan", p.Name)
	assert.Equal(t, domain.AgeBracket("17-20"), p.AgeBracket)
	assert.Equal(t, domain.LevelIntermediate, p.Level)
	assert.Equal(t, domain.GenderFemale, p.Gender)
	assert.Equal(t, domain.PreferenceAny, p.Preference)
	assert.Equal(t, "aruzhan_k", p.Handle)

	// Session is discarded on completion.
	assert.NotContains(t, sessions.sessions, int64(7))
}

func TestUsernameStepWhenHandleUnknown(t *testing.T) {
	flow, sessions, _ := newTestFlow()
	ctx := context.Background()

	reply, err := flow.Start(ctx, 7, "")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "username")

	reply, err = flow.Input(ctx, 7, "@dias99")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "your name")
	assert.Equal(t, "dias99", sessions.sessions[7].Handle)
}

func TestInvalidChoiceReprompts(t *testing.T) {
	flow, sessions, _ := newTestFlow()
	ctx := context.Background()

	_, err := flow.Start(ctx, 7, "dias99")
	require.NoError(t, err)
	_, err = flow.Input(ctx, 7, "Dias")
	require.NoError(t, err)

	reply, err := flow.Input(ctx, 7, "twenty")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "How old")
	assert.NotEmpty(t, reply.Options)
	assert.Equal(t, domain.StateAwaitingAge, sessions.sessions[7].State)

	// A valid answer still advances.
	reply, err = flow.Input(ctx, 7, "21-25")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "level")
}

func TestInputWithoutSession(t *testing.T) {
	flow, _, _ := newTestFlow()
	_, err := flow.Input(context.Background(), 7, "hello")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRestartResetsDialogue(t *testing.T) {
	flow, sessions, _ := newTestFlow()
	ctx := context.Background()

	_, err := flow.Start(ctx, 7, "dias99")
	require.NoError(t, err)
	_, err = flow.Input(ctx, 7, "Dias")
	require.NoError(t, err)

	// Starting over mid-dialogue throws away collected answers.
	_, err = flow.Start(ctx, 7, "dias99")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingName, sessions.sessions[7].State)
	assert.Empty(t, sessions.sessions[7].Name)
}

func TestEmptyNameReprompts(t *testing.T) {
	flow, _, _ := newTestFlow()
	ctx := context.Background()

	_, err := flow.Start(ctx, 7, "dias99")
	require.NoError(t, err)

	reply, err := flow.Input(ctx, 7, "   ")
	require.NoError(t, err)
	assert.Contains(t, reply.Prompt, "your name")
}

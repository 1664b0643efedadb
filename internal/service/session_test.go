package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/log"
)

func TestSessionManagerSignIn(t *testing.T) {
	m := NewSessionManager(&stubIdentity{}, log.NullLogger())

	var changes []SessionChange
	m.Subscribe(func(c SessionChange) {
		changes = append(changes, c)
	})

	session, err := m.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, session, m.Current())

	require.Len(t, changes, 1)
	assert.Equal(t, domain.EventSignedIn, changes[0].Event)
	assert.Equal(t, session, changes[0].Session)
}

func TestSessionManagerSignOutExactlyOnce(t *testing.T) {
	identity := &stubIdentity{}
	m := NewSessionManager(identity, log.NullLogger())

	var events []domain.SessionEvent
	m.Subscribe(func(c SessionChange) {
		events = append(events, c.Event)
	})

	_, err := m.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	require.NoError(t, m.SignOut(context.Background()))
	assert.Nil(t, m.Current())

	// A second sign-out is a no-op: no session, no notification
	require.NoError(t, m.SignOut(context.Background()))

	assert.Equal(t, []domain.SessionEvent{domain.EventSignedIn, domain.EventSignedOut}, events)
	assert.Equal(t, 1, identity.signOuts)
}

func TestSessionManagerLateSubscriberSeesActiveSession(t *testing.T) {
	m := NewSessionManager(&stubIdentity{}, log.NullLogger())

	_, err := m.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	var changes []SessionChange
	m.Subscribe(func(c SessionChange) {
		changes = append(changes, c)
	})

	require.Len(t, changes, 1)
	assert.Equal(t, domain.EventSignedIn, changes[0].Event)
	require.NotNil(t, changes[0].Session)
	assert.Equal(t, "u1", changes[0].Session.UserID)
}

func TestSessionManagerRestore(t *testing.T) {
	t.Run("no stored session", func(t *testing.T) {
		m := NewSessionManager(&stubIdentity{}, log.NullLogger())
		session, err := m.Restore(context.Background())
		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Nil(t, m.Current())
	})

	t.Run("resumes stored session", func(t *testing.T) {
		identity := &stubIdentity{
			CurrentSessionFn: func(ctx context.Context) (*domain.Session, error) {
				return &domain.Session{UserID: "u2", Email: "x@y.z", AccessToken: "tok2"}, nil
			},
		}
		m := NewSessionManager(identity, log.NullLogger())

		session, err := m.Restore(context.Background())
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "u2", session.UserID)
		assert.Equal(t, session, m.Current())
	})
}

func TestSessionManagerSignInFailure(t *testing.T) {
	identity := &stubIdentity{
		SignInFn: func(ctx context.Context, email, password string) (*domain.Session, error) {
			return nil, domain.ErrAuthFailed
		},
	}
	m := NewSessionManager(identity, log.NullLogger())

	notified := false
	m.Subscribe(func(SessionChange) { notified = true })

	_, err := m.SignIn(context.Background(), "a@b.c", "bad")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.Nil(t, m.Current())
	assert.False(t, notified)
}

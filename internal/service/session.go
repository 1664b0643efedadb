package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

// SessionChange describes a session transition delivered to observers
type SessionChange struct {
	Event   domain.SessionEvent
	Session *domain.Session
}

// SessionManager owns the active session and fans out sign-in and
// sign-out transitions. Observers see each transition exactly once,
// in registration order.
type SessionManager struct {
	provider domain.IdentityProvider
	logger   *slog.Logger

	mu        sync.RWMutex
	current   *domain.Session
	observers []func(SessionChange)
}

// NewSessionManager creates a new session manager
func NewSessionManager(provider domain.IdentityProvider, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		provider: provider,
		logger:   logger,
	}
}

// Current returns the active session, or nil when signed out
func (m *SessionManager) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe registers an observer for session transitions. If a session
// is already active the observer immediately receives its sign-in, so
// late subscribers never miss the initial state.
func (m *SessionManager) Subscribe(fn func(SessionChange)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	current := m.current
	m.mu.Unlock()

	if current != nil {
		fn(SessionChange{Event: domain.EventSignedIn, Session: current})
	}
}

// Restore resolves a previously established session, if any. Returns
// nil without error when no session can be resumed.
func (m *SessionManager) Restore(ctx context.Context) (*domain.Session, error) {
	session, err := m.provider.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	m.logger.Info("session restored", "user", session.UserID)
	m.adopt(session)
	return session, nil
}

// SignIn authenticates with the identity provider and activates the
// resulting session
func (m *SessionManager) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		m.logger.Warn("sign-in failed", "email", email, "error", err)
		return nil, err
	}

	m.logger.Info("signed in", "user", session.UserID)
	m.adopt(session)
	return session, nil
}

// SignUp registers a new account and activates its session
func (m *SessionManager) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := m.provider.SignUp(ctx, email, password)
	if err != nil {
		m.logger.Warn("sign-up failed", "email", email, "error", err)
		return nil, err
	}

	m.logger.Info("signed up", "user", session.UserID)
	m.adopt(session)
	return session, nil
}

// SignOut ends the active session and notifies observers. Observers
// run after the session is already cleared, so anything they read
// through the manager sees the signed-out state.
func (m *SessionManager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	session := m.current
	if session == nil {
		m.mu.Unlock()
		return nil
	}
	m.current = nil
	observers := append([]func(SessionChange){}, m.observers...)
	m.mu.Unlock()

	m.logger.Info("signed out", "user", session.UserID)

	for _, fn := range observers {
		fn(SessionChange{Event: domain.EventSignedOut})
	}

	return m.provider.SignOut(ctx, session.AccessToken)
}

// adopt installs a session and notifies observers of the sign-in
func (m *SessionManager) adopt(session *domain.Session) {
	m.mu.Lock()
	m.current = session
	observers := append([]func(SessionChange){}, m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(SessionChange{Event: domain.EventSignedIn, Session: session})
	}
}

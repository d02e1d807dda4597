package account

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/amonks/pv/internal/kv"
)

// SessionKey holds the current session.
const SessionKey = "pv_auth"

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNoSession is returned by Require when nobody is logged in.
	ErrNoSession = errors.New("not logged in")
)

// Session records who is logged in.
type Session struct {
	Username string `json:"username"`
}

// Sessions manages the single session slot.
type Sessions struct {
	kv    kv.Store
	users *Users
}

// NewSessions returns the session guard backed by store.
func NewSessions(store kv.Store, users *Users) *Sessions {
	return &Sessions{kv: store, users: users}
}

// Login replaces the session when the credentials match a user.
func (s *Sessions) Login(username, password string) (Session, error) {
	user, ok, err := s.users.Authenticate(username, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	session := Session{Username: user.Username}
	if err := kv.SetJSON(s.kv, SessionKey, session); err != nil {
		return Session{}, fmt.Errorf("write session: %w", err)
	}
	return session, nil
}

// Logout clears the session slot.
func (s *Sessions) Logout() error {
	if err := s.kv.Delete(SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the active session, if any.
// An unparsable record or one without a username counts as no session.
func (s *Sessions) Current() (Session, bool, error) {
	var session Session
	ok, err := kv.GetJSON(s.kv, SessionKey, &session)
	if errors.Is(err, kv.ErrMalformed) {
		slog.Debug("session_unparsable", "error", err)
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("read session: %w", err)
	}
	if !ok || session.Username == "" {
		return Session{}, false, nil
	}
	return session, true, nil
}

// Require returns the active session or ErrNoSession.
func (s *Sessions) Require() (Session, error) {
	session, ok, err := s.Current()
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrNoSession
	}
	return session, nil
}

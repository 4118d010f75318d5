// Package session holds the single, process-wide login session: the bearer
// credential attached to every API request and the viewer's identity.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

// Session is a logged-in viewer.
type Session struct {
	AccessToken string `yaml:"access_token"`
	TokenType   string `yaml:"token_type"`
	UserID      string `yaml:"user_id"`
	Username    string `yaml:"username"`
}

// FromToken converts a login response into a session.
func FromToken(t domain.Token) Session {
	return Session{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		UserID:      t.UserID,
		Username:    t.Username,
	}
}

// Authorization is the value of the Authorization header.
func (s Session) Authorization() string {
	if s.AccessToken == "" {
		return ""
	}
	scheme := s.TokenType
	if scheme == "" || scheme == "bearer" {
		scheme = "Bearer"
	}
	return scheme + " " + s.AccessToken
}

// ErrEmptyToken is returned when logging in without a credential.
var ErrEmptyToken = errors.New("session: empty access token")

// Persister stores the session across restarts.
type Persister interface {
	Load() (Session, bool, error)
	Save(Session) error
	Clear() error
}

// Manager guards the current session. All methods are safe for concurrent
// use.
type Manager struct {
	mu        sync.RWMutex
	current   *Session
	persister Persister
	now       func() time.Time
}

// NewManager creates a manager and restores a previously saved session.
// A saved session whose token has expired is discarded.
func NewManager(p Persister) (*Manager, error) {
	m := &Manager{persister: p, now: time.Now}
	s, ok, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if ok && !m.expired(s) {
		m.current = &s
	}
	return m, nil
}

// Login replaces the current session and persists it.
func (m *Manager) Login(s Session) error {
	if s.AccessToken == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persister.Save(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.current = &s
	return nil
}

// Logout clears the session. Logging out without a session is not an error.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	if err := m.persister.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the session, if any and not expired.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || m.expired(*m.current) {
		return Session{}, false
	}
	return *m.current, true
}

// Viewer is the logged-in username, or "".
func (m *Manager) Viewer() string {
	s, _ := m.Current()
	return s.Username
}

// Authorization implements the API client's credential source.
func (m *Manager) Authorization() string {
	s, _ := m.Current()
	return s.Authorization()
}

// expired reads the token's exp claim without verifying the signature;
// the API remains the authority. Opaque tokens never expire locally.
func (m *Manager) expired(s Session) bool {
	exp, ok := ExpiresAt(s.AccessToken)
	return ok && !m.now().Before(exp)
}

// ExpiresAt returns the exp claim of a JWT access token.
func ExpiresAt(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

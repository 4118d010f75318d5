package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/internal/session"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
)

// Authenticator talks to the API's account endpoints.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Token, error)
	Register(ctx context.Context, reg domain.Registration) error
}

// SessionStore holds the process-wide session.
type SessionStore interface {
	Login(s session.Session) error
	Logout() error
}

// ErrMissingCredentials is returned when username or password is empty.
var ErrMissingCredentials = errors.New("username and password are required")

// AuthUseCase logs viewers in and out and registers accounts. Local tweet
// state carries the viewer's reactions, so it is dropped whenever the
// session changes.
type AuthUseCase struct {
	api      Authenticator
	sessions SessionStore
	store    TweetStore
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(api Authenticator, sessions SessionStore, store TweetStore) *AuthUseCase {
	return &AuthUseCase{api: api, sessions: sessions, store: store}
}

// Login exchanges credentials for a session.
func (uc *AuthUseCase) Login(ctx context.Context, creds domain.Credentials) (session.Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return session.Session{}, ErrMissingCredentials
	}
	token, err := uc.api.Login(ctx, creds)
	if err != nil {
		return session.Session{}, err
	}
	s := session.FromToken(token)
	if s.Username == "" {
		s.Username = creds.Username
	}
	if err := uc.sessions.Login(s); err != nil {
		return session.Session{}, fmt.Errorf("login: %w", err)
	}
	uc.store.Reset()
	log.GlobalInfoCtx(log.WithViewer(ctx, s.Username), "logged in")
	return s, nil
}

// Logout ends the session.
func (uc *AuthUseCase) Logout(ctx context.Context) error {
	if err := uc.sessions.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	uc.store.Reset()
	log.GlobalInfoCtx(ctx, "logged out")
	return nil
}

// Register creates an account. The viewer still has to log in afterwards.
func (uc *AuthUseCase) Register(ctx context.Context, reg domain.Registration) error {
	if err := uc.api.Register(ctx, reg); err != nil {
		return err
	}
	log.GlobalInfoCtx(ctx, "account registered", "username", reg.Username)
	return nil
}

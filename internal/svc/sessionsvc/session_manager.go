package sessionsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkrupp/storefront/internal/domain"
	ictx "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

// Verifier checks a username/password pair.
type Verifier interface {
	Verify(ctx context.Context, username, password string) (domain.Account, error)
}

// SessionManager holds the single session slot of the process.
// The zero value is not usable; use NewSessionManager.
type SessionManager struct {
	verifier Verifier
	log      logging.Logger

	m        sync.Mutex
	username string
	loggedIn bool
}

// NewSessionManager returns a manager in the logged-out state.
func NewSessionManager(verifier Verifier) *SessionManager {
	return &SessionManager{
		verifier: verifier,
		log:      logging.GetLogger("svc.sessionsvc.session_manager"),
	}
}

// Login verifies the credentials and makes username the current user,
// replacing any previous one. On failure the session is left as it was.
func (s *SessionManager) Login(ctx context.Context, username, password string) (_ domain.Account, err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			s.log.InfoContext(ctx, "logged in", logging.Group("user", "username", username))
		}
	}()

	acc, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("verify: %w", err)
	}

	s.m.Lock()
	s.username, s.loggedIn = acc.Username, true
	s.m.Unlock()

	return acc, nil
}

// Logout clears the session. Calling it while logged out is a no-op.
func (s *SessionManager) Logout(ctx context.Context) {
	s.m.Lock()
	previous, was := s.username, s.loggedIn
	s.username, s.loggedIn = "", false
	s.m.Unlock()

	if was {
		s.log.InfoContext(ctx, "logged out", logging.Group("user", "username", previous))
	}
}

// Current returns the logged-in username, if any.
func (s *SessionManager) Current() (string, bool) {
	s.m.Lock()
	defer s.m.Unlock()

	return s.username, s.loggedIn
}

// Require returns the logged-in username or domain.ErrUnauthenticated.
func (s *SessionManager) Require() (string, error) {
	username, ok := s.Current()
	if !ok {
		return "", domain.ErrUnauthenticated
	}

	return username, nil
}

// Context returns ctx tagged with the current username, so log records
// written under it carry the session.
func (s *SessionManager) Context(ctx context.Context) context.Context {
	if username, ok := s.Current(); ok {
		return ictx.WithUsername(ctx, username)
	}

	return ctx
}

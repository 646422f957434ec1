package profilesvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/account"
	"github.com/mkrupp/storefront/internal/svc/accountsvc"
)

// Accounts reads and mutates stored accounts.
type Accounts interface {
	Account(ctx context.Context, username string) (domain.Account, error)
	Update(ctx context.Context, username string, mutate account.Mutator) (domain.Account, error)
}

// Session yields the logged-in username.
type Session interface {
	Require() (string, error)
}

// ProfileService lets the logged-in user view and edit their own account.
type ProfileService struct {
	Config   accountsvc.AccountConfig
	Accounts Accounts
	Session  Session
	Log      logging.Logger
	Now      func() time.Time
}

// NewProfileService creates a ProfileService. Password hashes use cfg.BcryptCost.
func NewProfileService(accounts Accounts, session Session, cfg accountsvc.AccountConfig) *ProfileService {
	return &ProfileService{
		Config:   cfg,
		Accounts: accounts,
		Session:  session,
		Log:      logging.GetLogger("svc.profilesvc.profile_service"),
		Now:      time.Now,
	}
}

// Profile returns the current user's account. Records missing a display name
// or creation date are back-filled and saved.
func (s *ProfileService) Profile(ctx context.Context) (domain.Account, error) {
	username, err := s.Session.Require()
	if err != nil {
		return domain.Account{}, err
	}

	acc, err := s.Accounts.Account(ctx, username)
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	if !acc.Backfill(s.now()) {
		return acc, nil
	}

	backfilled := acc

	acc, err = s.Accounts.Update(ctx, username, func(a *domain.Account) error {
		a.DisplayName = backfilled.DisplayName
		a.CreatedOn = backfilled.CreatedOn

		return nil
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("backfill account: %w", err)
	}

	s.Log.InfoContext(ctx, "profile back-filled", logging.Group("user", "username", username))

	return acc, nil
}

// UpdateInfo stores a new display name and email for the current user.
// Both values are trimmed; the display name must not be blank, the email may be.
func (s *ProfileService) UpdateInfo(ctx context.Context, displayName, email string) (_ domain.Account, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "update info failed", "error", err)
		} else {
			s.Log.DebugContext(ctx, "info updated")
		}
	}()

	username, err := s.Session.Require()
	if err != nil {
		return domain.Account{}, err
	}

	displayName = strings.TrimSpace(displayName)
	email = strings.TrimSpace(email)

	if displayName == "" {
		return domain.Account{}, fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}

	acc, err := s.Accounts.Update(ctx, username, func(a *domain.Account) error {
		a.DisplayName = displayName
		a.Email = email

		return nil
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}

	return acc, nil
}

// ChangePassword replaces the current user's password. Checks run in order:
// blank fields (domain.ErrInvalidInput), wrong current password
// (domain.ErrInvalidCredentials), confirmation mismatch (domain.ErrMismatch).
func (s *ProfileService) ChangePassword(ctx context.Context, current, next, confirm string) (err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "change password failed", "error", err)
		} else {
			s.Log.InfoContext(ctx, "password changed")
		}
	}()

	username, err := s.Session.Require()
	if err != nil {
		return err
	}

	current = strings.TrimSpace(current)
	next = strings.TrimSpace(next)
	confirm = strings.TrimSpace(confirm)

	if current == "" || next == "" || confirm == "" {
		return fmt.Errorf("%w: all password fields are required", domain.ErrInvalidInput)
	}

	_, err = s.Accounts.Update(ctx, username, func(a *domain.Account) error {
		if !accountsvc.PasswordMatches(a.PasswordHash, current) {
			return domain.ErrInvalidCredentials
		}

		if next != confirm {
			return domain.ErrMismatch
		}

		hash, err := accountsvc.HashPassword(next, s.Config.BcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		a.PasswordHash = hash

		return nil
	})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	return nil
}

func (s *ProfileService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}

	return s.Now()
}

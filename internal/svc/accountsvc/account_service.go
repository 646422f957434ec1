package accountsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/account"
)

// AvatarEnsurer creates a user's avatar if it does not exist yet.
type AvatarEnsurer interface {
	Ensure(ctx context.Context, username string) (string, error)
}

// AccountService handles registration and credential checks on top of an
// account repository.
type AccountService struct {
	Config      AccountConfig
	AccountRepo account.Repository
	Avatars     AvatarEnsurer // optional
	Log         logging.Logger
	Now         func() time.Time
}

// NewAccountService creates a new AccountService with the given repository factory and configuration.
// Returns an error if the account repository cannot be created.
func NewAccountService(
	ctx context.Context,
	repoFactory account.RepositoryFactory,
	avatars AvatarEnsurer,
	cfg AccountConfig,
) (*AccountService, error) {
	accountRepo, err := repoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new account repo: %w", err)
	}

	return &AccountService{
		Config:      cfg,
		AccountRepo: accountRepo,
		Avatars:     avatars,
		Log:         logging.GetLogger("svc.accountsvc.account_service"),
		Now:         time.Now,
	}, nil
}

// Register creates a new account. Username and password are trimmed first.
// Returns domain.ErrInvalidInput for blank values or the reserved anonymous
// name, and domain.ErrDuplicateUser if the username is taken.
func (s *AccountService) Register(ctx context.Context, username, password string) (_ domain.Account, err error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register failed", "error", err)
		} else {
			log.DebugContext(ctx, "account registered")
		}
	}()

	if username == "" || password == "" {
		return domain.Account{}, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	if username == domain.AnonymousAuthor {
		return domain.Account{}, fmt.Errorf("%w: %q is reserved", domain.ErrInvalidInput, username)
	}

	hash, err := HashPassword(password, s.Config.BcryptCost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	acc := domain.NewAccount(username, hash, s.now())

	if err := s.AccountRepo.CreateAccount(ctx, acc); err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	if s.Avatars != nil {
		if _, err := s.Avatars.Ensure(ctx, username); err != nil {
			log.WarnContext(ctx, "avatar not created", "error", err)
		}
	}

	return acc, nil
}

// Verify returns the account if password matches. Unknown users and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *AccountService) Verify(ctx context.Context, username, password string) (_ domain.Account, err error) {
	username = strings.TrimSpace(username)

	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "verify failed", "error", err)
		} else {
			log.DebugContext(ctx, "credentials verified")
		}
	}()

	if username == "" || strings.TrimSpace(password) == "" {
		return domain.Account{}, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	acc, err := s.AccountRepo.GetAccount(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Account{}, errors.Join(domain.ErrInvalidCredentials, err)
		}

		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	if !PasswordMatches(acc.PasswordHash, strings.TrimSpace(password)) {
		return domain.Account{}, domain.ErrInvalidCredentials
	}

	return acc, nil
}

// Account returns the stored account for username.
func (s *AccountService) Account(ctx context.Context, username string) (domain.Account, error) {
	acc, err := s.AccountRepo.GetAccount(ctx, username)
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return acc, nil
}

// Update applies mutate to the account of username and persists the result.
func (s *AccountService) Update(ctx context.Context, username string, mutate account.Mutator) (domain.Account, error) {
	acc, err := s.AccountRepo.UpdateAccount(ctx, username, mutate)
	if err != nil {
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}

	return acc, nil
}

// Close releases the account repository.
func (s *AccountService) Close() error {
	//nolint:wrapcheck
	return s.AccountRepo.Close()
}

func (s *AccountService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}

	return s.Now()
}

package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

// JSONAccountRepositoryConfig holds configuration for the JSON file account repository.
type JSONAccountRepositoryConfig struct {
	// File is the path of the account mapping
	File string `env:"FILE" envDefault:"var/storage/accounts.json"`

	// Lenient starts with an empty store instead of failing when the file
	// cannot be decoded. The damaged file is overwritten on the next save.
	Lenient bool `env:"LENIENT" envDefault:"false"`
}

// JSONAccountRepository keeps all accounts in memory and rewrites the whole
// file on every mutation.
type JSONAccountRepository struct {
	cfg      JSONAccountRepositoryConfig
	log      logging.Logger
	m        sync.Mutex
	accounts map[string]domain.Account
}

var _ Repository = (*JSONAccountRepository)(nil)

// JSONAccountRepositoryFactory creates a factory function that returns a new JSONAccountRepository.
func JSONAccountRepositoryFactory(cfg JSONAccountRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewJSONAccountRepository(ctx, cfg)
	}
}

// NewJSONAccountRepository creates the repository and loads the account file.
// A missing file yields an empty store. A malformed file yields
// domain.ErrCorruptStore unless cfg.Lenient is set.
func NewJSONAccountRepository(ctx context.Context, cfg JSONAccountRepositoryConfig) (*JSONAccountRepository, error) {
	repo := &JSONAccountRepository{
		cfg: cfg,
		log: logging.GetLogger("repo.account.json_repository").With(
			logging.Group("store", "file", cfg.File),
		),
		accounts: make(map[string]domain.Account),
	}

	if err := repo.Load(ctx); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	return repo, nil
}

// Load replaces the in-memory accounts with the content of the file.
func (r *JSONAccountRepository) Load(ctx context.Context) (err error) {
	r.m.Lock()
	defer r.m.Unlock()

	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "load accounts failed", "error", err)
		} else {
			r.log.DebugContext(ctx, "accounts loaded", "count", len(r.accounts))
		}
	}()

	data, err := os.ReadFile(r.cfg.File)
	if errors.Is(err, os.ErrNotExist) {
		r.accounts = make(map[string]domain.Account)

		return nil
	} else if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	accounts, err := decodeAccounts(data)
	if err != nil {
		if !r.cfg.Lenient {
			return err
		}

		r.log.WarnContext(ctx, "account file is corrupt, starting empty", "error", err)

		accounts = make(map[string]domain.Account)
	}

	r.accounts = accounts

	return nil
}

// CreateAccount implements Repository.CreateAccount.
func (r *JSONAccountRepository) CreateAccount(ctx context.Context, account domain.Account) error {
	r.m.Lock()
	defer r.m.Unlock()

	if _, exists := r.accounts[account.Username]; exists {
		return fmt.Errorf("insert account: %w", domain.ErrDuplicateUser)
	}

	r.accounts[account.Username] = account

	if err := r.save(ctx); err != nil {
		delete(r.accounts, account.Username)

		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetAccount implements Repository.GetAccount.
func (r *JSONAccountRepository) GetAccount(_ context.Context, username string) (domain.Account, error) {
	r.m.Lock()
	defer r.m.Unlock()

	account, ok := r.accounts[username]
	if !ok {
		return domain.Account{}, fmt.Errorf("query account %q: %w", username, domain.ErrNotFound)
	}

	return account, nil
}

// UpdateAccount implements Repository.UpdateAccount.
func (r *JSONAccountRepository) UpdateAccount(
	ctx context.Context,
	username string,
	mutate Mutator,
) (domain.Account, error) {
	r.m.Lock()
	defer r.m.Unlock()

	original, ok := r.accounts[username]
	if !ok {
		return domain.Account{}, fmt.Errorf("query account %q: %w", username, domain.ErrNotFound)
	}

	updated := original
	if err := mutate(&updated); err != nil {
		return original, err
	}

	updated.Username = original.Username
	r.accounts[username] = updated

	if err := r.save(ctx); err != nil {
		r.accounts[username] = original

		return original, fmt.Errorf("update account: %w", err)
	}

	return updated, nil
}

// Close implements Repository.Close. Every mutation is already on disk.
func (r *JSONAccountRepository) Close() error {
	return nil
}

// save writes to a temporary file in the same directory and renames it
// over the target. Callers must hold r.m.
func (r *JSONAccountRepository) save(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "save accounts failed", "error", err)
		} else {
			r.log.DebugContext(ctx, "accounts saved", "count", len(r.accounts))
		}
	}()

	data, err := json.MarshalIndent(r.accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}

	dir := filepath.Dir(r.cfg.File)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(r.cfg.File)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	tmpName := file.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := file.Write(append(data, '\n')); err != nil {
		_ = file.Close()

		return fmt.Errorf("write: %w", err)
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()

		return fmt.Errorf("sync: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmpName, r.cfg.File); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// decodeAccounts parses the account mapping and checks that every key is a
// non-blank username matching its record. Records without a username field
// take it from their key.
func decodeAccounts(data []byte) (map[string]domain.Account, error) {
	accounts := make(map[string]domain.Account)

	if len(bytes.TrimSpace(data)) == 0 {
		return accounts, nil
	}

	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, errors.Join(domain.ErrCorruptStore, fmt.Errorf("unmarshal accounts: %w", err))
	}

	if accounts == nil {
		// the file contained a JSON null
		return make(map[string]domain.Account), nil
	}

	for key, account := range accounts {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: blank username key", domain.ErrCorruptStore)
		}

		switch account.Username {
		case "":
			account.Username = key
			accounts[key] = account
		case key:
		default:
			return nil, fmt.Errorf("%w: key %q holds account %q", domain.ErrCorruptStore, key, account.Username)
		}
	}

	return accounts, nil
}

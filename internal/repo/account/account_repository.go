package account

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Mutator changes an account in place. Returning an error aborts the update
// and nothing is persisted.
type Mutator func(account *domain.Account) error

// Repository defines the interface for account persistence.
type Repository interface {
	// CreateAccount adds a new account.
	// Returns domain.ErrDuplicateUser if the username is already taken.
	CreateAccount(ctx context.Context, account domain.Account) error

	// GetAccount retrieves an account by its username.
	// Returns domain.ErrNotFound if there is no such account.
	GetAccount(ctx context.Context, username string) (domain.Account, error)

	// UpdateAccount applies mutate to the stored account and persists the result.
	// The username cannot be changed. Returns the updated account, or
	// domain.ErrNotFound if there is no such account.
	UpdateAccount(ctx context.Context, username string, mutate Mutator) (domain.Account, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func(ctx context.Context) (Repository, error)

// Driver names accepted by RepositoryConfig.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// RepositoryConfig selects and configures the account store backend.
type RepositoryConfig struct {
	// Driver is either "json" (human-readable file) or "sqlite"
	Driver string `env:"DRIVER" envDefault:"json"`

	JSON   JSONAccountRepositoryConfig   `envPrefix:"JSON_"`
	SQLite SQLiteAccountRepositoryConfig `envPrefix:"SQLITE_"`
}

// RepositoryFactoryFor returns the factory of the configured backend.
// Unknown drivers fall back to the JSON file store.
func RepositoryFactoryFor(cfg RepositoryConfig) RepositoryFactory {
	if cfg.Driver == DriverSQLite {
		return SQLiteAccountRepositoryFactory(cfg.SQLite)
	}

	return JSONAccountRepositoryFactory(cfg.JSON)
}

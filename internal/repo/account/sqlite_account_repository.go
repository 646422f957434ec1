package account

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteAccountRepositoryConfig holds configuration for the SQLite account repository.
type SQLiteAccountRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" envDefault:"var/storage/accounts.db"`
}

// SQLiteAccountRepository implements Repository using SQLite as the storage backend.
type SQLiteAccountRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteAccountRepository)(nil)

// SQLiteAccountRepositoryFactory creates a factory function that returns a new SQLiteAccountRepository.
func SQLiteAccountRepositoryFactory(cfg SQLiteAccountRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewSQLiteAccountRepository(ctx, cfg)
	}
}

// NewSQLiteAccountRepository opens the database and applies pending migrations.
func NewSQLiteAccountRepository(ctx context.Context, cfg SQLiteAccountRepositoryConfig) (*SQLiteAccountRepository, error) {
	log := logging.GetLogger("repo.account.sqlite_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrate(ctx, db, log); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &SQLiteAccountRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func migrate(ctx context.Context, db *sql.DB, log logging.Logger) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("sub fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("up: %w", err)
	}

	for _, result := range results {
		log.DebugContext(ctx, "migration applied",
			"version", result.Source.Version,
			"duration", result.Duration,
		)
	}

	return nil
}

// CreateAccount implements Repository.CreateAccount using SQLite.
func (r *SQLiteAccountRepository) CreateAccount(ctx context.Context, account domain.Account) (err error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO accounts (username, password_hash, display_name, email, created_on) VALUES (?, ?, ?, ?, ?)",
		account.Username,
		account.PasswordHash,
		account.DisplayName,
		account.Email,
		account.CreatedOn,
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				err = errors.Join(domain.ErrDuplicateUser, err)
			default:
			}
		}

		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetAccount implements Repository.GetAccount using SQLite.
func (r *SQLiteAccountRepository) GetAccount(ctx context.Context, username string) (domain.Account, error) {
	return getAccount(ctx, r.db, username)
}

// UpdateAccount implements Repository.UpdateAccount inside a transaction.
func (r *SQLiteAccountRepository) UpdateAccount(
	ctx context.Context,
	username string,
	mutate Mutator,
) (_ domain.Account, err error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	//nolint:exhaustruct
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return domain.Account{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	original, err := getAccount(ctx, tx, username)
	if err != nil {
		return domain.Account{}, err
	}

	updated := original
	if err := mutate(&updated); err != nil {
		return original, err
	}

	updated.Username = original.Username

	if _, err := tx.ExecContext(ctx,
		"UPDATE accounts SET password_hash = ?, display_name = ?, email = ?, created_on = ? WHERE username = ?",
		updated.PasswordHash,
		updated.DisplayName,
		updated.Email,
		updated.CreatedOn,
		updated.Username,
	); err != nil {
		return original, fmt.Errorf("update account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return original, fmt.Errorf("commit: %w", err)
	}

	return updated, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteAccountRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getAccount(ctx context.Context, q queryRower, username string) (domain.Account, error) {
	var account domain.Account

	err := q.QueryRowContext(ctx,
		"SELECT username, password_hash, display_name, email, created_on FROM accounts WHERE username = ?",
		username,
	).Scan(&account.Username, &account.PasswordHash, &account.DisplayName, &account.Email, &account.CreatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrNotFound, err)
		}

		return domain.Account{}, fmt.Errorf("query account %q: %w", username, err)
	}

	return account, nil
}

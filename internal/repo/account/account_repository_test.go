package account_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"

	. "github.com/mkrupp/storefront/internal/repo/account"
)

var errAbort = errors.New("abort")

func repositoryFactories(t *testing.T) map[string]func() Repository {
	t.Helper()

	return map[string]func() Repository{
		DriverJSON: func() Repository {
			repo, err := NewJSONAccountRepository(context.Background(), JSONAccountRepositoryConfig{
				File: filepath.Join(t.TempDir(), "accounts.json"),
			})
			require.NoError(t, err)

			return repo
		},
		DriverSQLite: func() Repository {
			repo, err := NewSQLiteAccountRepository(context.Background(), SQLiteAccountRepositoryConfig{
				DatabasePath: filepath.Join(t.TempDir(), "accounts.db"),
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = repo.Close() })

			return repo
		},
	}
}

func testAccount(username string) domain.Account {
	return domain.Account{
		Username:     username,
		PasswordHash: "hash-" + username,
		DisplayName:  username,
		Email:        "",
		CreatedOn:    "2024-01-01",
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	for driver, newRepo := range repositoryFactories(t) {
		t.Run(driver, func(t *testing.T) {
			t.Parallel()

			repo := newRepo()
			ctx := context.Background()

			require.NoError(t, repo.CreateAccount(ctx, testAccount("alice")))

			got, err := repo.GetAccount(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, testAccount("alice"), got)

			_, err = repo.GetAccount(ctx, "Alice")
			require.ErrorIs(t, err, domain.ErrNotFound, "usernames are case-sensitive")
		})
	}
}

func TestRepository_CreateDuplicate(t *testing.T) {
	t.Parallel()

	for driver, newRepo := range repositoryFactories(t) {
		t.Run(driver, func(t *testing.T) {
			t.Parallel()

			repo := newRepo()
			ctx := context.Background()

			first := testAccount("bob")
			require.NoError(t, repo.CreateAccount(ctx, first))

			second := testAccount("bob")
			second.PasswordHash = "other"
			require.ErrorIs(t, repo.CreateAccount(ctx, second), domain.ErrDuplicateUser)

			got, err := repo.GetAccount(ctx, "bob")
			require.NoError(t, err)
			assert.Equal(t, first.PasswordHash, got.PasswordHash)
		})
	}
}

func TestRepository_UpdateAccount(t *testing.T) {
	t.Parallel()

	for driver, newRepo := range repositoryFactories(t) {
		t.Run(driver, func(t *testing.T) {
			t.Parallel()

			repo := newRepo()
			ctx := context.Background()

			require.NoError(t, repo.CreateAccount(ctx, testAccount("carol")))

			updated, err := repo.UpdateAccount(ctx, "carol", func(a *domain.Account) error {
				a.DisplayName = "Carol"
				a.Email = "carol@example.com"
				a.Username = "mallory"

				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, "carol", updated.Username)
			assert.Equal(t, "Carol", updated.DisplayName)

			got, err := repo.GetAccount(ctx, "carol")
			require.NoError(t, err)
			assert.Equal(t, updated, got)

			_, err = repo.UpdateAccount(ctx, "carol", func(a *domain.Account) error {
				a.DisplayName = "discarded"

				return errAbort
			})
			require.ErrorIs(t, err, errAbort)

			got, err = repo.GetAccount(ctx, "carol")
			require.NoError(t, err)
			assert.Equal(t, "Carol", got.DisplayName)

			_, err = repo.UpdateAccount(ctx, "nobody", func(*domain.Account) error { return nil })
			require.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/account"
	"github.com/mkrupp/storefront/internal/repo/blob"
	"github.com/mkrupp/storefront/internal/repo/suggestion"
	"github.com/mkrupp/storefront/internal/svc/accountsvc"
	"github.com/mkrupp/storefront/internal/svc/avatarsvc"
	"github.com/mkrupp/storefront/internal/svc/catalogsvc"
	"github.com/mkrupp/storefront/internal/svc/profilesvc"
	"github.com/mkrupp/storefront/internal/svc/sessionsvc"
	"github.com/mkrupp/storefront/internal/svc/suggestionsvc"
)

func newTestServices(t *testing.T) Services {
	t.Helper()

	ctx := context.Background()
	dir := t.TempDir()
	blobs := blob.FileSystemBlobRepositoryFactory(blob.FileSystemBlobRepositoryConfig{Basedir: dir})

	avatars, err := avatarsvc.NewAvatarService(ctx, blobs, avatarsvc.AvatarConfig{Size: 32, Interpolator: "bilinear"})
	require.NoError(t, err)

	accountCfg := accountsvc.AccountConfig{BcryptCost: bcrypt.MinCost}

	accounts, err := accountsvc.NewAccountService(
		ctx,
		account.JSONAccountRepositoryFactory(account.JSONAccountRepositoryConfig{File: filepath.Join(dir, "accounts.json")}),
		avatars,
		accountCfg,
	)
	require.NoError(t, err)

	session := sessionsvc.NewSessionManager(accounts)

	suggestions, err := suggestionsvc.NewSuggestionService(
		ctx,
		suggestion.FileSuggestionRepositoryFactory(suggestion.FileSuggestionRepositoryConfig{File: filepath.Join(dir, "suggestions.txt")}),
		session,
	)
	require.NoError(t, err)

	catalog, err := catalogsvc.NewCatalogService(ctx, blobs, catalogsvc.CatalogConfig{Products: 9})
	require.NoError(t, err)

	return Services{
		Accounts:    accounts,
		Session:     session,
		Profile:     profilesvc.NewProfileService(accounts, session, accountCfg),
		Suggestions: suggestions,
		Avatars:     avatars,
		Catalog:     catalog,
	}
}

func runScript(t *testing.T, svc Services, lines ...string) string {
	t.Helper()

	var out bytes.Buffer

	app := NewApp(svc, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, app.Run(context.Background()))

	return out.String()
}

func TestApp_RegisterLoginProfile(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t)

	out := runScript(t, svc,
		"register", "alice", "secret",
		"register", "alice", "other",
		"login", "alice", "wrong",
		"whoami",
		"login", "alice", "secret",
		"whoami",
		"info", "Alice Liddell", "alice@example.com",
		"profile",
		"exit",
	)

	assert.Contains(t, out, "Account created for alice.")
	assert.Contains(t, out, "That username is already taken.")
	assert.Contains(t, out, "Incorrect username or password.")
	assert.Contains(t, out, "Not logged in.")
	assert.Contains(t, out, "Welcome, alice!")
	assert.Contains(t, out, "storefront (alice)> ")
	assert.Contains(t, out, "Profile updated.")
	assert.Contains(t, out, "Alice Liddell")
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, svc.Avatars.Path("alice"))
	assert.Contains(t, out, "Bye!")

	_, err := os.Stat(svc.Avatars.Path("alice"))
	require.NoError(t, err, "registration creates the avatar")
}

func TestApp_ChangePassword(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t)

	out := runScript(t, svc,
		"passwd",
		"register", "bob", "old",
		"login", "bob", "old",
		"passwd", "old", "new", "typo",
		"passwd", "bad", "new", "new",
		"passwd", "old", "new", "new",
		"logout",
		"logout",
	)

	assert.Contains(t, out, "You need to log in first.")
	assert.Contains(t, out, "The new passwords do not match.")
	assert.Contains(t, out, "Incorrect username or password.")
	assert.Contains(t, out, "Password changed.")
	assert.Equal(t, 2, strings.Count(out, "Logged out."))

	_, err := svc.Accounts.Verify(context.Background(), "bob", "new")
	require.NoError(t, err)
}

func TestApp_SuggestionsAndHistory(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t)

	out := runScript(t, svc,
		"suggest", "anonymous idea", "",
		"history",
		"register", "carol", "pw",
		"login", "carol", "pw",
		"history",
		"suggest", "first line", "second line", "",
		"suggest", "",
		"history",
	)

	assert.Contains(t, out, "Your suggestion was sent anonymously.")
	assert.Contains(t, out, "You need to log in first.")
	assert.Contains(t, out, "You have not sent any suggestions yet.")
	assert.Contains(t, out, "Please fill in all required fields.")
	assert.Contains(t, out, "- first line\n  second line\n")

	history := []string{}
	for text := range svc.Suggestions.HistoryFor(context.Background(), domain.AnonymousAuthor) {
		history = append(history, text)
	}

	assert.Equal(t, []string{"anonymous idea"}, history)
}

func TestApp_ProductsAndBuy(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t)

	out := runScript(t, svc,
		"products",
		"buy 3",
		"buy 42",
		"buy three",
		"buy",
		"dance",
	)

	assert.Contains(t, out, "1. Casa 1")
	assert.Contains(t, out, "9. Casa 9")
	assert.Contains(t, out, "You chose Casa 3. No payment was taken.")
	assert.Contains(t, out, "Not found.")
	assert.Contains(t, out, "Please fill in all required fields.")
	assert.Contains(t, out, "Usage: buy <id>")
	assert.Contains(t, out, "Unknown command: dance")

	_, err := os.Stat(svc.Catalog.Products()[0].Image)
	require.NoError(t, err)
}

func TestApp_Avatar(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t)
	source := filepath.Join(t.TempDir(), "not-a-picture.txt")
	require.NoError(t, os.WriteFile(source, []byte("hello"), 0o600))

	out := runScript(t, svc,
		"avatar "+source,
		"register", "dave", "pw",
		"login", "dave", "pw",
		"avatar "+source,
	)

	assert.Contains(t, out, "You need to log in first.")
	assert.Contains(t, out, "Avatar updated: "+svc.Avatars.Path("dave"))
}

func TestApp_TerminalSecret(t *testing.T) {
	origRead := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("hidden"), nil }
	t.Cleanup(func() { readPassword = origRead })

	var out bytes.Buffer

	secret, err := terminalSecret(0, &out)("Password")
	require.NoError(t, err)
	assert.Equal(t, "hidden", secret)
	assert.Equal(t, "Password: \n", out.String())
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Incorrect username or password.", errorMessage(domain.ErrInvalidCredentials))
	assert.Equal(t, "Something went wrong: "+assert.AnError.Error(), errorMessage(assert.AnError))
}

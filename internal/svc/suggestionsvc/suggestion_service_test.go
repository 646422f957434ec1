package suggestionsvc_test

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/suggestion"

	. "github.com/mkrupp/storefront/internal/svc/suggestionsvc"
)

// fakeSession is a settable session slot.
type fakeSession struct {
	username string
}

func (f *fakeSession) Current() (string, bool) {
	return f.username, f.username != ""
}

func setupTestService(t *testing.T) (*SuggestionService, *fakeSession) {
	t.Helper()

	session := &fakeSession{}

	svc, err := NewSuggestionService(
		context.Background(),
		suggestion.FileSuggestionRepositoryFactory(suggestion.FileSuggestionRepositoryConfig{
			File: filepath.Join(t.TempDir(), "suggestions.txt"),
		}),
		session,
	)
	require.NoError(t, err)

	return svc, session
}

func TestSuggestionService_HistoryScenario(t *testing.T) {
	t.Parallel()

	svc, session := setupTestService(t)
	ctx := context.Background()

	session.username = "alice"
	_, err := svc.Submit(ctx, "more colors")
	require.NoError(t, err)

	session.username = ""
	anon, err := svc.Submit(ctx, "  cheaper houses  ")
	require.NoError(t, err)
	assert.True(t, anon.IsAnonymous())
	assert.Equal(t, "cheaper houses", anon.Text)

	session.username = "alice"
	_, err = svc.Submit(ctx, "faster delivery")
	require.NoError(t, err)

	assert.Equal(t, []string{"more colors", "faster delivery"}, slices.Collect(svc.HistoryFor(ctx, "alice")))
	assert.Equal(t, []string{"cheaper houses"}, slices.Collect(svc.HistoryFor(ctx, domain.AnonymousAuthor)))
	assert.Empty(t, slices.Collect(svc.HistoryFor(ctx, "ali")), "authors match exactly")
}

func TestSuggestionService_SubmitBlank(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Submit(ctx, text)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	assert.Empty(t, slices.Collect(svc.HistoryFor(ctx, domain.AnonymousAuthor)))
}

func TestSuggestionService_MultilineRoundTrip(t *testing.T) {
	t.Parallel()

	svc, session := setupTestService(t)
	ctx := context.Background()
	session.username = "bob"

	_, err := svc.Submit(ctx, "first line\nalice: not a record")
	require.NoError(t, err)

	assert.Equal(t, []string{"first line\nalice: not a record"}, slices.Collect(svc.HistoryFor(ctx, "bob")))
	assert.Empty(t, slices.Collect(svc.HistoryFor(ctx, "alice")))
}

func TestSuggestionService_HistoryAfterLongSuggestion(t *testing.T) {
	t.Parallel()

	svc, session := setupTestService(t)
	ctx := context.Background()

	session.username = "alice"
	_, err := svc.Submit(ctx, "first")
	require.NoError(t, err)

	session.username = ""
	_, err = svc.Submit(ctx, strings.Repeat("long ", 400_000))
	require.NoError(t, err)

	session.username = "alice"
	_, err = svc.Submit(ctx, "Add dark mode")
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "Add dark mode"}, slices.Collect(svc.HistoryFor(ctx, "alice")))
}

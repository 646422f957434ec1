package suggestionsvc

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/suggestion"
)

// Session reports the logged-in username, if any.
type Session interface {
	Current() (string, bool)
}

// SuggestionService records suggestions and lists a user's past ones.
type SuggestionService struct {
	Repo    suggestion.Repository
	Session Session
	Log     logging.Logger
}

// NewSuggestionService creates a new SuggestionService with the given repository factory.
func NewSuggestionService(
	ctx context.Context,
	repoFactory suggestion.RepositoryFactory,
	session Session,
) (*SuggestionService, error) {
	repo, err := repoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new suggestion repo: %w", err)
	}

	return &SuggestionService{
		Repo:    repo,
		Session: session,
		Log:     logging.GetLogger("svc.suggestionsvc.suggestion_service"),
	}, nil
}

// Submit appends text under the current user, or domain.AnonymousAuthor
// when nobody is logged in. Blank text yields domain.ErrInvalidInput.
func (s *SuggestionService) Submit(ctx context.Context, text string) (_ domain.Suggestion, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "submit failed", "error", err)
		} else {
			s.Log.InfoContext(ctx, "suggestion submitted")
		}
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Suggestion{}, fmt.Errorf("%w: suggestion is empty", domain.ErrInvalidInput)
	}

	author, ok := s.Session.Current()
	if !ok {
		author = domain.AnonymousAuthor
	}

	entry := domain.Suggestion{Author: author, Text: text}

	if err := s.Repo.Append(ctx, entry); err != nil {
		return domain.Suggestion{}, fmt.Errorf("append: %w", err)
	}

	return entry, nil
}

// HistoryFor yields, in log order, the texts whose author is exactly username.
func (s *SuggestionService) HistoryFor(ctx context.Context, username string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for entry := range s.Repo.All(ctx) {
			if entry.Author != username {
				continue
			}

			if !yield(entry.Text) {
				return
			}
		}
	}
}

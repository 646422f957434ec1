package suggestion

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sync"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

// FileSuggestionRepositoryConfig holds configuration for the text file suggestion log.
type FileSuggestionRepositoryConfig struct {
	// File is the path of the UTF-8 log, one record per line
	File string `env:"FILE" envDefault:"var/storage/suggestions.txt"`
}

// FileSuggestionRepository appends records to a text file.
type FileSuggestionRepository struct {
	cfg FileSuggestionRepositoryConfig
	log logging.Logger
	m   sync.Mutex
}

var _ Repository = (*FileSuggestionRepository)(nil)

// FileSuggestionRepositoryFactory creates a factory function that returns a new FileSuggestionRepository.
func FileSuggestionRepositoryFactory(cfg FileSuggestionRepositoryConfig) RepositoryFactory {
	return func(_ context.Context) (Repository, error) {
		return NewFileSuggestionRepository(cfg), nil
	}
}

// NewFileSuggestionRepository creates the repository. The file is created on the first Append.
func NewFileSuggestionRepository(cfg FileSuggestionRepositoryConfig) *FileSuggestionRepository {
	return &FileSuggestionRepository{
		cfg: cfg,
		log: logging.GetLogger("repo.suggestion.file_repository").With(
			logging.Group("store", "file", cfg.File),
		),
	}
}

// Append writes s as one line at the end of the log.
func (r *FileSuggestionRepository) Append(ctx context.Context, s domain.Suggestion) (err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "append failed", "error", err)
		} else {
			r.log.DebugContext(ctx, "suggestion appended")
		}
	}()

	r.m.Lock()
	defer r.m.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.cfg.File), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	file, err := os.OpenFile(r.cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close file: %w", cerr)
		}
	}()

	if _, err := file.WriteString(EncodeLine(s) + "\n"); err != nil {
		return fmt.Errorf("write line: %w", err)
	}

	return nil
}

// All yields the decodable records of the log. A missing file yields nothing.
// Lines of any length are read. Read errors end the sequence early and are logged.
func (r *FileSuggestionRepository) All(ctx context.Context) iter.Seq[domain.Suggestion] {
	return func(yield func(domain.Suggestion) bool) {
		file, err := os.Open(r.cfg.File)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				r.log.ErrorContext(ctx, "open failed", "error", err)
			}

			return
		}
		defer file.Close()

		reader := bufio.NewReader(file)

		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				if s, ok := DecodeLine(line); ok && !yield(s) {
					return
				}
			}

			if errors.Is(err, io.EOF) {
				return
			} else if err != nil {
				r.log.ErrorContext(ctx, "read failed", "error", err)

				return
			}
		}
	}
}

package suggestion

import (
	"context"
	"iter"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository defines the interface for the append-only suggestion log.
type Repository interface {
	// Append adds s to the end of the log.
	Append(ctx context.Context, s domain.Suggestion) error

	// All yields every record in log order. Each iteration reads the log
	// afresh, so records appended in between are seen by the next one.
	All(ctx context.Context) iter.Seq[domain.Suggestion]
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func(ctx context.Context) (Repository, error)

package blob

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository defines the interface for blob storage operations.
type Repository interface {
	// Lock acquires a lock on the blob with the given ID.
	// If exclusive is true, acquires a write lock, otherwise a read lock.
	// Returns a function to release the lock, and any error encountered.
	Lock(ctx context.Context, id domain.BlobID, exclusive bool) (func(), error)

	// Exists checks if a blob with the given ID exists.
	Exists(ctx context.Context, id domain.BlobID) bool

	// Store persists a blob, replacing any previous content atomically.
	Store(ctx context.Context, blob *domain.Blob) error

	// Fetch retrieves a blob by its ID.
	// Returns an error wrapping domain.ErrNotFound if the blob doesn't exist.
	Fetch(ctx context.Context, id domain.BlobID) (*domain.Blob, error)

	// Path returns the filesystem location of the blob, for consumers that
	// render files directly.
	Path(id domain.BlobID) string
}

// RepositoryFactory is a function that creates a new Repository instance.
// Parameters:
// - name: subdirectory name for the repository
// - ext: file extension for stored blobs
type RepositoryFactory func(
	ctx context.Context,
	name string,
	ext string,
) (Repository, error)

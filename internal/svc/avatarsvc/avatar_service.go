package avatarsvc

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/blob"
)

const placeholderID = domain.BlobID("placeholder")

// ErrSourceTooLarge is returned when a picture exceeds AvatarConfig.MaxSourceSize
// or AvatarConfig.MaxSourcePixels.
var ErrSourceTooLarge = errors.New("source picture too large")

// AvatarService generates circular profile pictures. Every user gets one
// file; users without a picture of their own get a copy of the shared
// placeholder.
type AvatarService struct {
	users    blob.Repository
	shared   blob.Repository
	interpol draw.Interpolator
	cfg      AvatarConfig
	log      logging.Logger
}

// NewAvatarService creates a new AvatarService storing pictures in the
// "avatars/users" and "avatars/shared" repositories of repoFactory.
// Returns an error if the interpolator is unknown or the repositories cannot be created.
func NewAvatarService(ctx context.Context, repoFactory blob.RepositoryFactory, cfg AvatarConfig) (*AvatarService, error) {
	interpol, err := getInterpolatorByName(cfg.Interpolator)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, cfg.Interpolator)
	}

	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: avatar size %d", domain.ErrInvalidInput, cfg.Size)
	}

	users, err := repoFactory(ctx, "avatars/users", "png")
	if err != nil {
		return nil, fmt.Errorf("new users repository: %w", err)
	}

	shared, err := repoFactory(ctx, "avatars/shared", "png")
	if err != nil {
		return nil, fmt.Errorf("new shared repository: %w", err)
	}

	return &AvatarService{
		users:    users,
		shared:   shared,
		interpol: interpol,
		cfg:      cfg,
		log:      logging.GetLogger("svc.avatarsvc.avatar_service"),
	}, nil
}

// Path returns where the avatar of username is (or would be) stored.
func (s *AvatarService) Path(username string) string {
	return s.users.Path(domain.BlobID(username))
}

// Ensure creates the avatar of username from the placeholder unless one
// already exists. An existing avatar is left untouched.
func (s *AvatarService) Ensure(ctx context.Context, username string) (_ string, err error) {
	id := domain.BlobID(username)
	log := s.log.With(logging.Group("avatar", "username", username))

	created := false

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "ensure avatar failed", "error", err)
		} else {
			log.DebugContext(ctx, "avatar ensured", "created", created)
		}
	}()

	unlock, err := s.users.Lock(ctx, id, true)
	if err != nil {
		return "", fmt.Errorf("lock avatar: %w", err)
	}
	defer unlock()

	if s.users.Exists(ctx, id) {
		return s.users.Path(id), nil
	}

	placeholder, err := s.placeholder(ctx, username)
	if err != nil {
		return "", fmt.Errorf("placeholder: %w", err)
	}

	if err := s.store(ctx, id, placeholder); err != nil {
		return "", err
	}

	created = true

	return s.users.Path(id), nil
}

// Replace overwrites the avatar of username with the picture at sourcePath.
// Unreadable or undecodable sources produce a plain grey disc instead of an error.
func (s *AvatarService) Replace(ctx context.Context, username, sourcePath string) (_ string, err error) {
	id := domain.BlobID(username)
	log := s.log.With(logging.Group("avatar", "username", username, "source", sourcePath))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "replace avatar failed", "error", err)
		} else {
			log.DebugContext(ctx, "avatar replaced")
		}
	}()

	var src image.Image

	data, err := s.readSource(sourcePath)
	if err == nil {
		src, err = decodeImage(data, s.cfg.maxSourcePixels())
	}

	if err != nil {
		log.WarnContext(ctx, "source unusable, using fallback", "error", err)

		src = renderFallback(s.cfg.Size)
	}

	unlock, err := s.users.Lock(ctx, id, true)
	if err != nil {
		return "", fmt.Errorf("lock avatar: %w", err)
	}
	defer unlock()

	if err := s.store(ctx, id, src); err != nil {
		return "", err
	}

	return s.users.Path(id), nil
}

// readSource reads the picture at path, refusing files over the size limit.
func (s *AvatarService) readSource(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	if s.cfg.MaxSourceSize > 0 && info.Size() > s.cfg.MaxSourceSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrSourceTooLarge, info.Size(), s.cfg.MaxSourceSize)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	return data, nil
}

// placeholder returns the shared placeholder, rendering it with the first
// letter of username if it does not exist yet.
func (s *AvatarService) placeholder(ctx context.Context, username string) (image.Image, error) {
	unlock, err := s.shared.Lock(ctx, placeholderID, true)
	if err != nil {
		return nil, fmt.Errorf("lock placeholder: %w", err)
	}
	defer unlock()

	if s.shared.Exists(ctx, placeholderID) {
		stored, err := s.shared.Fetch(ctx, placeholderID)
		if err != nil {
			return nil, fmt.Errorf("fetch placeholder: %w", err)
		}

		img, err := decodeImage(stored.Bytes(), s.cfg.maxSourcePixels())
		if err == nil {
			return img, nil
		}

		s.log.WarnContext(ctx, "placeholder unreadable, rendering a new one", "error", err)
	}

	img := renderPlaceholder(s.cfg.Size, placeholderLetter(username))

	encoded, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	if err := s.shared.Store(ctx, domain.NewBlob(placeholderID, encoded)); err != nil {
		return nil, fmt.Errorf("store placeholder: %w", err)
	}

	return img, nil
}

// store resizes and masks src and saves it as the avatar id. The caller holds the lock.
func (s *AvatarService) store(ctx context.Context, id domain.BlobID, src image.Image) error {
	avatar := circularMask(resizeImage(src, s.cfg.Size, s.interpol))

	encoded, err := encodePNG(avatar)
	if err != nil {
		return err
	}

	if err := s.users.Store(ctx, domain.NewBlob(id, encoded)); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}

	return nil
}
